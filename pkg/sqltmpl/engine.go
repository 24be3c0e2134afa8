// Package sqltmpl renders parametrized SQL templates with support for
// a small set of reserved dynamic placeholders.
package sqltmpl

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"
)

// Reserved placeholder forms recognized in string parameter values.
const (
	placeholderThreeYearsAgo = "[DEFAULT_3_YEARS_AGO]"
	placeholderCurrentDate   = "[CURRENT_DATE]"
	placeholderNotFound      = "[NOT_FOUND]"
)

var defaultPlaceholderPattern = regexp.MustCompile(`^\[DEFAULT_(\w+)\]$`)

// Engine renders SQL templates resolved from the recipe directory.
type Engine struct {
	recipesDir string

	// now is injectable for deterministic date-sentinel tests.
	now func() time.Time
}

// NewEngine creates an Engine over the given recipe directory.
func NewEngine(recipesDir string) *Engine {
	return &Engine{recipesDir: recipesDir, now: time.Now}
}

// resolveSpecials rewrites reserved placeholder forms in string-valued
// parameters. Non-matching values pass through untouched.
func (e *Engine) resolveSpecials(params map[string]any) map[string]any {
	if len(params) == 0 {
		return map[string]any{}
	}

	resolved := make(map[string]any, len(params))
	for key, value := range params {
		s, ok := value.(string)
		if !ok {
			resolved[key] = value
			continue
		}

		switch s {
		case placeholderThreeYearsAgo:
			resolved[key] = e.now().AddDate(0, 0, -3*365).Format("2006-01-02")
		case placeholderCurrentDate:
			resolved[key] = e.now().Format("2006-01-02")
		case placeholderNotFound:
			resolved[key] = nil
		default:
			if m := defaultPlaceholderPattern.FindStringSubmatch(s); m != nil {
				resolved[key] = m[1]
			} else {
				resolved[key] = s
			}
		}
	}
	return resolved
}

// Render resolves reserved placeholders in the parameter set and then
// renders the template text. The output is always a complete SQL
// string: unresolved variables and syntax errors surface as a
// RenderError, never as half-substituted text.
func (e *Engine) Render(templateText string, params map[string]any) (string, error) {
	resolved := e.resolveSpecials(params)

	tmpl, err := template.New("sql").Option("missingkey=error").Parse(templateText)
	if err != nil {
		return "", &RenderError{Stage: "parse", Cause: err}
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, resolved); err != nil {
		return "", &RenderError{Stage: "execute", Cause: err}
	}
	return b.String(), nil
}

// RenderTemplate resolves the recipe's on-disk SQL template by name,
// trying the pool then profile category, and renders it.
func (e *Engine) RenderTemplate(recipeName string, params map[string]any) (string, error) {
	path, err := e.TemplatePath(recipeName)
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", &RenderError{Stage: "read", Cause: err}
	}

	return e.Render(string(content), params)
}

// TemplatePath returns the on-disk SQL template path for a recipe,
// or ErrRecipeNotFound if no category contains it.
func (e *Engine) TemplatePath(recipeName string) (string, error) {
	for _, category := range []string{"pool", "profile"} {
		candidate := filepath.Join(e.recipesDir, category, recipeName+".sql")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("sql template for recipe %q: %w", recipeName, ErrRecipeNotFound)
}
