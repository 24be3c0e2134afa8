package sqltmpl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func fixedEngine(dir string) *Engine {
	e := NewEngine(dir)
	e.now = func() time.Time { return fixedNow }
	return e
}

func TestRenderSubstitutesParameters(t *testing.T) {
	e := fixedEngine(t.TempDir())

	out, err := e.Render("SELECT * FROM t WHERE name LIKE '%{{.keyword}}%' LIMIT {{.top_n}}",
		map[string]any{"keyword": "당뇨", "top_n": 10})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE name LIKE '%당뇨%' LIMIT 10", out)
}

func TestRenderDefaultPlaceholderUnwraps(t *testing.T) {
	e := fixedEngine(t.TempDir())

	out, err := e.Render("LIMIT {{.top_n}}", map[string]any{"top_n": "[DEFAULT_50]"})
	require.NoError(t, err)
	assert.Equal(t, "LIMIT 50", out)
}

func TestRenderDateSentinels(t *testing.T) {
	e := fixedEngine(t.TempDir())

	out, err := e.Render("BETWEEN '{{.start}}' AND '{{.end}}'", map[string]any{
		"start": "[DEFAULT_3_YEARS_AGO]",
		"end":   "[CURRENT_DATE]",
	})
	require.NoError(t, err)
	// 1095 days before the fixed date.
	assert.Equal(t, "BETWEEN '2023-08-29' AND '2026-08-28'", out)
}

func TestRenderNotFoundNeverAppearsLiterally(t *testing.T) {
	e := fixedEngine(t.TempDir())

	out, err := e.Render("{{if .region}}AND region = '{{.region}}'{{end}}",
		map[string]any{"region": "[NOT_FOUND]"})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotContains(t, out, "[NOT_FOUND]")
}

func TestRenderUnresolvedVariableIsError(t *testing.T) {
	e := fixedEngine(t.TempDir())

	_, err := e.Render("SELECT {{.missing}}", map[string]any{})
	require.Error(t, err)

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "execute", renderErr.Stage)
}

func TestRenderSyntaxErrorIsError(t *testing.T) {
	e := fixedEngine(t.TempDir())

	_, err := e.Render("SELECT {{.broken", nil)
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "parse", renderErr.Stage)
}

func TestRenderTemplateResolvesCategories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pool"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "profile"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pool", "in_pool.sql"),
		[]byte("SELECT 'pool'"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profile", "in_profile.sql"),
		[]byte("SELECT 'profile'"), 0o644))

	e := fixedEngine(dir)

	out, err := e.RenderTemplate("in_pool", nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 'pool'", out)

	out, err = e.RenderTemplate("in_profile", nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 'profile'", out)
}

func TestRenderTemplateUnknownRecipe(t *testing.T) {
	e := fixedEngine(t.TempDir())

	_, err := e.RenderTemplate("no_such_recipe", nil)
	assert.True(t, errors.Is(err, ErrRecipeNotFound))
}
