// Package recipes loads and indexes the parametrized SQL recipe
// catalog.
package recipes

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Categories are the recipe subdirectories, tried in this order when
// resolving a recipe's SQL template.
var Categories = []string{"pool", "profile"}

// ParamType is the declared type of a recipe parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
	ParamDate    ParamType = "date"
)

// ParameterSpec declares one recipe parameter.
type ParameterSpec struct {
	Name    string `yaml:"name"`
	Type    ParamType `yaml:"type"`
	Default *int      `yaml:"default,omitempty"`
}

// Recipe is a named, parametrized SQL template plus metadata.
// Name is the join key used by the pipeline and its consumers.
type Recipe struct {
	Name          string          `yaml:"name"`
	Description   string          `yaml:"description"`
	Category      string          `yaml:"-"`
	Tags          []string        `yaml:"tags"`
	Parameters    []ParameterSpec `yaml:"parameters"`
	Visualization string          `yaml:"visualization,omitempty"`
	SQLPath       string          `yaml:"-"`
}

// Index holds the loaded recipe catalog, populated once at startup and
// read-only afterward.
type Index struct {
	byName map[string]*Recipe
	all    []*Recipe
	logger *zap.Logger
}

// LoadIndex reads every recipe metadata file under dir's category
// subdirectories. Recipe names must be globally unique across
// categories; a duplicate is a configuration error.
func LoadIndex(dir string, logger *zap.Logger) (*Index, error) {
	idx := &Index{
		byName: make(map[string]*Recipe),
		logger: logger.Named("recipes"),
	}

	for _, category := range Categories {
		categoryDir := filepath.Join(dir, category)
		entries, err := os.ReadDir(categoryDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read recipe directory %s: %w", categoryDir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
				continue
			}
			path := filepath.Join(categoryDir, entry.Name())
			recipe, err := loadRecipe(path, category)
			if err != nil {
				idx.logger.Warn("skipping invalid recipe",
					zap.String("path", path), zap.Error(err))
				continue
			}
			if _, exists := idx.byName[recipe.Name]; exists {
				return nil, fmt.Errorf("duplicate recipe name %q in %s", recipe.Name, path)
			}
			idx.byName[recipe.Name] = recipe
			idx.all = append(idx.all, recipe)
		}
	}

	sort.Slice(idx.all, func(i, j int) bool { return idx.all[i].Name < idx.all[j].Name })
	idx.logger.Info("loaded recipe catalog", zap.Int("recipes", len(idx.all)))
	return idx, nil
}

func loadRecipe(path, category string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var recipe Recipe
	if err := yaml.Unmarshal(data, &recipe); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	if recipe.Name == "" {
		recipe.Name = strings.TrimSuffix(filepath.Base(path), ".yaml")
	}
	for i, p := range recipe.Parameters {
		if p.Type == "" {
			recipe.Parameters[i].Type = ParamString
		}
	}
	recipe.Category = category
	recipe.SQLPath = strings.TrimSuffix(path, ".yaml") + ".sql"
	return &recipe, nil
}

// ByName returns the recipe with the exact given name, or nil.
// Lookups are case-sensitive.
func (idx *Index) ByName(name string) *Recipe {
	return idx.byName[name]
}

// All returns every loaded recipe, sorted by name.
func (idx *Index) All() []*Recipe {
	return idx.all
}

// ByCategory returns recipes in the given category.
func (idx *Index) ByCategory(category string) []*Recipe {
	var out []*Recipe
	for _, r := range idx.all {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// ByTag returns recipes carrying the given tag.
func (idx *Index) ByTag(tag string) []*Recipe {
	var out []*Recipe
	for _, r := range idx.all {
		for _, t := range r.Tags {
			if t == tag {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// DescribeAll renders "- name: description" lines for the given
// recipes, the form recommendation prompts consume.
func DescribeAll(recipes []*Recipe) string {
	var b strings.Builder
	for _, r := range recipes {
		fmt.Fprintf(&b, "- %s: %s\n", r.Name, r.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}
