// Package reference loads the coded reference datasets (diseases,
// drugs, ingredients) and resolves disease vocabulary in free text to
// coded-identifier patterns.
package reference

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Entry is one coded row of a reference dataset.
type Entry struct {
	Name string
	Code string
}

// Store holds the per-category reference datasets, loaded once at
// startup and read-only afterward.
type Store struct {
	diseases    []Entry
	drugs       []Entry
	ingredients []Entry
	logger      *zap.Logger
}

var datasetFiles = map[string]string{
	"diseases":    "unique_diseases.csv",
	"drugs":       "unique_drugs.csv",
	"ingredients": "unique_ingredients.csv",
}

// LoadStore reads the reference CSVs from dir. The diseases file is
// required; drugs and ingredients are optional categories.
func LoadStore(dir string, logger *zap.Logger) (*Store, error) {
	s := &Store{logger: logger.Named("reference")}

	for category, filename := range datasetFiles {
		path := filepath.Join(dir, filename)
		entries, err := loadEntries(path)
		if err != nil {
			if os.IsNotExist(err) && category != "diseases" {
				continue
			}
			return nil, fmt.Errorf("load reference dataset %s: %w", category, err)
		}
		switch category {
		case "diseases":
			s.diseases = entries
		case "drugs":
			s.drugs = entries
		case "ingredients":
			s.ingredients = entries
		}
	}

	s.logger.Info("loaded reference datasets",
		zap.Int("diseases", len(s.diseases)),
		zap.Int("drugs", len(s.drugs)),
		zap.Int("ingredients", len(s.ingredients)))
	return s, nil
}

func loadEntries(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	// Headers vary across exports (name vs disease_name etc.), so match
	// on suffix.
	nameIdx, codeIdx := -1, -1
	for i, field := range header {
		f := strings.ToLower(strings.TrimSpace(field))
		switch {
		case strings.HasSuffix(f, "name") && nameIdx < 0:
			nameIdx = i
		case strings.HasSuffix(f, "code") && codeIdx < 0:
			codeIdx = i
		}
	}
	if nameIdx < 0 || codeIdx < 0 {
		return nil, fmt.Errorf("missing name/code header in %s", path)
	}

	var entries []Entry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		entries = append(entries, Entry{
			Name: strings.TrimSpace(record[nameIdx]),
			Code: strings.TrimSpace(record[codeIdx]),
		})
	}
	return entries, nil
}

// Diseases returns the disease reference rows.
func (s *Store) Diseases() []Entry { return s.diseases }

// FindDrugs returns up to limit drug entries whose name contains the
// keyword, case-insensitive.
func (s *Store) FindDrugs(keyword string, limit int) []Entry {
	return findByName(s.drugs, keyword, limit)
}

// FindIngredients returns up to limit ingredient entries whose name
// contains the keyword, case-insensitive.
func (s *Store) FindIngredients(keyword string, limit int) []Entry {
	return findByName(s.ingredients, keyword, limit)
}

func findByName(entries []Entry, keyword string, limit int) []Entry {
	if keyword == "" || limit <= 0 {
		return nil
	}
	lower := strings.ToLower(keyword)
	var out []Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), lower) {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
