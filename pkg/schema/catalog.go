// Package schema loads the analytical column catalog and retrieves the
// slice of it most relevant to a free-text query.
package schema

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Column describes one column of the analytical schema catalog.
// Identity is (TableName, ColumnName); rows are immutable once loaded.
type Column struct {
	TableName     string
	ColumnName    string
	LocalizedName string
	Description   string
	DataType      string
	Nullable      bool
	Keywords      string
	Category      string
	Importance    string

	// searchText is the precomputed lowercase blob scored against
	// query tokens.
	searchText string
}

// Catalog holds the loaded schema catalog. It is populated once at
// startup and read-only afterward.
type Catalog struct {
	columns []Column
	logger  *zap.Logger
}

// expected CSV header fields, in order.
var catalogHeader = []string{
	"table_name", "column_name", "localized_name", "description",
	"data_type", "nullable", "keywords", "category", "importance",
}

// LoadCatalog reads the catalog CSV. The file must have a header row
// and may start with a UTF-8 byte-order mark. A missing file is fatal
// misconfiguration and returns an error.
func LoadCatalog(path string, logger *zap.Logger) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("schema catalog not found: %w", err)
	}
	defer f.Close()

	cat, err := readCatalog(f, logger)
	if err != nil {
		return nil, fmt.Errorf("load schema catalog %s: %w", path, err)
	}
	return cat, nil
}

func readCatalog(r io.Reader, logger *zap.Logger) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(catalogHeader)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	// Tolerate a byte-order mark on the first header field.
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	for i, want := range catalogHeader {
		if strings.TrimSpace(header[i]) != want {
			return nil, fmt.Errorf("unexpected header field %q, want %q", header[i], want)
		}
	}

	var columns []Column
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		col := Column{
			TableName:     strings.TrimSpace(record[0]),
			ColumnName:    strings.TrimSpace(record[1]),
			LocalizedName: strings.TrimSpace(record[2]),
			Description:   strings.TrimSpace(record[3]),
			DataType:      strings.TrimSpace(record[4]),
			Nullable:      parseNullable(record[5]),
			Keywords:      strings.TrimSpace(record[6]),
			Category:      strings.TrimSpace(record[7]),
			Importance:    strings.TrimSpace(record[8]),
		}
		col.searchText = strings.ToLower(strings.Join([]string{
			col.TableName, col.ColumnName, col.LocalizedName,
			col.Description, col.Keywords, col.Category,
		}, " "))
		columns = append(columns, col)
	}

	cat := &Catalog{columns: columns, logger: logger.Named("schema")}
	cat.logger.Info("loaded schema catalog",
		zap.Int("columns", len(columns)),
		zap.Int("tables", len(cat.TableList())))
	return cat, nil
}

func parseNullable(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1", "예":
		return true
	}
	return false
}

// Columns returns all catalog rows.
func (c *Catalog) Columns() []Column {
	return c.columns
}

// TableColumns returns every column of the named table. The table name
// match is case-insensitive, mirroring warehouse identifier rules.
func (c *Catalog) TableColumns(tableName string) []Column {
	lower := strings.ToLower(tableName)
	var out []Column
	for _, col := range c.columns {
		if strings.ToLower(col.TableName) == lower {
			out = append(out, col)
		}
	}
	return out
}

// TableList returns the sorted list of distinct table names.
func (c *Catalog) TableList() []string {
	seen := make(map[string]bool)
	var tables []string
	for _, col := range c.columns {
		if !seen[col.TableName] {
			seen[col.TableName] = true
			tables = append(tables, col.TableName)
		}
	}
	sort.Strings(tables)
	return tables
}

// ColumnCounts returns the number of catalog columns per table.
func (c *Catalog) ColumnCounts() map[string]int {
	counts := make(map[string]int)
	for _, col := range c.columns {
		counts[col.TableName]++
	}
	return counts
}
