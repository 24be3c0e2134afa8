package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// coreScore is assigned to every column of a core table regardless of
// how the query scores against it.
const coreScore = 0.8

// CoreTables are always included in retrieval results. These tables
// anchor nearly every clinical question, so the model always sees them.
var CoreTables = []string{"basic_treatment", "prescribed_drug", "insured_person"}

// domainKeywords earn a bonus when present in both the query and a
// column's search text.
var domainKeywords = []string{
	"환자", "질환", "질병", "약물", "처방", "병원",
	"나이", "연령", "성별", "지역", "user", "hospital",
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// ScoredColumn is a catalog column with a query-scoped relevance score.
type ScoredColumn struct {
	Column
	Score float64
}

// RelevantColumns scores catalog rows against the free-text query and
// returns a ranked slice of at most topK columns, sorted non-increasing
// by score. When includeCore is true, every column of the core tables
// is included at a fixed high score even if the query is irrelevant to
// them; additional rows fill the remaining topK slots.
func (c *Catalog) RelevantColumns(query string, topK int, includeCore bool) []ScoredColumn {
	coreSet := make(map[string]bool, len(CoreTables))
	for _, t := range CoreTables {
		coreSet[t] = true
	}

	var core []ScoredColumn
	if includeCore {
		for _, col := range c.columns {
			if coreSet[strings.ToLower(col.TableName)] {
				core = append(core, ScoredColumn{Column: col, Score: coreScore})
			}
		}
	}

	queryLower := strings.ToLower(query)
	var tokens []string
	for _, w := range wordPattern.FindAllString(queryLower, -1) {
		if len([]rune(w)) > 1 {
			tokens = append(tokens, w)
		}
	}

	var additional []ScoredColumn
	for _, col := range c.columns {
		if includeCore && coreSet[strings.ToLower(col.TableName)] {
			continue
		}
		score := scoreColumn(col, queryLower, tokens)
		if score > 0 {
			additional = append(additional, ScoredColumn{Column: col, Score: score})
		}
	}
	sort.SliceStable(additional, func(i, j int) bool {
		return additional[i].Score > additional[j].Score
	})

	remaining := topK - len(core)
	if remaining < 0 {
		remaining = 0
	}
	if len(additional) > remaining {
		additional = additional[:remaining]
	}

	combined := append(core, additional...)
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Score > combined[j].Score
	})
	return combined
}

// scoreColumn computes 0.1 per matched query token plus 0.3 per domain
// keyword present in both the query and the column's search text.
func scoreColumn(col Column, queryLower string, tokens []string) float64 {
	matches := 0
	for _, tok := range tokens {
		if strings.Contains(col.searchText, tok) {
			matches++
		}
	}

	bonus := 0.0
	for _, kw := range domainKeywords {
		if strings.Contains(queryLower, kw) && strings.Contains(col.searchText, kw) {
			bonus += 0.3
		}
	}

	return float64(matches)*0.1 + bonus
}

// FormatForLLM renders a ranked schema slice as grouped, model-readable
// text: a header per table, one line per column with type, nullability,
// description and keywords.
func FormatForLLM(columns []ScoredColumn) string {
	if len(columns) == 0 {
		return "No relevant schema found."
	}

	// Group by table, tables in sorted order for stable output.
	byTable := make(map[string][]ScoredColumn)
	var tables []string
	for _, col := range columns {
		if _, ok := byTable[col.TableName]; !ok {
			tables = append(tables, col.TableName)
		}
		byTable[col.TableName] = append(byTable[col.TableName], col)
	}
	sort.Strings(tables)

	var b strings.Builder
	b.WriteString("=== Database Schema Information ===\n\n")

	for _, table := range tables {
		fmt.Fprintf(&b, "**Table: %s**\n", table)
		for _, col := range byTable[table] {
			nullability := "[NOT NULL]"
			if col.Nullable {
				nullability = "[NULLABLE]"
			}
			fmt.Fprintf(&b, "  - %s (%s): %s %s", col.ColumnName, col.LocalizedName, col.DataType, nullability)
			if col.Description != "" {
				fmt.Fprintf(&b, "\n    description: %s", col.Description)
			}
			if col.Keywords != "" {
				fmt.Fprintf(&b, "\n    keywords: %s", col.Keywords)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}
