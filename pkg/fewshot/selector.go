package fewshot

import (
	"sort"
	"strings"
)

// maxSelected is the number of examples included in a prompt.
const maxSelected = 3

// queryPatterns are the structural-pattern flags detected in a query.
// Selection is heuristic pattern match, not embedding similarity:
// intentionally cheap and explainable.
type queryPatterns struct {
	rank        bool
	windowFunc  bool
	aggregation bool
	join        bool
	dateRange   bool
	ageFilter   bool
	location    bool
}

func detectPatterns(query string) queryPatterns {
	lower := strings.ToLower(query)
	return queryPatterns{
		rank:        containsAny(lower, "rank", "순위", "top"),
		windowFunc:  containsAny(lower, "순위", "누적", "비율", "합계", "rank", "row_number"),
		aggregation: containsAny(lower, "교차", "집계", "분포", "그룹", "group"),
		join:        containsAny(lower, "성별", "연령", "약", "처방", "gender", "age"),
		dateRange:   containsAny(lower, "년", "월", "일", "기간", "이후", "이전", "동안"),
		ageFilter:   containsAny(lower, "세", "연령", "age"),
		location:    containsAny(lower, "지역", "서울", "부산", "병원명"),
	}
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

type scoredExample struct {
	score   int
	example Example
}

// Select scores the library against the query and extracted keywords
// and returns the top 3 examples. Examples scoring zero are excluded;
// ties keep library order.
func Select(query string, keywords []string) []Example {
	return SelectFrom(library, query, keywords)
}

// SelectFrom is Select over an explicit example set, used by tests and
// by callers carrying a custom library.
func SelectFrom(examples []Example, query string, keywords []string) []Example {
	patterns := detectPatterns(query)

	var scored []scoredExample
	for _, ex := range examples {
		exLower := strings.ToLower(ex.Question)
		score := 0

		if patterns.rank && strings.Contains(exLower, "rank") {
			score += 10
		}
		if patterns.windowFunc && containsAny(exLower, "순위", "누적", "비율") {
			score += 8
		}
		if patterns.aggregation && containsAny(exLower, "교차", "집계", "분포") {
			score += 8
		}
		if patterns.ageFilter && containsAny(exLower, "세", "age") {
			score += 7
		}
		if patterns.location && containsAny(exLower, "지역", "서울", "병원") {
			score += 7
		}
		if patterns.dateRange && containsAny(exLower, "년", "기간", "이후") {
			score += 6
		}

		for _, kw := range keywords {
			if strings.Contains(exLower, strings.ToLower(kw)) {
				score += 2
			}
		}

		if patterns.join && len(ex.Tables) > 1 {
			score += 5
		}

		if score > 0 {
			scored = append(scored, scoredExample{score: score, example: ex})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > maxSelected {
		scored = scored[:maxSelected]
	}
	out := make([]Example, len(scored))
	for i, se := range scored {
		out[i] = se.example
	}
	return out
}
