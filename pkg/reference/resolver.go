package reference

import (
	"fmt"
	"strings"
)

// maxMatchesPerKeyword caps the reference rows resolved per detected
// disease keyword.
const maxMatchesPerKeyword = 3

// CodeHint maps a disease keyword found in a query to a coded
// identifier pattern suitable for an indexed LIKE filter.
type CodeHint struct {
	DiseaseName    string
	DiseaseCode    string
	Pattern        string
	MatchedKeyword string
}

// diseaseKeyword maps a canonical disease key to its surface forms.
// Order matters: only the first surface form found in the query is
// used per key.
type diseaseKeyword struct {
	key      string
	synonyms []string
}

var diseaseKeywords = []diseaseKeyword{
	{"고혈압", []string{"고혈압"}},
	{"당뇨", []string{"당뇨", "당뇨병"}},
	{"암", []string{"암"}},
	{"위염", []string{"위염"}},
	{"감기", []string{"감기", "독감"}},
	{"조현병", []string{"조현병"}},
	{"비만", []string{"비만"}},
	{"폐렴", []string{"폐렴"}},
	{"천식", []string{"천식"}},
	{"우울", []string{"우울증", "우울"}},
	{"치매", []string{"치매", "알츠하이머"}},
	{"파킨슨", []string{"파킨슨"}},
	{"간염", []string{"간염", "간경화"}},
	{"신부전", []string{"신부전"}},
	{"심부전", []string{"심부전"}},
}

// FindDiseaseCodes scans the query for known disease vocabulary and
// resolves each detected keyword against the disease reference table.
// The result is advisory: it biases generated SQL toward indexed code
// columns but is never enforced.
func (s *Store) FindDiseaseCodes(query string) []CodeHint {
	if len(s.diseases) == 0 {
		return nil
	}

	var hints []CodeHint
	for _, dk := range diseaseKeywords {
		for _, keyword := range dk.synonyms {
			if !strings.Contains(query, keyword) {
				continue
			}

			matched := 0
			lowerKeyword := strings.ToLower(keyword)
			for _, entry := range s.diseases {
				if !strings.Contains(strings.ToLower(entry.Name), lowerKeyword) {
					continue
				}
				if entry.Code == "" || entry.Code == "$" {
					continue
				}
				hints = append(hints, CodeHint{
					DiseaseName:    entry.Name,
					DiseaseCode:    entry.Code,
					Pattern:        codePattern(entry.Code),
					MatchedKeyword: keyword,
				})
				matched++
				if matched == maxMatchesPerKeyword {
					break
				}
			}
			// First matching surface form wins for this key.
			break
		}
	}
	return hints
}

// codePattern truncates a disease code to its first 3 characters plus
// a wildcard, widening e.g. AI109 to the AI1% code family.
func codePattern(code string) string {
	if len(code) >= 3 {
		return code[:3] + "%"
	}
	return code + "%"
}

// FormatHints renders code hints as the instructional block appended to
// generation prompts.
func FormatHints(hints []CodeHint) string {
	if len(hints) == 0 {
		return ""
	}

	var b strings.Builder
	for i, h := range hints {
		if i == maxMatchesPerKeyword {
			break
		}
		fmt.Fprintf(&b, "- '%s' → `res_disease_code LIKE '%s'` (e.g. %s code: %s)\n",
			h.MatchedKeyword, h.Pattern, h.DiseaseName, h.DiseaseCode)
	}
	b.WriteString("\n**중요**: 위 질병 코드를 반드시 사용하세요!")
	return b.String()
}
