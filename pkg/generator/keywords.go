package generator

import "strings"

// keywordVocabulary is the coarse vocabulary tested for presence when
// extracting keywords from a request.
var keywordVocabulary = []string{
	"환자", "처방", "약물", "병원", "지역", "성별", "연령", "남성", "여성",
	"분포", "비율", "수", "개수", "TOP", "상위", "많이", "적게",
}

// ExtractKeywords returns the vocabulary terms present in the query,
// in vocabulary order.
func ExtractKeywords(query string) []string {
	var found []string
	for _, kw := range keywordVocabulary {
		if strings.Contains(query, kw) {
			found = append(found, kw)
		}
	}
	return found
}
