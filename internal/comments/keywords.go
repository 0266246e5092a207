package comments

import (
	"sort"
	"strings"
	"unicode"

	"github.com/livecommerce/stream-analyzer/internal/models"
)

// DefaultKeywordCount is how many keywords a report lists.
const DefaultKeywordCount = 20

// TopKeywords returns the n most frequent tokens across all comment text. Ties
// keep the order in which tokens were first seen.
func TopKeywords(comments []models.Comment, n int) []models.KeywordCount {
	counts := make(map[string]int)
	var order []string

	for _, c := range comments {
		for _, token := range tokenize(c.Text) {
			if !keep(token) {
				continue
			}
			if _, seen := counts[token]; !seen {
				order = append(order, token)
			}
			counts[token]++
		}
	}

	result := make([]models.KeywordCount, len(order))
	for i, token := range order {
		result[i] = models.KeywordCount{Keyword: token, Count: counts[token]}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})

	if n > 0 && len(result) > n {
		result = result[:n]
	}
	return result
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_')
	})
}

func keep(token string) bool {
	runes := []rune(token)
	if len(runes) <= 1 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// Timing counts comments per minute. Comments without a readable time are skipped.
func Timing(comments []models.Comment) map[int]int {
	timing := make(map[int]int)
	for _, c := range comments {
		if c.HasMinute {
			timing[c.Minute]++
		}
	}
	return timing
}
