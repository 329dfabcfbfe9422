// Package similarity scores how well a partial query matches a candidate
// title or author.
package similarity

import (
	"strings"

	"github.com/adrg/strutil/metrics"
)

const (
	PrefixScore     = 1.0
	WordPrefixScore = 0.9
	SubstringScore  = 0.8
)

var levenshtein = metrics.NewLevenshtein()

// Score returns a value in [0,1]. The first matching rule wins:
// candidate prefix, word prefix, substring, then normalized edit distance
// over the alphanumeric characters of both strings. An empty query scores 0.
func Score(query, candidate string) float64 {
	if query == "" {
		return 0
	}
	q := strings.ToLower(query)
	c := strings.ToLower(candidate)

	if strings.HasPrefix(c, q) {
		return PrefixScore
	}
	for _, word := range strings.Fields(c) {
		if strings.HasPrefix(word, q) {
			return WordPrefixScore
		}
	}
	if strings.Contains(c, q) {
		return SubstringScore
	}

	return editScore(alphanumeric(q), alphanumeric(c))
}

func editScore(q, c string) float64 {
	longest := max(len(q), len(c))
	if longest == 0 {
		return 0
	}
	distance := levenshtein.Distance(q, c)
	return max(0, 1-float64(distance)/float64(longest))
}

// alphanumeric keeps only ASCII letters and digits; s is already lowercased.
func alphanumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
			b.WriteByte(ch)
		}
	}
	return b.String()
}
