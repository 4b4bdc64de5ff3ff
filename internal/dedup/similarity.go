package dedup

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Weights of the two similarity components. Sequence ratio dominates so that
// word order and phrasing still matter; Jaccard catches reordered token sets.
const (
	sequenceWeight = 0.6
	jaccardWeight  = 0.4
)

// Similarity scores how alike two texts are, 0.0 to 1.0. Inputs are
// normalized first; if either normalizes to empty the score is 0. The score
// is symmetric, and identical non-empty texts score 1.0.
func Similarity(a, b string) float64 {
	normA := NormalizeText(a)
	normB := NormalizeText(b)
	if normA == "" || normB == "" {
		return 0.0
	}

	seq := sequenceRatio(normA, normB)
	jac := tokenJaccard(normA, normB)
	return sequenceWeight*seq + jaccardWeight*jac
}

// sequenceRatio is the classic difflib measure over rune sequences:
// 2×matches / total length.
func sequenceRatio(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

// tokenJaccard is intersection-over-union of the whitespace-delimited token
// sets of the normalized texts.
func tokenJaccard(a, b string) float64 {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0.0
	}

	intersection := 0
	for token := range tokensA {
		if tokensB[token] {
			intersection++
		}
	}
	union := len(tokensA) + len(tokensB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range strings.Fields(s) {
		set[token] = true
	}
	return set
}
