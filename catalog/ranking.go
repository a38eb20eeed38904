package catalog

import (
	"slices"
	"strings"
	"unicode"

	"github.com/SaiNageswarS/go-collection-boot/ds"
)

// topK keeps the best limit items by score, highest first.
func topK(items []ScoredProduct, limit int) []ScoredProduct {
	if limit <= 0 {
		return []ScoredProduct{}
	}

	h := ds.NewMinHeap(func(a, b ScoredProduct) bool { return a.Score < b.Score })
	for _, item := range items {
		h.Push(item)
		if h.Len() > limit {
			h.Pop()
		}
	}

	out := h.ToSortedSlice()
	slices.Reverse(out)
	return out
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	seen := ds.NewSet[string]()
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if seen.Contains(f) {
			continue
		}
		seen.Add(f)
		tokens = append(tokens, f)
	}
	return tokens
}

// keywordScore is the share of query tokens found in the product's searchable text.
func keywordScore(queryTokens []string, p Product) float64 {
	if len(queryTokens) == 0 {
		return 0
	}

	haystack := ds.NewSet[string]()
	for _, tok := range tokenize(p.Name + " " + p.Brand + " " + p.Description) {
		haystack.Add(tok)
	}

	matched := 0
	for _, tok := range queryTokens {
		if haystack.Contains(tok) {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}
