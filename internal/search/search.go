// Package search ranks catalog and local mods against a free-text query.
package search

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Searchable exposes the strings an item is matched on, most significant first
type Searchable interface {
	SearchValues() []string
}

const (
	scoreExact     = 3.0
	scorePrefix    = 2.0
	scoreSubstring = 1.0
)

// Normalize folds case and strips diacritics so "Tëst" matches "test"
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Score rates how well values match an already-normalized query. The best match tier across all
// values decides (exact > prefix > substring); the position of the first value reaching that tier
// only orders items within the tier, earlier values first.
func Score(values []string, query string) float64 {
	if query == "" {
		return 0
	}

	var best, weight float64
	for i, v := range values {
		if tier := matchTier(Normalize(v), query); tier > best {
			best = tier
			weight = 1 / float64(i+1)
		}
	}
	if best == 0 {
		return 0
	}
	// weight is at most 1, so the tie-break never crosses into the next tier
	return best + weight/2
}

func matchTier(value, query string) float64 {
	switch {
	case value == "":
		return 0
	case value == query:
		return scoreExact
	case strings.HasPrefix(value, query):
		return scorePrefix
	case strings.Contains(value, query):
		return scoreSubstring
	default:
		return 0
	}
}

// Rank returns the items matching query ordered by descending relevance.
// Items that do not match at all are dropped; equal scores keep their input order.
// An empty query returns items unchanged.
func Rank[T Searchable](items []T, query string) []T {
	q := Normalize(query)
	if q == "" {
		return items
	}

	type scored struct {
		item  T
		score float64
	}

	matches := make([]scored, 0, len(items))
	for _, item := range items {
		if s := Score(item.SearchValues(), q); s > 0 {
			matches = append(matches, scored{item: item, score: s})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	result := make([]T, len(matches))
	for i, m := range matches {
		result[i] = m.item
	}
	return result
}
