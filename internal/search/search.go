package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Filter ranks targets against query with unicode-normalized, case-folded
// fuzzy matching and returns the matching indexes, best match first. An empty
// query matches everything in original order.
func Filter(query string, targets []string) []int {
	query = strings.TrimSpace(query)
	if query == "" {
		indexes := make([]int, len(targets))
		for i := range targets {
			indexes[i] = i
		}
		return indexes
	}

	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	sort.Sort(ranks)

	indexes := make([]int, len(ranks))
	for i, r := range ranks {
		indexes[i] = r.OriginalIndex
	}
	return indexes
}

// Matches reports whether query fuzzy-matches target at all. Used for cheap
// membership checks without ranking.
func Matches(query, target string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	return fuzzy.MatchNormalizedFold(query, target)
}
