package agent

import (
	"strings"

	"github.com/ashureev/taskyar/internal/tools"
)

// MatchTaskByTitle resolves a free-text reference against the user's tasks.
//
// Matching strategy, case-insensitive:
//  1. Exact title match, which short-circuits immediately.
//  2. Substring match in either direction.
//  3. Word overlap: at least 50% of the query's words appear in the title
//     (floating-point comparison, no rounding), with a floor of one word.
//
// Returns (match, candidates): exactly one candidate yields it as the unique
// match; several candidates yield (nil, candidates) to signal ambiguity;
// none yields (nil, empty).
func MatchTaskByTitle(query string, tasks []tools.TaskData) (*tools.TaskData, []tools.TaskData) {
	if len(tasks) == 0 || strings.TrimSpace(query) == "" {
		return nil, nil
	}

	queryLower := strings.ToLower(strings.TrimSpace(query))
	queryWords := wordSet(queryLower)

	var matches []tools.TaskData
	for i := range tasks {
		title := strings.ToLower(tasks[i].Title)

		if title == queryLower {
			// Exact match wins outright, ignoring all other tiers.
			return &tasks[i], []tools.TaskData{tasks[i]}
		}

		if strings.Contains(title, queryLower) || strings.Contains(queryLower, title) {
			matches = append(matches, tasks[i])
			continue
		}

		overlap := 0
		for w := range wordSet(title) {
			if _, ok := queryWords[w]; ok {
				overlap++
			}
		}
		if float64(overlap) >= 0.5*float64(len(queryWords)) && overlap >= 1 {
			matches = append(matches, tasks[i])
		}
	}

	if len(matches) == 1 {
		return &matches[0], matches
	}
	return nil, matches
}

// DetectAmbiguity reports whether a candidate set is ambiguous.
func DetectAmbiguity(matches []tools.TaskData) bool {
	return len(matches) > 1
}

func wordSet(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}
