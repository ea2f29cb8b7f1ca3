package errors

import (
	"fmt"
	"strings"
)

// SuggestFieldName suggests a known attribute when an unknown one is referenced.
// It uses Levenshtein distance to find the closest name.
func SuggestFieldName(unknown string, validFields []string) string {
	if len(validFields) == 0 {
		return ""
	}

	if best, ok := closest(unknown, validFields, 4); ok {
		return fmt.Sprintf("did you mean '%s'?", best)
	}

	if len(validFields) > 5 {
		return fmt.Sprintf("known attributes include: %s, ...", strings.Join(validFields[:5], ", "))
	}
	return fmt.Sprintf("known attributes: %s", strings.Join(validFields, ", "))
}

// SuggestOperator lists the comparison operators usable with an attribute kind.
func SuggestOperator(kind string) string {
	switch kind {
	case "number":
		return "valid operators: ==, !=, <, <=, >, >="
	case "string", "boolean":
		return "valid operators: ==, !="
	default:
		return "valid operators: ==, !=, <, <=, >, >="
	}
}

// SuggestToken suggests a replacement for a token the grammar does not allow.
func SuggestToken(tok string) string {
	switch strings.ToLower(tok) {
	case "=":
		return "use '==' for equality"
	case "!":
		return "use 'not' or '!='"
	case "&&", "&":
		return "use 'and'"
	case "||", "|":
		return "use 'or'"
	case "<>":
		return "use '!='"
	case "in", "between":
		return "expand into comparisons joined by 'or' / 'and'"
	}

	keywords := []string{"and", "or", "not", "true", "false", "null"}
	if best, ok := closest(strings.ToLower(tok), keywords, 1); ok {
		return fmt.Sprintf("did you mean '%s'?", best)
	}
	return ""
}

// closest returns the candidate nearest to s if within maxDist edits.
// Ties resolve to the earliest candidate.
func closest(s string, candidates []string, maxDist int) (string, bool) {
	minDistance := maxDist + 1
	var bestMatch string

	for _, c := range candidates {
		if dist := levenshteinDistance(s, c); dist < minDistance {
			minDistance = dist
			bestMatch = c
		}
	}

	return bestMatch, minDistance <= maxDist
}

// levenshteinDistance computes the Levenshtein distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1 := len(s1)
	len2 := len(s2)

	// Two rolling rows of the distance matrix
	prev := make([]int, len2+1)
	curr := make([]int, len2+1)
	for j := 0; j <= len2; j++ {
		prev[j] = j
	}

	for i := 1; i <= len1; i++ {
		curr[0] = i
		for j := 1; j <= len2; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			curr[j] = min(
				prev[j]+1,      // Deletion
				curr[j-1]+1,    // Insertion
				prev[j-1]+cost, // Substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len2]
}
