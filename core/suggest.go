package core

import "strings"

// NameError is returned when an unknown entity or operation name is used.
type NameError struct {
	Kind       string // "entity" or "operation"
	Name       string
	Suggestion string
}

func (e *NameError) Error() string {
	msg := "unknown " + e.Kind + " '" + e.Name + "'"
	if e.Suggestion != "" {
		msg += ". Did you mean '" + e.Suggestion + "'?"
	}
	return msg
}

// FindSimilar returns the candidate closest to input by case-insensitive
// Levenshtein distance, or "" when none is within three edits.
func FindSimilar(input string, candidates []string) string {
	const maxDistance = 3
	inputLower := strings.ToLower(input)

	var bestMatch string
	bestDistance := maxDistance + 1

	for _, candidate := range candidates {
		distance := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if distance < bestDistance {
			bestDistance = distance
			bestMatch = candidate
		}
	}

	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

// levenshteinDistance uses two rolling rows over the runes of a and b.
func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(rb); i++ {
		curr[0] = i
		for j := 1; j <= len(ra); j++ {
			cost := 1
			if rb[i-1] == ra[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j-1]+cost, curr[j-1]+1, prev[j]+1)
		}
		prev, curr = curr, prev
	}

	return prev[len(ra)]
}
