package validator

import "fmt"

// suggest returns a "did you mean" hint for unknown among candidates, or
// an empty string when nothing is close enough.
func suggest(unknown string, candidates []string) string {
	best := ""
	bestDist := 1000
	for _, c := range candidates {
		if d := levenshteinDistance(unknown, c); d < bestDist {
			bestDist = d
			best = c
		}
	}
	if best == "" || bestDist >= 5 {
		return ""
	}
	return fmt.Sprintf("did you mean %q?", best)
}

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
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
	return prev[len(s2)]
}
