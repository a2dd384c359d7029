package key

import (
	"slices"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
)

// maxSuggestDistance is the largest edit distance Suggest accepts.
const maxSuggestDistance = 2

var knownNames = sync.OnceValue(func() []string {
	names := make([]string, 0, len(keyAliases)+len(runeAliases))
	for n := range keyAliases {
		names = append(names, n)
	}
	for n := range runeAliases {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
})

// Suggest returns the known key name closest to name, or "" when none is
// within two edits. Ties go to the lexically smaller name.
func Suggest(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) < 2 {
		return ""
	}

	best, bestDist := "", maxSuggestDistance+1
	for _, cand := range knownNames() {
		if d := levenshtein.ComputeDistance(name, cand); d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best
}
