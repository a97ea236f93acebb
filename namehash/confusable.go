package namehash

import (
	"sort"
	"unicode"
)

var scripts = map[string]*unicode.RangeTable{
	"Latin":    unicode.Latin,
	"Cyrillic": unicode.Cyrillic,
	"Greek":    unicode.Greek,
}

// Scripts lists, sorted, which of Latin, Cyrillic and Greek appear in the
// letters of name.
func Scripts(name string) []string {
	seen := map[string]bool{}
	for _, r := range name {
		if !unicode.IsLetter(r) {
			continue
		}
		for script, table := range scripts {
			if unicode.Is(table, r) {
				seen[script] = true
			}
		}
	}
	result := make([]string, 0, len(seen))
	for script := range seen {
		result = append(result, script)
	}
	sort.Strings(result)
	return result
}

// IsConfusable flags names mixing two or more of Latin, Cyrillic and Greek.
// It is advisory and never blocks resolution.
func IsConfusable(name string) bool {
	return len(Scripts(name)) > 1
}
