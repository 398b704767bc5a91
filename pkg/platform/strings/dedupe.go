// Package strings holds list normalization shared by entity constructors.
package strings

import (
	"strings"
)

// Compact trims every element and drops blanks and repeats, keeping the
// first occurrence. The result is never nil so it encodes as [] in JSON.
//
//	Compact([]string{"  Ana ", "Luis", "Ana", "", "  "})
//	// []string{"Ana", "Luis"}
func Compact(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// CompactFold is Compact with case-insensitive matching. The spelling of the
// first occurrence is kept.
func CompactFold(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
