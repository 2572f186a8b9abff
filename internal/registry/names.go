// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import "strings"

// collectiveNames are placeholder entries that name a group rather than a
// person. They are dropped during filtering, compared case-insensitively
// after trimming trailing punctuation.
var collectiveNames = map[string]bool{
	"et al":      true,
	"and others": true,
	"others":     true,
	"unknown":    true,
}

// FilterInventors normalizes and filters a raw inventor name list: names
// are whitespace-collapsed, collective placeholders and empty entries are
// dropped, and duplicates are removed preserving first-seen order.
func FilterInventors(names []string) []string {
	seen := make(map[string]bool)
	filtered := make([]string, 0, len(names))

	for _, raw := range names {
		name := normalizeName(raw)
		if name == "" || isCollective(name) {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		filtered = append(filtered, name)
	}
	return filtered
}

// IsPerson reports whether name survives filtering as a single analyzable
// inventor. The analysis orchestrator rejects non-person names up front.
func IsPerson(name string) bool {
	n := normalizeName(name)
	return n != "" && !isCollective(n)
}

func isCollective(name string) bool {
	return collectiveNames[strings.TrimRight(strings.ToLower(name), ".")]
}

// normalizeName trims and collapses internal whitespace runs.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
