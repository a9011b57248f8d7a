// Package strings provides string slice utilities.
package strings

import (
	"slices"
)

// SortedUnique returns a sorted copy of values with duplicates and empty
// strings removed. Lock keys go through it so every caller acquires
// locks in the same order.
//
// Example:
//
//	SortedUnique([]string{"b", "a", "b", ""})
//	// Returns: []string{"a", "b"}
func SortedUnique(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
