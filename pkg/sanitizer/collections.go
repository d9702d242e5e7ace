package sanitizer

import "strings"

// Deduplicate keeps the first occurrence of every item. Order is preserved.
func Deduplicate[T comparable](items []T) []T {
	seen := make(map[T]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// FilterEmpty drops entries that are empty after trimming whitespace.
// Kept entries are not trimmed.
func FilterEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return out
}
