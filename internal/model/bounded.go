package model

import "strings"

// MaxBoundedItems caps skills, tags, job skills and project types.
const MaxBoundedItems = 3

// SplitBounded splits comma-delimited text into trimmed, non-empty items and
// keeps only the first max. Overflow is dropped, never rejected.
func SplitBounded(text string, max int) []string {
	items := make([]string, 0, max)
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		items = append(items, part)
		if len(items) == max {
			break
		}
	}
	return items
}

// CapSequence keeps the first max non-empty entries of items.
func CapSequence(items []string, max int) []string {
	out := make([]string, 0, max)
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
		if len(out) == max {
			break
		}
	}
	return out
}
