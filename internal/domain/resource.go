package domain

import "strings"

// NameKey normalizes a display name for the per-trainer uniqueness check:
// trimmed and lowercased. Stored alongside the display name so the unique
// index can enforce the constraint atomically.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DedupTags removes duplicate tags while keeping first-seen order.
func DedupTags(tags []string) []string {
	if len(tags) == 0 {
		return tags
	}
	seen := make(map[string]struct{}, len(tags))
	out := tags[:0]
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
