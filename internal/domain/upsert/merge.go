package upsert

import (
	"strings"

	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/model"
)

// MergeTags unions draft tags into the existing tag set, preserving existing
// order and appending new tags at the end. Tags compare case-insensitively.
// added reports whether any draft tag was not already present.
func MergeTags(existing, draft []string) (merged []string, added bool) {
	merged = make([]string, 0, len(existing)+len(draft))
	seen := make(map[string]struct{}, len(existing)+len(draft))

	for _, t := range existing {
		k := strings.ToLower(strings.TrimSpace(t))
		if _, dup := seen[k]; dup || k == "" {
			continue
		}
		seen[k] = struct{}{}
		merged = append(merged, t)
	}

	for _, t := range draft {
		k := strings.ToLower(strings.TrimSpace(t))
		if _, dup := seen[k]; dup || k == "" {
			continue
		}
		seen[k] = struct{}{}
		merged = append(merged, t)
		added = true
	}

	return merged, added
}

// MergeCustomFields overwrites existing values for every key in the draft
// and appends keys the contact did not have yet. Keys absent from the draft
// are left untouched. changed reports whether any value actually differed.
func MergeCustomFields(existing, draft []model.CustomField) (merged []model.CustomField, changed bool) {
	merged = make([]model.CustomField, len(existing))
	copy(merged, existing)

	index := make(map[string]int, len(merged))
	for i, f := range merged {
		index[f.Key] = i
	}

	for _, f := range draft {
		if i, ok := index[f.Key]; ok {
			if merged[i].Value != f.Value {
				merged[i].Value = f.Value
				changed = true
			}
			continue
		}
		index[f.Key] = len(merged)
		merged = append(merged, f)
		changed = true
	}

	return merged, changed
}
