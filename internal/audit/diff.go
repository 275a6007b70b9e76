package audit

import "sort"

// computeDiff produces the field-level diff of an entity snapshot pair.
// Excluded fields are skipped, sensitive fields are masked before comparison,
// and long-text fields are routed to the summarizer instead of changed_fields.
// The returned FieldChanges carry the original (non-normalized, possibly
// masked) values for display.
func computeDiff(cfg EntityConfig, oldSnap, newSnap map[string]any) (map[string]FieldChange, map[string]LongTextChange) {
	changed := map[string]FieldChange{}
	longText := map[string]LongTextChange{}

	for _, field := range unionKeys(oldSnap, newSnap) {
		if cfg.excluded(field) {
			continue
		}
		oldVal, newVal := oldSnap[field], newSnap[field]

		if cfg.masked(field) {
			// Presence masking: the raw value never reaches comparison or
			// storage. Two different non-empty secrets compare equal here;
			// only set/cleared transitions are recorded.
			oldVal, newVal = maskPresence(oldVal), maskPresence(newVal)
		}

		if cfg.longText(field) {
			oldText, newText := textOf(oldVal), textOf(newVal)
			if oldText != newText {
				longText[field] = summarizeLongText(oldText, newText)
			}
			continue
		}

		if normalize(oldVal).equal(normalize(newVal)) {
			continue
		}
		changed[field] = FieldChange{Old: oldVal, New: newVal}
	}

	return changed, longText
}

func maskPresence(v any) any {
	if present(v) {
		return MaskedToken
	}
	return nil
}

func unionKeys(a, b map[string]any) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
