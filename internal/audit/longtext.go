package audit

// Long-text fields never land in changed_fields verbatim; they are reduced to
// length/preview metadata so a record stays bounded regardless of how much
// text the entity carries.

const (
	longTextPreviewLimit = 200
	longTextDiffType     = "length_change"
	longTextRemoved      = "[removed]"
)

// summarizeLongText reduces a long-text change to length and preview metadata.
// Lengths and the preview cut are measured in code points, not bytes.
func summarizeLongText(oldText, newText string) LongTextChange {
	change := LongTextChange{
		OldLength: len([]rune(oldText)),
		NewLength: len([]rune(newText)),
		DiffType:  longTextDiffType,
	}
	if newText == "" && oldText != "" {
		change.Preview = longTextRemoved
		return change
	}
	runes := []rune(newText)
	if len(runes) > longTextPreviewLimit {
		change.Preview = string(runes[:longTextPreviewLimit]) + "…"
	} else {
		change.Preview = newText
	}
	return change
}
