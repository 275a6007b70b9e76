// Package audit implements the entity change-audit engine. It turns before and
// after snapshots of a business entity (or relation/file/translation changes on
// that entity) into immutable, provenance-tagged change records. The engine
// owns the computation only; durable storage belongs to the Store port.
package audit

import "time"

// Source identifies the channel a change originated from.
type Source string

const (
	SourceAdmin      Source = "admin"
	SourceInvitation Source = "invitation"
	SourceTerminal   Source = "terminal"
	SourceSystem     Source = "system"
)

// Action classifies a change record. The set below is closed; ad hoc actions
// go through CustomAction so callers cannot silently typo a built-in one.
type Action string

const (
	ActionCreated            Action = "created"
	ActionUpdated            Action = "updated"
	ActionStatusChanged      Action = "status_changed"
	ActionRelationAdded      Action = "relation_added"
	ActionRelationRemoved    Action = "relation_removed"
	ActionRelationChanged    Action = "relation_changed"
	ActionTranslationChanged Action = "translation_changed"
	ActionFileAdded          Action = "file_added"
	ActionFileRemoved        Action = "file_removed"
)

var knownActions = map[Action]struct{}{
	ActionCreated:            {},
	ActionUpdated:            {},
	ActionStatusChanged:      {},
	ActionRelationAdded:      {},
	ActionRelationRemoved:    {},
	ActionRelationChanged:    {},
	ActionTranslationChanged: {},
	ActionFileAdded:          {},
	ActionFileRemoved:        {},
}

// CustomAction wraps a free-form action name. The name is recorded as-is.
func CustomAction(name string) Action { return Action(name) }

// IsCustom reports whether the action is outside the built-in set.
func (a Action) IsCustom() bool {
	_, ok := knownActions[a]
	return !ok
}

// EntityRef identifies the audited object. It is never mutated after a
// Recorder is constructed.
type EntityRef struct {
	Type string `json:"entity_type"`
	ID   int64  `json:"entity_id"`
}

// FieldChange carries the original (non-normalized, possibly masked) old and
// new values of a single field for display.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// LongTextChange summarizes a change to a long-text field so record size stays
// bounded regardless of entity text length.
type LongTextChange struct {
	OldLength int    `json:"old_length"`
	NewLength int    `json:"new_length"`
	DiffType  string `json:"diff_type"`
	Preview   string `json:"preview"`
}

// Relation item actions. Distinct from record Actions: they tag individual
// items inside a payload, not the record itself.
const (
	ItemAdded   = "added"
	ItemRemoved = "removed"
)

// RelatedItem is one resolved member of a relation delta. File items reuse the
// same shape with Type "file" and the file-specific fields populated.
type RelatedItem struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id,omitempty"`
	Name     string            `json:"name"`
	Action   string            `json:"action"`
	Extra    map[string]string `json:"extra,omitempty"`
	Size     int64             `json:"size,omitempty"`
	Mime     string            `json:"mime,omitempty"`
	IsImage  bool              `json:"is_image,omitempty"`
	Category string            `json:"category,omitempty"`
}

// Translation marks a record as a change to a language-specific projection of
// the entity.
type Translation struct {
	LangCode string `json:"lang_code"`
}

// Details is the single structured payload of a change record. It is always
// assembled and persisted as one unit; splitting changed_fields from the rest
// would let a store write path drop source attribution.
type Details struct {
	Source          Source                    `json:"source"`
	SourceContext   map[string]any            `json:"source_context,omitempty"`
	ChangedFields   map[string]FieldChange    `json:"changed_fields,omitempty"`
	LongTextChanges map[string]LongTextChange `json:"long_text_changes,omitempty"`
	RelatedItems    []RelatedItem             `json:"related_items,omitempty"`
	Translation     *Translation              `json:"translation,omitempty"`
	Extra           map[string]any            `json:"extra,omitempty"`
}

// ChangeRecord is the unit this engine produces. Write-once, append-only; it
// is never updated or deleted.
type ChangeRecord struct {
	ID         int64     `json:"id"`
	Entity     EntityRef `json:"entity"`
	Action     Action    `json:"action"`
	Details    Details   `json:"details"`
	CustomerID int64     `json:"customer_id,omitempty"`
	LocationID int64     `json:"location_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Filter narrows a List call on the audit log store.
type Filter struct {
	EntityType string
	EntityID   int64
	Source     Source
	Action     Action
	CustomerID int64
	Limit      int
	Offset     int
}
