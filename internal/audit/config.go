package audit

// MaskStrategy declares how a sensitive field is reduced before comparison and
// storage. Only presence masking is implemented: the engine records whether a
// value was set or cleared, never the value itself.
type MaskStrategy string

const MaskPresence MaskStrategy = "presence"

// MaskedToken replaces any non-empty sensitive value in stored diffs.
const MaskedToken = "********"

// Strategy selects how a relation's raw ids resolve to display names. The
// variants are interpreted by the storage adapter so the engine itself stays
// storage-agnostic.
type Strategy string

const (
	// StrategyDirectField reads the name from a single column on the target table.
	StrategyDirectField Strategy = "direct_field"
	// StrategyComputedExpression lets the storage layer compute a derived
	// display string from a declared SQL expression.
	StrategyComputedExpression Strategy = "computed_expression"
	// StrategyTranslationJoin reads the name from a per-language translation
	// table, falling back through active language, base language, any language.
	StrategyTranslationJoin Strategy = "translation_join"
)

// RelationRule declares how one named relation of an entity type resolves to
// human-readable items.
type RelationRule struct {
	Strategy Strategy

	// ItemType tags resolved items in the record, e.g. "department".
	ItemType string
	// Label seeds placeholder names ("<Label> #<id>") for unresolvable ids.
	Label string

	// Table and IDColumn locate the target rows. IDColumn defaults to "id".
	Table    string
	IDColumn string

	// NameColumn is read for StrategyDirectField.
	NameColumn string
	// Expression is evaluated for StrategyComputedExpression.
	Expression string

	// Translation-join lookup. ForeignKeyColumn points back at the target id,
	// LangColumn defaults to "lang_code".
	TranslationTable string
	ForeignKeyColumn string
	LangColumn       string

	// ExtraColumns are carried verbatim into each item's Extra map.
	ExtraColumns []string
}

// EntityConfig declares the audit behavior of one entity type.
type EntityConfig struct {
	// Disabled suppresses update records, which are the only kind that
	// carries a field diff. Creation and the other change kinds (relations,
	// files, custom actions) still record.
	Disabled bool

	// Label seeds placeholder names when the entity appears in lookups.
	Label string

	// ExcludedFields are skipped entirely when diffing.
	ExcludedFields []string

	// SensitiveFields maps a field to its mask strategy. Masking happens
	// before comparison, so the raw value never reaches storage.
	SensitiveFields map[string]MaskStrategy

	// LongTextFields are routed to the long-text summarizer instead of
	// appearing in changed_fields.
	LongTextFields []string

	// Relations declares resolution rules keyed by relation name.
	Relations map[string]RelationRule
}

func (c EntityConfig) excluded(field string) bool {
	for _, f := range c.ExcludedFields {
		if f == field {
			return true
		}
	}
	return false
}

func (c EntityConfig) longText(field string) bool {
	for _, f := range c.LongTextFields {
		if f == field {
			return true
		}
	}
	return false
}

func (c EntityConfig) masked(field string) bool {
	s, ok := c.SensitiveFields[field]
	return ok && s == MaskPresence
}

// Registry maps entity types to their audit configuration. It is injected at
// engine construction; there is no convention-based lookup. A missing entry
// means diffing is skipped for that type, which is not an error.
type Registry map[string]EntityConfig

// Get returns the configuration for an entity type.
func (r Registry) Get(entityType string) (EntityConfig, bool) {
	cfg, ok := r[entityType]
	return cfg, ok
}
