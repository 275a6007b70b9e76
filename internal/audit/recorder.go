package audit

import (
	"context"
	"fmt"
)

// Recorder is a transient audit session bound to one entity reference. It is
// created per logging call-site and discarded after the write; it is never
// persisted. A Recorder is not safe for concurrent use, but independent
// Recorders are.
//
// All Log* methods return the store-generated record id. A nothing-to-log
// condition (empty diff, empty relation delta) returns (0, nil); a genuine
// store failure returns the error. Callers must not treat either as fatal to
// the business operation.
type Recorder struct {
	engine *Engine
	entity EntityRef

	source     Source
	sourceCtx  map[string]any
	visitorCtx map[string]any
}

// ForEntity opens an audit session for an entity. Source detection is lazy:
// it runs the first time a record is actually written, so ambient state can
// finish establishing itself between construction and the write.
func (e *Engine) ForEntity(entityType string, entityID int64) *Recorder {
	return &Recorder{
		engine: e,
		entity: EntityRef{Type: entityType, ID: entityID},
	}
}

// ForEntityFrom opens an audit session with a pre-forced source channel,
// bypassing detection entirely.
func (e *Engine) ForEntityFrom(entityType string, entityID int64, source Source, sourceCtx map[string]any) *Recorder {
	r := e.ForEntity(entityType, entityID)
	r.SetSource(source, sourceCtx)
	return r
}

// SetSource forces the source channel for this session. Forcing wins over
// detection for the remainder of the session.
func (r *Recorder) SetSource(source Source, sourceCtx map[string]any) *Recorder {
	r.source = source
	r.sourceCtx = sourceCtx
	return r
}

// SetVisitorContext attaches a visitor identity to the session. It is merged
// into the source context only when the terminal channel wins detection.
func (r *Recorder) SetVisitorContext(name, email string, visitorID int64) *Recorder {
	r.visitorCtx = map[string]any{}
	if name != "" {
		r.visitorCtx["visitor_name"] = name
	}
	if email != "" {
		r.visitorCtx["visitor_email"] = email
	}
	if visitorID != 0 {
		r.visitorCtx["visitor_id"] = visitorID
	}
	return r
}

// ChangeOption adjusts a single LogChange/LogTranslationChange call.
type ChangeOption func(*changeOptions)

type changeOptions struct {
	action Action
	config *EntityConfig
}

// AsCreated records the change as a creation: no diff is computed, only the
// source attribution is kept.
func AsCreated() ChangeOption {
	return func(o *changeOptions) { o.action = ActionCreated }
}

// WithConfig overrides the registry configuration for this call.
func WithConfig(cfg EntityConfig) ChangeOption {
	return func(o *changeOptions) { o.config = &cfg }
}

// LogChange computes the field-level diff of a snapshot pair and writes one
// record. Missing or disabled entity configuration skips diff computation,
// which for an update means nothing to log.
func (r *Recorder) LogChange(ctx context.Context, oldSnap, newSnap map[string]any, opts ...ChangeOption) (int64, error) {
	o := changeOptions{action: ActionUpdated}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, enabled := r.changeConfig(o)

	if o.action == ActionCreated {
		return r.write(ctx, ActionCreated, Details{}, nil, newSnap)
	}

	if !enabled {
		return 0, nil
	}

	changed, longText := computeDiff(cfg, oldSnap, newSnap)
	if len(changed) == 0 && len(longText) == 0 {
		return 0, nil
	}
	details := Details{ChangedFields: changed, LongTextChanges: longText}
	return r.write(ctx, o.action, details, oldSnap, newSnap)
}

// LogStatusChange records a status transition as a dedicated action.
func (r *Recorder) LogStatusChange(ctx context.Context, oldStatus, newStatus string) (int64, error) {
	if normalize(oldStatus).equal(normalize(newStatus)) {
		return 0, nil
	}
	details := Details{
		ChangedFields: map[string]FieldChange{
			"status": {Old: oldStatus, New: newStatus},
		},
	}
	return r.write(ctx, ActionStatusChanged, details, nil, nil)
}

// LogRelationChange diffs a many-to-many relation's id sets, resolves the
// delta to named items, and writes one record. A no-op delta produces no
// record.
func (r *Recorder) LogRelationChange(ctx context.Context, relation string, oldIDs, newIDs []int64) (int64, error) {
	added, removed := DiffRelations(oldIDs, newIDs)
	if len(added) == 0 && len(removed) == 0 {
		return 0, nil
	}

	cfg, ok := r.engine.configs.Get(r.entity.Type)
	if !ok {
		return 0, nil
	}
	rule, ok := cfg.Relations[relation]
	if !ok {
		r.engine.logger.WarnContext(ctx, "no resolution rule for relation",
			"entity_type", r.entity.Type,
			"relation", relation,
		)
		return 0, nil
	}

	lang := r.engine.ambient(ctx).Language
	items := r.engine.resolveRelation(ctx, rule, added, lang, ItemAdded)
	items = append(items, r.engine.resolveRelation(ctx, rule, removed, lang, ItemRemoved)...)
	if len(items) == 0 {
		return 0, nil
	}

	action := ActionRelationChanged
	switch {
	case len(removed) == 0:
		action = ActionRelationAdded
	case len(added) == 0:
		action = ActionRelationRemoved
	}
	return r.write(ctx, action, Details{RelatedItems: items}, nil, nil)
}

// LogTranslationChange records a change to a language-specific projection of
// the entity. The diff follows the same configuration as LogChange.
func (r *Recorder) LogTranslationChange(ctx context.Context, langCode string, oldSnap, newSnap map[string]any, opts ...ChangeOption) (int64, error) {
	o := changeOptions{action: ActionTranslationChanged}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, enabled := r.changeConfig(o)
	if !enabled {
		return 0, nil
	}

	changed, longText := computeDiff(cfg, oldSnap, newSnap)
	if len(changed) == 0 && len(longText) == 0 {
		return 0, nil
	}
	details := Details{
		ChangedFields:   changed,
		LongTextChanges: longText,
		Translation:     &Translation{LangCode: langCode},
	}
	return r.write(ctx, ActionTranslationChanged, details, oldSnap, newSnap)
}

// LogFileChange records attached or removed files. Only provenance metadata
// survives; storage paths never reach the record.
func (r *Recorder) LogFileChange(ctx context.Context, itemAction string, files []FileMeta, category string) (int64, error) {
	if len(files) == 0 {
		return 0, nil
	}

	var action Action
	switch itemAction {
	case ItemAdded:
		action = ActionFileAdded
	case ItemRemoved:
		action = ActionFileRemoved
	default:
		return 0, fmt.Errorf("unknown file action %q", itemAction)
	}

	details := Details{RelatedItems: fileItems(itemAction, files, category)}
	return r.write(ctx, action, details, nil, nil)
}

// LogRelatedItems records pre-resolved related items, for callers that
// already hold display names and bypass the resolver.
func (r *Recorder) LogRelatedItems(ctx context.Context, items []RelatedItem, itemAction string) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tagged := make([]RelatedItem, len(items))
	copy(tagged, items)
	for i := range tagged {
		if tagged[i].Action == "" {
			tagged[i].Action = itemAction
		}
	}

	action := ActionRelationChanged
	switch itemAction {
	case ItemAdded:
		action = ActionRelationAdded
	case ItemRemoved:
		action = ActionRelationRemoved
	}
	return r.write(ctx, action, Details{RelatedItems: tagged}, nil, nil)
}

// LogCustomAction records a free-form action with optional extra payload.
func (r *Recorder) LogCustomAction(ctx context.Context, action string, extra map[string]any) (int64, error) {
	return r.write(ctx, CustomAction(action), Details{Extra: extra}, nil, nil)
}

func (r *Recorder) changeConfig(o changeOptions) (EntityConfig, bool) {
	if o.config != nil {
		return *o.config, !o.config.Disabled
	}
	return r.engine.config(r.entity.Type)
}

// write assembles the final payload and appends it through the store port.
// The Details payload goes out as one unit; source attribution is never
// separated from the diff.
func (r *Recorder) write(ctx context.Context, action Action, details Details, oldSnap, newSnap map[string]any) (int64, error) {
	e := r.engine
	amb := e.ambient(ctx)

	if r.source == "" {
		r.source, r.sourceCtx = e.detectSource(ctx, amb)
	}

	details.Source = r.source
	details.SourceContext = r.mergedSourceContext()

	record := &ChangeRecord{
		Entity:     r.entity,
		Action:     action,
		Details:    details,
		CustomerID: resolveCustomerScope(amb, oldSnap, newSnap),
		LocationID: resolveLocationScope(amb, r.source, details.SourceContext, oldSnap, newSnap),
		CreatedAt:  e.now(),
	}

	id, err := e.store.Append(ctx, record)
	if err != nil {
		if e.metrics != nil {
			e.metrics.AppendFailures.Inc()
		}
		e.logger.WarnContext(ctx, "audit append failed",
			"entity_type", r.entity.Type,
			"entity_id", r.entity.ID,
			"action", string(action),
			"error", err,
		)
		return 0, err
	}
	record.ID = id

	if e.metrics != nil {
		e.metrics.RecordsWritten.WithLabelValues(string(action), string(r.source)).Inc()
	}
	e.logger.DebugContext(ctx, "audit record written",
		"record_id", id,
		"entity_type", r.entity.Type,
		"entity_id", r.entity.ID,
		"action", string(action),
		"source", string(r.source),
	)

	e.emit(ctx, *record)
	return id, nil
}

// mergedSourceContext copies the detected context and, for the terminal
// channel only, folds in the explicitly attached visitor identity.
func (r *Recorder) mergedSourceContext() map[string]any {
	merged := make(map[string]any, len(r.sourceCtx)+len(r.visitorCtx))
	for k, v := range r.sourceCtx {
		merged[k] = v
	}
	if r.source == SourceTerminal {
		for k, v := range r.visitorCtx {
			merged[k] = v
		}
	}
	return merged
}

// Tenant scope resolution prefers values embedded on the entity itself, then
// the ambient session scope. For the terminal channel the location captured
// during source detection wins.
func resolveCustomerScope(amb Ambient, snaps ...map[string]any) int64 {
	if id, ok := scopeFromSnapshots("customer_id", snaps...); ok {
		return id
	}
	return amb.CustomerID
}

func resolveLocationScope(amb Ambient, source Source, sourceCtx map[string]any, snaps ...map[string]any) int64 {
	if source == SourceTerminal {
		if id, ok := asScopeID(sourceCtx["location_id"]); ok {
			return id
		}
	}
	if id, ok := scopeFromSnapshots("location_id", snaps...); ok {
		return id
	}
	return amb.LocationID
}

func scopeFromSnapshots(key string, snaps ...map[string]any) (int64, bool) {
	// Newest snapshot wins; write() passes (old, new) so iterate backwards.
	for i := len(snaps) - 1; i >= 0; i-- {
		if snaps[i] == nil {
			continue
		}
		if id, ok := asScopeID(snaps[i][key]); ok {
			return id, true
		}
	}
	return 0, false
}

func asScopeID(v any) (int64, bool) {
	n := normalize(v)
	if n.absent {
		return 0, false
	}
	var id int64
	if _, err := fmt.Sscanf(n.value, "%d", &id); err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
