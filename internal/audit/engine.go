package audit

//go:generate mockgen -source=engine.go -destination=mocks/mocks.go -package=mocks Store,Resolver,Directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gatehouse/internal/audit/metrics"
)

// Store is the external audit log store. Append persists one record and
// returns its generated identifier; the engine performs no retries.
type Store interface {
	Append(ctx context.Context, record *ChangeRecord) (int64, error)
	List(ctx context.Context, filter Filter) ([]ChangeRecord, error)
}

// ResolvedItem is one id resolved to a display name by a storage adapter.
type ResolvedItem struct {
	ID    int64
	Name  string
	Extra map[string]string
}

// ErrUnknownStrategy marks a RelationRule whose strategy the adapter cannot
// interpret. Adapters wrap it so the engine can tell a misconfigured rule
// apart from a lookup that merely failed.
var ErrUnknownStrategy = errors.New("unknown resolution strategy")

// Resolver turns raw relation ids into display names according to a
// RelationRule. Adapters interpret the rule's strategy; the engine only
// guarantees that every input id ends up in the output, synthesizing
// placeholders for ids the adapter could not resolve.
type Resolver interface {
	Resolve(ctx context.Context, rule RelationRule, ids []int64, lang string) ([]ResolvedItem, error)
}

// Directory resolves tenant entities referenced by source contexts.
type Directory interface {
	CompanyName(ctx context.Context, id int64) (string, error)
	LocationName(ctx context.Context, id int64) (string, error)
}

// Engine computes and writes change records. It holds no mutable state of its
// own; concurrent Recorders proceed independently.
type Engine struct {
	store     Store
	configs   Registry
	resolver  Resolver
	directory Directory
	ambient   AmbientFunc
	logger    *slog.Logger
	metrics   *metrics.Metrics
	events    chan<- ChangeRecord
	baseLang  string
	now       func() time.Time
}

type Option func(e *Engine)

func WithResolver(r Resolver) Option {
	return func(e *Engine) { e.resolver = r }
}

func WithDirectory(d Directory) Option {
	return func(e *Engine) { e.directory = d }
}

// WithAmbient overrides how ambient state is read. Tests use this to feed the
// detector explicit snapshots.
func WithAmbient(fn AmbientFunc) Option {
	return func(e *Engine) { e.ambient = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithEventSink attaches a channel that receives written records for async
// fan-out. Sends never block: when the channel is full the record is dropped
// from the stream, not from the store.
func WithEventSink(events chan<- ChangeRecord) Option {
	return func(e *Engine) { e.events = events }
}

// WithBaseLanguage sets the system base language used as the first fallback in
// translation-joined lookups. Defaults to "en".
func WithBaseLanguage(lang string) Option {
	return func(e *Engine) { e.baseLang = lang }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New constructs an Engine over the given store and per-entity configuration
// registry.
func New(store Store, configs Registry, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		configs:  configs,
		ambient:  AmbientFromContext,
		logger:   slog.Default(),
		baseLang: "en",
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Records queries the audit log store. Limit is clamped to keep the reporting
// surface from unbounded scans.
func (e *Engine) Records(ctx context.Context, filter Filter) ([]ChangeRecord, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return e.store.List(ctx, filter)
}

// resolveRelation resolves a relation delta into related items. Every input
// id yields exactly one item: ids the adapter cannot name get a synthesized
// "<Label> #<id>" placeholder, and a resolver lookup failure degrades to
// placeholders for the whole delta so the record still writes. Only a rule
// the adapter cannot interpret (ErrUnknownStrategy) drops the category, and
// never with an error; other payload parts still write.
func (e *Engine) resolveRelation(ctx context.Context, rule RelationRule, ids []int64, lang, itemAction string) []RelatedItem {
	if len(ids) == 0 {
		return nil
	}

	var resolved []ResolvedItem
	if e.resolver != nil {
		var err error
		resolved, err = e.resolver.Resolve(ctx, rule, ids, lang)
		if err != nil {
			if e.metrics != nil {
				e.metrics.RelationLookupFailures.Inc()
			}
			if errors.Is(err, ErrUnknownStrategy) {
				e.logger.WarnContext(ctx, "relation resolution failed",
					"item_type", rule.ItemType,
					"strategy", string(rule.Strategy),
					"error", err,
				)
				return nil
			}
			e.logger.WarnContext(ctx, "relation lookup failed, using placeholder names",
				"item_type", rule.ItemType,
				"strategy", string(rule.Strategy),
				"error", err,
			)
			resolved = nil
		}
	}

	byID := make(map[int64]ResolvedItem, len(resolved))
	for _, item := range resolved {
		byID[item.ID] = item
	}

	items := make([]RelatedItem, 0, len(ids))
	for _, id := range ids {
		item := RelatedItem{
			Type:   rule.ItemType,
			ID:     id,
			Action: itemAction,
		}
		if r, ok := byID[id]; ok && r.Name != "" {
			item.Name = r.Name
			item.Extra = r.Extra
		} else {
			item.Name = placeholderName(rule, id)
		}
		items = append(items, item)
	}
	return items
}

func placeholderName(rule RelationRule, id int64) string {
	label := rule.Label
	if label == "" {
		label = "Item"
	}
	return fmt.Sprintf("%s #%d", label, id)
}

func (e *Engine) config(entityType string) (EntityConfig, bool) {
	if e.configs == nil {
		return EntityConfig{}, false
	}
	cfg, ok := e.configs.Get(entityType)
	if !ok || cfg.Disabled {
		return cfg, false
	}
	return cfg, true
}

// emit fans a written record out to the event sink without ever blocking the
// write path.
func (e *Engine) emit(ctx context.Context, record ChangeRecord) {
	if e.events == nil {
		return
	}
	select {
	case e.events <- record:
	default:
		if e.metrics != nil {
			e.metrics.StreamDropped.Inc()
		}
		e.logger.DebugContext(ctx, "event sink full, record not streamed",
			"entity_type", record.Entity.Type,
			"entity_id", record.Entity.ID,
		)
	}
}
