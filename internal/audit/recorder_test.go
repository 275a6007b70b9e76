package audit_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"gatehouse/internal/audit"
	"gatehouse/internal/audit/directory"
	"gatehouse/internal/audit/mocks"
	resolverMemory "gatehouse/internal/audit/resolver/memory"
	storeMemory "gatehouse/internal/audit/store/memory"
	"gatehouse/pkg/requestcontext"
)

// The Recorder is where diffing, source detection, scope resolution and
// persistence meet. These tests run the full write path against the in-memory
// adapters and assert on what actually lands in the store.

type RecorderSuite struct {
	suite.Suite
	store    *storeMemory.InMemory
	resolver *resolverMemory.InMemory
	dir      *directory.InMemory
	engine   *audit.Engine

	ambient audit.Ambient
	now     time.Time
}

func TestRecorderSuite(t *testing.T) {
	suite.Run(t, new(RecorderSuite))
}

func (s *RecorderSuite) SetupTest() {
	s.store = storeMemory.NewInMemory()
	s.resolver = resolverMemory.NewInMemory("en")
	s.dir = directory.NewInMemory()
	s.dir.SeedLocation(4, "Berlin HQ")
	s.ambient = audit.Ambient{}
	s.now = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	s.resolver.Seed("tags", map[int64]resolverMemory.Entry{
		1: {Name: "VIP", Extra: map[string]string{"color": "#ffd700"}},
		2: {Name: "Contractor"},
	})
	s.resolver.Seed("department_translations", map[int64]resolverMemory.Entry{
		5: {Translations: map[string]string{"en": "Engineering", "de": "Technik"}},
		6: {Translations: map[string]string{"fr": "Accueil"}},
	})

	s.engine = audit.New(s.store, testRegistry(),
		audit.WithResolver(s.resolver),
		audit.WithDirectory(s.dir),
		audit.WithAmbient(func(context.Context) audit.Ambient { return s.ambient }),
		audit.WithClock(func() time.Time { return s.now }),
		audit.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func testRegistry() audit.Registry {
	return audit.Registry{
		"visit": {
			Label:          "Visit",
			ExcludedFields: []string{"updated_at"},
			SensitiveFields: map[string]audit.MaskStrategy{
				"access_pin": audit.MaskPresence,
			},
			LongTextFields: []string{"notes"},
			Relations: map[string]audit.RelationRule{
				"tags": {
					Strategy:     audit.StrategyDirectField,
					ItemType:     "tag",
					Label:        "Tag",
					Table:        "tags",
					NameColumn:   "name",
					ExtraColumns: []string{"color"},
				},
				"departments": {
					Strategy:         audit.StrategyTranslationJoin,
					ItemType:         "department",
					Label:            "Department",
					Table:            "departments",
					TranslationTable: "department_translations",
					ForeignKeyColumn: "department_id",
				},
				"legacy": {
					Strategy: "lookup_v1",
					ItemType: "legacy",
					Label:    "Legacy",
					Table:    "legacy",
				},
			},
		},
		"archived_visit": {Disabled: true},
	}
}

func (s *RecorderSuite) lastRecord() audit.ChangeRecord {
	records, err := s.store.List(context.Background(), audit.Filter{})
	s.Require().NoError(err)
	s.Require().NotEmpty(records)
	return records[len(records)-1]
}

// =============================================================================
// LogChange
// =============================================================================

func (s *RecorderSuite) TestLogChange() {
	ctx := context.Background()

	s.Run("update writes one record with the computed diff", func() {
		id, err := s.engine.ForEntity("visit", 42).LogChange(ctx,
			map[string]any{"host": "Ada", "updated_at": "2026-01-01"},
			map[string]any{"host": "Grace", "updated_at": "2026-02-01"},
		)
		s.Require().NoError(err)
		s.NotZero(id)

		rec := s.lastRecord()
		s.Equal(audit.ActionUpdated, rec.Action)
		s.Equal("visit", rec.Entity.Type)
		s.Equal(int64(42), rec.Entity.ID)
		s.Len(rec.Details.ChangedFields, 1)
		s.Equal("Grace", rec.Details.ChangedFields["host"].New)
		s.Equal(s.now, rec.CreatedAt)
	})

	s.Run("empty diff means nothing to log", func() {
		before, err := s.store.List(ctx, audit.Filter{})
		s.Require().NoError(err)

		snap := map[string]any{"host": "Ada"}
		id, err := s.engine.ForEntity("visit", 42).LogChange(ctx, snap, snap)
		s.NoError(err)
		s.Zero(id)

		after, err := s.store.List(ctx, audit.Filter{})
		s.Require().NoError(err)
		s.Len(after, len(before))
	})

	s.Run("representation-only changes mean nothing to log", func() {
		id, err := s.engine.ForEntity("visit", 42).LogChange(ctx,
			map[string]any{"badge": 17, "note": nil},
			map[string]any{"badge": "17", "note": ""},
		)
		s.NoError(err)
		s.Zero(id)
	})

	s.Run("creation records no diff", func() {
		id, err := s.engine.ForEntity("visit", 43).LogChange(ctx,
			nil,
			map[string]any{"host": "Ada", "access_pin": "4711"},
			audit.AsCreated(),
		)
		s.Require().NoError(err)
		s.NotZero(id)

		rec := s.lastRecord()
		s.Equal(audit.ActionCreated, rec.Action)
		s.Empty(rec.Details.ChangedFields)
	})

	s.Run("creation writes even for unconfigured and disabled types", func() {
		id, err := s.engine.ForEntity("unknown_thing", 7).LogChange(ctx,
			nil,
			map[string]any{"a": 1},
			audit.AsCreated(),
		)
		s.Require().NoError(err)
		s.NotZero(id)
		s.Equal(audit.ActionCreated, s.lastRecord().Action)

		id, err = s.engine.ForEntity("archived_visit", 8).LogChange(ctx,
			nil,
			map[string]any{"a": 1},
			audit.AsCreated(),
		)
		s.Require().NoError(err)
		s.NotZero(id)
		s.Empty(s.lastRecord().Details.ChangedFields)
	})

	s.Run("unconfigured entity type skips update diffing", func() {
		id, err := s.engine.ForEntity("unknown_thing", 1).LogChange(ctx,
			map[string]any{"a": 1},
			map[string]any{"a": 2},
		)
		s.NoError(err)
		s.Zero(id)
	})

	s.Run("disabled entity type skips update diffing", func() {
		id, err := s.engine.ForEntity("archived_visit", 1).LogChange(ctx,
			map[string]any{"a": 1},
			map[string]any{"a": 2},
		)
		s.NoError(err)
		s.Zero(id)
	})

	s.Run("per-call config override wins over the registry", func() {
		id, err := s.engine.ForEntity("unknown_thing", 1).LogChange(ctx,
			map[string]any{"a": 1},
			map[string]any{"a": 2},
			audit.WithConfig(audit.EntityConfig{Label: "Thing"}),
		)
		s.Require().NoError(err)
		s.NotZero(id)
	})

	s.Run("masked field stores the token only", func() {
		id, err := s.engine.ForEntity("visit", 42).LogChange(ctx,
			map[string]any{"access_pin": nil},
			map[string]any{"access_pin": "9999"},
		)
		s.Require().NoError(err)
		s.NotZero(id)

		rec := s.lastRecord()
		s.Equal(audit.MaskedToken, rec.Details.ChangedFields["access_pin"].New)
	})

	s.Run("long-text change lands as summary", func() {
		id, err := s.engine.ForEntity("visit", 42).LogChange(ctx,
			map[string]any{"notes": "old notes"},
			map[string]any{"notes": "new notes"},
		)
		s.Require().NoError(err)
		s.NotZero(id)

		rec := s.lastRecord()
		s.Empty(rec.Details.ChangedFields)
		s.Equal("new notes", rec.Details.LongTextChanges["notes"].Preview)
	})
}

// =============================================================================
// LogStatusChange
// =============================================================================

func (s *RecorderSuite) TestLogStatusChange() {
	ctx := context.Background()

	s.Run("transition writes a status_changed record", func() {
		rec := s.engine.ForEntityFrom("visit", 42, audit.SourceAdmin, map[string]any{"actor_id": int64(7)})
		id, err := rec.LogStatusChange(ctx, "pending", "approved")
		s.Require().NoError(err)
		s.NotZero(id)

		stored := s.lastRecord()
		s.Equal(audit.ActionStatusChanged, stored.Action)
		s.Equal(audit.SourceAdmin, stored.Details.Source)
		s.Equal(int64(7), stored.Details.SourceContext["actor_id"])
		s.Equal("pending", stored.Details.ChangedFields["status"].Old)
		s.Equal("approved", stored.Details.ChangedFields["status"].New)
	})

	s.Run("same status means nothing to log", func() {
		id, err := s.engine.ForEntity("visit", 42).LogStatusChange(ctx, "approved", "approved")
		s.NoError(err)
		s.Zero(id)
	})
}

// =============================================================================
// LogRelationChange
// =============================================================================

func (s *RecorderSuite) TestLogRelationChange() {
	ctx := context.Background()

	s.Run("resolved delta writes named items", func() {
		id, err := s.engine.ForEntity("visit", 42).LogRelationChange(ctx, "tags", []int64{1}, []int64{1, 2})
		s.Require().NoError(err)
		s.NotZero(id)

		rec := s.lastRecord()
		s.Equal(audit.ActionRelationAdded, rec.Action)
		s.Require().Len(rec.Details.RelatedItems, 1)
		item := rec.Details.RelatedItems[0]
		s.Equal("tag", item.Type)
		s.Equal(int64(2), item.ID)
		s.Equal("Contractor", item.Name)
		s.Equal(audit.ItemAdded, item.Action)
	})

	s.Run("removal-only delta records relation_removed", func() {
		id, err := s.engine.ForEntity("visit", 42).LogRelationChange(ctx, "tags", []int64{1, 2}, []int64{2})
		s.Require().NoError(err)
		s.NotZero(id)
		s.Equal(audit.ActionRelationRemoved, s.lastRecord().Action)
	})

	s.Run("mixed delta records relation_changed with both actions", func() {
		id, err := s.engine.ForEntity("visit", 42).LogRelationChange(ctx, "tags", []int64{1}, []int64{2})
		s.Require().NoError(err)
		s.NotZero(id)

		rec := s.lastRecord()
		s.Equal(audit.ActionRelationChanged, rec.Action)
		s.Require().Len(rec.Details.RelatedItems, 2)
		s.Equal(audit.ItemAdded, rec.Details.RelatedItems[0].Action)
		s.Equal(audit.ItemRemoved, rec.Details.RelatedItems[1].Action)
	})

	s.Run("equal sets mean nothing to log", func() {
		id, err := s.engine.ForEntity("visit", 42).LogRelationChange(ctx, "tags", []int64{1, 2}, []int64{2, 1})
		s.NoError(err)
		s.Zero(id)
	})

	s.Run("unresolvable id gets a placeholder name", func() {
		id, err := s.engine.ForEntity("visit", 42).LogRelationChange(ctx, "tags", nil, []int64{2, 999})
		s.Require().NoError(err)
		s.NotZero(id)

		rec := s.lastRecord()
		s.Require().Len(rec.Details.RelatedItems, 2)
		s.Equal("Contractor", rec.Details.RelatedItems[0].Name)
		s.Equal("Tag #999", rec.Details.RelatedItems[1].Name)
		s.Equal(int64(999), rec.Details.RelatedItems[1].ID)
	})

	s.Run("extra columns are carried into items", func() {
		id, err := s.engine.ForEntity("visit", 42).LogRelationChange(ctx, "tags", nil, []int64{1})
		s.Require().NoError(err)
		s.NotZero(id)
		s.Equal("#ffd700", s.lastRecord().Details.RelatedItems[0].Extra["color"])
	})

	s.Run("translation join resolves in the active language", func() {
		s.ambient = audit.Ambient{Language: "de"}
		id, err := s.engine.ForEntity("visit", 42).LogRelationChange(ctx, "departments", nil, []int64{5})
		s.Require().NoError(err)
		s.NotZero(id)
		s.Equal("Technik", s.lastRecord().Details.RelatedItems[0].Name)
	})

	s.Run("translation join falls back through base then any language", func() {
		s.ambient = audit.Ambient{Language: "es"}
		id, err := s.engine.ForEntity("visit", 42).LogRelationChange(ctx, "departments", nil, []int64{5, 6})
		s.Require().NoError(err)
		s.NotZero(id)

		items := s.lastRecord().Details.RelatedItems
		s.Require().Len(items, 2)
		s.Equal("Engineering", items[0].Name)
		s.Equal("Accueil", items[1].Name)
	})

	s.Run("unknown relation name means nothing to log", func() {
		id, err := s.engine.ForEntity("visit", 42).LogRelationChange(ctx, "badges", nil, []int64{1})
		s.NoError(err)
		s.Zero(id)
	})

	s.Run("rule with an unknown strategy drops the category without erroring", func() {
		id, err := s.engine.ForEntity("visit", 42).LogRelationChange(ctx, "legacy", nil, []int64{1})
		s.NoError(err)
		s.Zero(id)
	})

	s.Run("unconfigured entity type means nothing to log", func() {
		id, err := s.engine.ForEntity("unknown_thing", 1).LogRelationChange(ctx, "tags", nil, []int64{1})
		s.NoError(err)
		s.Zero(id)
	})
}

// A resolver outage must not suppress the record: the relation genuinely
// changed, so the delta is written with placeholder names instead.
func (s *RecorderSuite) TestResolverOutageFallsBackToPlaceholders() {
	ctx := context.Background()
	ctrl := gomock.NewController(s.T())

	resolver := mocks.NewMockResolver(ctrl)
	resolver.EXPECT().
		Resolve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused"))

	engine := audit.New(s.store, testRegistry(),
		audit.WithResolver(resolver),
		audit.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		audit.WithClock(func() time.Time { return s.now }),
	)

	id, err := engine.ForEntity("visit", 42).LogRelationChange(ctx, "tags", nil, []int64{1, 2})
	s.Require().NoError(err)
	s.NotZero(id)

	rec := s.lastRecord()
	s.Equal(audit.ActionRelationAdded, rec.Action)
	s.Require().Len(rec.Details.RelatedItems, 2)
	s.Equal("Tag #1", rec.Details.RelatedItems[0].Name)
	s.Equal("Tag #2", rec.Details.RelatedItems[1].Name)
	s.Equal(audit.ItemAdded, rec.Details.RelatedItems[0].Action)
	s.Equal(audit.ItemAdded, rec.Details.RelatedItems[1].Action)
}

// =============================================================================
// LogTranslationChange
// =============================================================================

func (s *RecorderSuite) TestLogTranslationChange() {
	ctx := context.Background()

	s.Run("writes a translation-tagged record", func() {
		id, err := s.engine.ForEntity("visit", 42).LogTranslationChange(ctx, "de",
			map[string]any{"welcome_text": "Hallo"},
			map[string]any{"welcome_text": "Willkommen"},
		)
		s.Require().NoError(err)
		s.NotZero(id)

		rec := s.lastRecord()
		s.Equal(audit.ActionTranslationChanged, rec.Action)
		s.Require().NotNil(rec.Details.Translation)
		s.Equal("de", rec.Details.Translation.LangCode)
		s.Equal("Willkommen", rec.Details.ChangedFields["welcome_text"].New)
	})

	s.Run("unchanged translation means nothing to log", func() {
		snap := map[string]any{"welcome_text": "Hallo"}
		id, err := s.engine.ForEntity("visit", 42).LogTranslationChange(ctx, "de", snap, snap)
		s.NoError(err)
		s.Zero(id)
	})
}

// =============================================================================
// LogFileChange and LogRelatedItems
// =============================================================================

func (s *RecorderSuite) TestLogFileChange() {
	ctx := context.Background()

	s.Run("attached files write a file_added record", func() {
		id, err := s.engine.ForEntity("visit", 42).LogFileChange(ctx, audit.ItemAdded,
			[]audit.FileMeta{{Name: "nda.pdf", Size: 1024, Mime: "application/pdf", Path: "/tmp/nda.pdf"}},
			"documents",
		)
		s.Require().NoError(err)
		s.NotZero(id)

		rec := s.lastRecord()
		s.Equal(audit.ActionFileAdded, rec.Action)
		s.Require().Len(rec.Details.RelatedItems, 1)
		s.Equal("nda.pdf", rec.Details.RelatedItems[0].Name)
		s.Equal("documents", rec.Details.RelatedItems[0].Category)
	})

	s.Run("removed files write a file_removed record", func() {
		id, err := s.engine.ForEntity("visit", 42).LogFileChange(ctx, audit.ItemRemoved,
			[]audit.FileMeta{{Name: "photo.png", Mime: "image/png"}}, "photos",
		)
		s.Require().NoError(err)
		s.NotZero(id)
		s.Equal(audit.ActionFileRemoved, s.lastRecord().Action)
	})

	s.Run("unknown item action is an error", func() {
		_, err := s.engine.ForEntity("visit", 42).LogFileChange(ctx, "renamed",
			[]audit.FileMeta{{Name: "photo.png"}}, "photos",
		)
		s.Error(err)
	})

	s.Run("no files means nothing to log", func() {
		id, err := s.engine.ForEntity("visit", 42).LogFileChange(ctx, audit.ItemAdded, nil, "photos")
		s.NoError(err)
		s.Zero(id)
	})
}

func (s *RecorderSuite) TestLogRelatedItems() {
	ctx := context.Background()

	s.Run("pre-resolved items bypass the resolver", func() {
		id, err := s.engine.ForEntity("visit", 42).LogRelatedItems(ctx,
			[]audit.RelatedItem{{Type: "escort", ID: 9, Name: "Sam Porter"}},
			audit.ItemAdded,
		)
		s.Require().NoError(err)
		s.NotZero(id)

		rec := s.lastRecord()
		s.Equal(audit.ActionRelationAdded, rec.Action)
		s.Equal("Sam Porter", rec.Details.RelatedItems[0].Name)
		s.Equal(audit.ItemAdded, rec.Details.RelatedItems[0].Action)
	})
}

// =============================================================================
// LogCustomAction
// =============================================================================

func (s *RecorderSuite) TestLogCustomAction() {
	ctx := context.Background()

	id, err := s.engine.ForEntity("visit", 42).LogCustomAction(ctx, "badge_printed", map[string]any{"printer": "lobby-1"})
	s.Require().NoError(err)
	s.NotZero(id)

	rec := s.lastRecord()
	s.Equal(audit.CustomAction("badge_printed"), rec.Action)
	s.True(rec.Action.IsCustom())
	s.Equal("lobby-1", rec.Details.Extra["printer"])
}

// =============================================================================
// Source Detection and Visitor Context
// =============================================================================

func (s *RecorderSuite) TestSourceHandling() {
	ctx := context.Background()

	s.Run("detection is lazy and cached per session", func() {
		rec := s.engine.ForEntity("visit", 42)

		// Ambient state established after the Recorder was constructed.
		s.ambient = audit.Ambient{Invitation: &requestcontext.Flow{VisitID: 42}}
		_, err := rec.LogStatusChange(ctx, "pending", "approved")
		s.Require().NoError(err)
		s.Equal(audit.SourceInvitation, s.lastRecord().Details.Source)

		// Ambient changes must not re-detect within the same session.
		s.ambient = audit.Ambient{Actor: &requestcontext.Actor{ID: 7}, AdminArea: true}
		_, err = rec.LogStatusChange(ctx, "approved", "checked_in")
		s.Require().NoError(err)
		s.Equal(audit.SourceInvitation, s.lastRecord().Details.Source)
	})

	s.Run("forced source bypasses detection", func() {
		s.ambient = audit.Ambient{Invitation: &requestcontext.Flow{VisitID: 42}}
		rec := s.engine.ForEntityFrom("visit", 42, audit.SourceSystem, map[string]any{"job": "night-purge"})
		_, err := rec.LogCustomAction(ctx, "auto_checkout", nil)
		s.Require().NoError(err)

		stored := s.lastRecord()
		s.Equal(audit.SourceSystem, stored.Details.Source)
		s.Equal("night-purge", stored.Details.SourceContext["job"])
	})

	s.Run("visitor context merges into terminal source only", func() {
		s.ambient = audit.Ambient{Terminal: &requestcontext.Flow{VisitID: 42, LocationID: 4}}
		rec := s.engine.ForEntity("visit", 42).SetVisitorContext("Max Guest", "max@example.com", 55)
		_, err := rec.LogStatusChange(ctx, "approved", "checked_in")
		s.Require().NoError(err)

		stored := s.lastRecord()
		s.Equal(audit.SourceTerminal, stored.Details.Source)
		s.Equal("Max Guest", stored.Details.SourceContext["visitor_name"])
		s.Equal("max@example.com", stored.Details.SourceContext["visitor_email"])
		s.Equal(int64(55), stored.Details.SourceContext["visitor_id"])
		s.Equal("Berlin HQ", stored.Details.SourceContext["location"])
	})

	s.Run("visitor context is dropped for non-terminal sources", func() {
		s.ambient = audit.Ambient{Actor: &requestcontext.Actor{ID: 7, Name: "Pat Admin"}}
		rec := s.engine.ForEntity("visit", 42).SetVisitorContext("Max Guest", "max@example.com", 55)
		_, err := rec.LogStatusChange(ctx, "approved", "checked_in")
		s.Require().NoError(err)

		stored := s.lastRecord()
		s.Equal(audit.SourceAdmin, stored.Details.Source)
		s.NotContains(stored.Details.SourceContext, "visitor_name")
	})
}

// =============================================================================
// Tenant Scope Resolution
// =============================================================================

func (s *RecorderSuite) TestTenantScope() {
	ctx := context.Background()

	s.Run("entity snapshot scope wins over ambient", func() {
		s.ambient = audit.Ambient{CustomerID: 1, LocationID: 2}
		_, err := s.engine.ForEntity("visit", 42).LogChange(ctx,
			map[string]any{"host": "Ada"},
			map[string]any{"host": "Grace", "customer_id": 9, "location_id": 8},
		)
		s.Require().NoError(err)

		rec := s.lastRecord()
		s.Equal(int64(9), rec.CustomerID)
		s.Equal(int64(8), rec.LocationID)
	})

	s.Run("ambient scope fills in when snapshots carry none", func() {
		s.ambient = audit.Ambient{CustomerID: 1, LocationID: 2}
		_, err := s.engine.ForEntity("visit", 42).LogStatusChange(ctx, "pending", "approved")
		s.Require().NoError(err)

		rec := s.lastRecord()
		s.Equal(int64(1), rec.CustomerID)
		s.Equal(int64(2), rec.LocationID)
	})

	s.Run("terminal location wins over ambient location", func() {
		s.ambient = audit.Ambient{
			Terminal:   &requestcontext.Flow{VisitID: 42, LocationID: 4},
			CustomerID: 1,
			LocationID: 2,
		}
		_, err := s.engine.ForEntity("visit", 42).LogStatusChange(ctx, "approved", "checked_in")
		s.Require().NoError(err)

		rec := s.lastRecord()
		s.Equal(int64(4), rec.LocationID)
		s.Equal(int64(1), rec.CustomerID)
	})

	s.Run("string-typed snapshot scope ids still resolve", func() {
		_, err := s.engine.ForEntity("visit", 42).LogChange(ctx,
			map[string]any{"host": "Ada"},
			map[string]any{"host": "Grace", "customer_id": "31"},
		)
		s.Require().NoError(err)
		s.Equal(int64(31), s.lastRecord().CustomerID)
	})
}

// =============================================================================
// Store Failures and Query Clamping (mocked store)
// =============================================================================

func (s *RecorderSuite) TestStoreFailure() {
	ctrl := gomock.NewController(s.T())
	store := mocks.NewMockStore(ctrl)
	engine := audit.New(store, testRegistry(),
		audit.WithAmbient(func(context.Context) audit.Ambient { return audit.Ambient{} }),
		audit.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	appendErr := errors.New("connection reset")
	store.EXPECT().Append(gomock.Any(), gomock.Any()).Return(int64(0), appendErr)

	id, err := engine.ForEntity("visit", 42).LogStatusChange(context.Background(), "pending", "approved")
	s.Zero(id)
	s.ErrorIs(err, appendErr)
}

func (s *RecorderSuite) TestRecordsClamping() {
	ctrl := gomock.NewController(s.T())
	store := mocks.NewMockStore(ctrl)
	engine := audit.New(store, nil)
	ctx := context.Background()

	s.Run("zero limit defaults to 50", func() {
		store.EXPECT().List(ctx, audit.Filter{Limit: 50}).Return(nil, nil)
		_, err := engine.Records(ctx, audit.Filter{})
		s.NoError(err)
	})

	s.Run("oversized limit clamps to 500", func() {
		store.EXPECT().List(ctx, audit.Filter{Limit: 500}).Return(nil, nil)
		_, err := engine.Records(ctx, audit.Filter{Limit: 10_000})
		s.NoError(err)
	})
}

// =============================================================================
// Event Sink
// =============================================================================

func (s *RecorderSuite) TestEventSink() {
	ctx := context.Background()

	s.Run("written records fan out to the sink", func() {
		events := make(chan audit.ChangeRecord, 1)
		engine := audit.New(s.store, testRegistry(),
			audit.WithAmbient(func(context.Context) audit.Ambient { return audit.Ambient{} }),
			audit.WithEventSink(events),
			audit.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		)

		id, err := engine.ForEntity("visit", 42).LogStatusChange(ctx, "pending", "approved")
		s.Require().NoError(err)

		select {
		case rec := <-events:
			s.Equal(id, rec.ID)
			s.Equal(audit.ActionStatusChanged, rec.Action)
		default:
			s.Fail("expected a record on the event sink")
		}
	})

	s.Run("full sink never blocks the write path", func() {
		events := make(chan audit.ChangeRecord) // unbuffered, no reader
		engine := audit.New(s.store, testRegistry(),
			audit.WithAmbient(func(context.Context) audit.Ambient { return audit.Ambient{} }),
			audit.WithEventSink(events),
			audit.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		)

		id, err := engine.ForEntity("visit", 42).LogStatusChange(ctx, "pending", "approved")
		s.NoError(err)
		s.NotZero(id)
	})
}
