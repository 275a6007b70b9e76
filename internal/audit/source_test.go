package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"gatehouse/internal/audit/directory"
	"gatehouse/pkg/requestcontext"
)

// Source detection priority decides who gets blamed for a change, so every
// rule ordering is pinned here: a wrong winner is silent data corruption in
// the audit trail.

type SourceDetectorSuite struct {
	suite.Suite
	engine *Engine
	dir    *directory.InMemory
}

func TestSourceDetectorSuite(t *testing.T) {
	suite.Run(t, new(SourceDetectorSuite))
}

func (s *SourceDetectorSuite) SetupTest() {
	s.dir = directory.NewInMemory()
	s.dir.SeedCompany(10, "Initech GmbH")
	s.dir.SeedLocation(4, "Berlin HQ")

	s.engine = New(nil, nil,
		WithDirectory(s.dir),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

// =============================================================================
// Priority Ordering
// =============================================================================

func (s *SourceDetectorSuite) TestPriority() {
	ctx := context.Background()

	s.Run("invitation wins over everything", func() {
		source, _ := s.engine.detectSource(ctx, Ambient{
			Invitation: &requestcontext.Flow{VisitID: 42, ContactEmail: "guest@example.com"},
			Terminal:   &requestcontext.Flow{VisitID: 42, LocationID: 4},
			Actor:      &requestcontext.Actor{ID: 7, Name: "Pat Admin"},
			AdminArea:  true,
		})
		s.Equal(SourceInvitation, source)
	})

	s.Run("terminal wins over actor outside the admin area", func() {
		source, _ := s.engine.detectSource(ctx, Ambient{
			Terminal: &requestcontext.Flow{VisitID: 42, LocationID: 4},
			Actor:    &requestcontext.Actor{ID: 7, Name: "Pat Admin"},
		})
		s.Equal(SourceTerminal, source)
	})

	s.Run("admin area suppresses a leftover terminal session", func() {
		source, sctx := s.engine.detectSource(ctx, Ambient{
			Terminal:  &requestcontext.Flow{VisitID: 42, LocationID: 4},
			Actor:     &requestcontext.Actor{ID: 7, Name: "Pat Admin", Email: "pat@initech.example"},
			AdminArea: true,
		})
		s.Equal(SourceAdmin, source)
		s.Equal(int64(7), sctx["actor_id"])
	})

	s.Run("actor alone is admin", func() {
		source, _ := s.engine.detectSource(ctx, Ambient{
			Actor: &requestcontext.Actor{ID: 7, Name: "Pat Admin"},
		})
		s.Equal(SourceAdmin, source)
	})

	s.Run("nothing active falls back to system", func() {
		source, sctx := s.engine.detectSource(ctx, Ambient{})
		s.Equal(SourceSystem, source)
		s.Empty(sctx)
	})

	s.Run("flow without a visit does not claim its channel", func() {
		source, _ := s.engine.detectSource(ctx, Ambient{
			Invitation: &requestcontext.Flow{Token: "tok"},
			Terminal:   &requestcontext.Flow{Token: "tok2"},
		})
		s.Equal(SourceSystem, source)
	})
}

// =============================================================================
// Source Context Payloads
// =============================================================================

func (s *SourceDetectorSuite) TestSourceContext() {
	ctx := context.Background()

	s.Run("invitation context carries visit, email and company name", func() {
		_, sctx := s.engine.detectSource(ctx, Ambient{
			Invitation: &requestcontext.Flow{VisitID: 42, ContactEmail: "guest@example.com", CompanyID: 10},
		})
		s.Equal(int64(42), sctx["visit_id"])
		s.Equal("guest@example.com", sctx["contact_email"])
		s.Equal("Initech GmbH", sctx["company"])
	})

	s.Run("unknown company id omits the company key", func() {
		_, sctx := s.engine.detectSource(ctx, Ambient{
			Invitation: &requestcontext.Flow{VisitID: 42, CompanyID: 999},
		})
		s.NotContains(sctx, "company")
	})

	s.Run("terminal context carries resolved location", func() {
		_, sctx := s.engine.detectSource(ctx, Ambient{
			Terminal: &requestcontext.Flow{VisitID: 42, LocationID: 4},
		})
		s.Equal("Berlin HQ", sctx["location"])
		s.Equal(int64(4), sctx["location_id"])
	})

	s.Run("unresolvable location reads as unknown", func() {
		_, sctx := s.engine.detectSource(ctx, Ambient{
			Terminal: &requestcontext.Flow{VisitID: 42, LocationID: 999},
		})
		s.Equal(unknownLocation, sctx["location"])
		s.Equal(int64(999), sctx["location_id"])
	})

	s.Run("actor-bound terminal keeps the identity alongside", func() {
		source, sctx := s.engine.detectSource(ctx, Ambient{
			Terminal: &requestcontext.Flow{VisitID: 42, LocationID: 4},
			Actor:    &requestcontext.Actor{ID: 7, Name: "Pat Admin"},
		})
		s.Equal(SourceTerminal, source)
		s.Equal(int64(7), sctx["actor_id"])
		s.Equal("Pat Admin", sctx["actor_name"])
	})

	s.Run("admin context includes device when known", func() {
		_, sctx := s.engine.detectSource(ctx, Ambient{
			Actor:  &requestcontext.Actor{ID: 7, Name: "Pat Admin", Email: "pat@initech.example"},
			Device: "Chrome 120 on Linux",
		})
		s.Equal("pat@initech.example", sctx["actor_email"])
		s.Equal("Chrome 120 on Linux", sctx["device"])
	})

	s.Run("nil directory still detects without names", func() {
		engine := New(nil, nil, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
		source, sctx := engine.detectSource(ctx, Ambient{
			Terminal: &requestcontext.Flow{VisitID: 42, LocationID: 4},
		})
		s.Equal(SourceTerminal, source)
		s.Equal(unknownLocation, sctx["location"])
	})
}
