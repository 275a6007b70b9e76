package audit

import (
	"context"

	"gatehouse/pkg/requestcontext"
)

// Ambient is the explicit snapshot of request/session state the source
// detector classifies. Middleware assembles it from the request context;
// tests construct it directly.
type Ambient struct {
	Actor      *requestcontext.Actor
	Invitation *requestcontext.Flow
	Terminal   *requestcontext.Flow

	// AdminArea guards rule 2: leftover terminal-flow state must not claim a
	// genuine admin edit.
	AdminArea bool

	Language   string
	CustomerID int64
	LocationID int64
	Device     string
}

// AmbientFunc produces the ambient state for a logging call. The default
// reads pkg/requestcontext values populated by the middleware chain.
type AmbientFunc func(ctx context.Context) Ambient

// AmbientFromContext is the default AmbientFunc.
func AmbientFromContext(ctx context.Context) Ambient {
	return Ambient{
		Actor:      requestcontext.CurrentActor(ctx),
		Invitation: requestcontext.InvitationFlow(ctx),
		Terminal:   requestcontext.TerminalFlow(ctx),
		AdminArea:  requestcontext.AdminArea(ctx),
		Language:   requestcontext.Language(ctx),
		CustomerID: requestcontext.CustomerID(ctx),
		LocationID: requestcontext.LocationID(ctx),
		Device:     requestcontext.Device(ctx),
	}
}

// unknownLocation names the terminal channel when its location cannot be
// resolved.
const unknownLocation = "Unknown location"

// detectSource classifies the originating channel of a change. Priority is
// evaluated top-down, first match wins:
//
//  1. invitation flow referencing a visit
//  2. terminal flow referencing a visit, unless inside the admin area
//  3. authenticated actor
//  4. system
//
// Detection is a pure read of the ambient snapshot plus directory lookups for
// display names; the Recorder caches the result for its lifetime.
func (e *Engine) detectSource(ctx context.Context, amb Ambient) (Source, map[string]any) {
	if inv := amb.Invitation; inv != nil && inv.VisitID != 0 {
		sctx := map[string]any{
			"visit_id":      inv.VisitID,
			"contact_email": inv.ContactEmail,
		}
		if inv.CompanyID != 0 {
			if name, err := e.companyName(ctx, inv.CompanyID); err == nil && name != "" {
				sctx["company"] = name
			}
		}
		return SourceInvitation, sctx
	}

	if term := amb.Terminal; term != nil && term.VisitID != 0 && !amb.AdminArea {
		location := unknownLocation
		if term.LocationID != 0 {
			if name, err := e.locationName(ctx, term.LocationID); err == nil && name != "" {
				location = name
			}
		}
		sctx := map[string]any{
			"visit_id":    term.VisitID,
			"location":    location,
			"location_id": term.LocationID,
		}
		// Terminal sessions can be actor-bound; keep the identity alongside
		// the terminal context.
		if amb.Actor != nil {
			sctx["actor_id"] = amb.Actor.ID
			sctx["actor_name"] = amb.Actor.Name
		}
		return SourceTerminal, sctx
	}

	if amb.Actor != nil {
		sctx := map[string]any{
			"actor_id":    amb.Actor.ID,
			"actor_name":  amb.Actor.Name,
			"actor_email": amb.Actor.Email,
		}
		if amb.Device != "" {
			sctx["device"] = amb.Device
		}
		return SourceAdmin, sctx
	}

	return SourceSystem, map[string]any{}
}

func (e *Engine) companyName(ctx context.Context, id int64) (string, error) {
	if e.directory == nil {
		return "", nil
	}
	return e.directory.CompanyName(ctx, id)
}

func (e *Engine) locationName(ctx context.Context, id int64) (string, error) {
	if e.directory == nil {
		return "", nil
	}
	return e.directory.LocationName(ctx, id)
}
