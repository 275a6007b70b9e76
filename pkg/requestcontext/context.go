// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// This package defines context keys and getter/setter functions for values that are
// typically set by middleware but consumed by services. By keeping this package free
// of net/http dependencies, services can import only what they need without pulling
// in HTTP-related code.
//
// Usage in services (read values):
//
//	actor := requestcontext.CurrentActor(ctx)
//	requestID := requestcontext.RequestID(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithActor(ctx, actor)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTerminalFlow(ctx, &requestcontext.Flow{VisitID: 42})
//	ctx = requestcontext.WithLanguage(ctx, "de")
package requestcontext

import (
	"context"
	"time"
)

// Actor is the authenticated human behind a request, if any.
type Actor struct {
	ID    int64
	Name  string
	Email string
}

// Flow is the transport-agnostic view of an active invitation or terminal
// flow session.
type Flow struct {
	Token        string
	VisitID      int64
	CustomerID   int64
	LocationID   int64
	CompanyID    int64
	ContactEmail string
}

// Context key types (unexported for encapsulation).
type (
	actorKey          struct{}
	invitationFlowKey struct{}
	terminalFlowKey   struct{}
	adminAreaKey      struct{}
	languageKey       struct{}
	customerIDKey     struct{}
	locationIDKey     struct{}
	requestIDKey      struct{}
	clientIPKey       struct{}
	userAgentKey      struct{}
	deviceKey         struct{}
	requestTimeKey    struct{}
)

// -----------------------------------------------------------------------------
// Actor
// -----------------------------------------------------------------------------

// CurrentActor retrieves the authenticated actor, or nil when the request is
// unauthenticated.
func CurrentActor(ctx context.Context) *Actor {
	if a, ok := ctx.Value(actorKey{}).(*Actor); ok {
		return a
	}
	return nil
}

// WithActor injects an authenticated actor into the context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	if actor == nil {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// -----------------------------------------------------------------------------
// Flow state
// -----------------------------------------------------------------------------

// InvitationFlow retrieves the active invitation-flow state, or nil.
func InvitationFlow(ctx context.Context) *Flow {
	if f, ok := ctx.Value(invitationFlowKey{}).(*Flow); ok {
		return f
	}
	return nil
}

// WithInvitationFlow injects invitation-flow state into the context.
func WithInvitationFlow(ctx context.Context, flow *Flow) context.Context {
	if flow == nil {
		return ctx
	}
	return context.WithValue(ctx, invitationFlowKey{}, flow)
}

// TerminalFlow retrieves the active terminal-flow state, or nil.
func TerminalFlow(ctx context.Context) *Flow {
	if f, ok := ctx.Value(terminalFlowKey{}).(*Flow); ok {
		return f
	}
	return nil
}

// WithTerminalFlow injects terminal-flow state into the context.
func WithTerminalFlow(ctx context.Context, flow *Flow) context.Context {
	if flow == nil {
		return ctx
	}
	return context.WithValue(ctx, terminalFlowKey{}, flow)
}

// AdminArea reports whether the request runs inside an authenticated
// administrative surface. Flow state can be stale; this flag is what keeps a
// leftover terminal session from claiming a genuine admin edit.
func AdminArea(ctx context.Context) bool {
	v, _ := ctx.Value(adminAreaKey{}).(bool)
	return v
}

// WithAdminArea marks the context as belonging to the administrative surface.
func WithAdminArea(ctx context.Context, adminArea bool) context.Context {
	return context.WithValue(ctx, adminAreaKey{}, adminArea)
}

// -----------------------------------------------------------------------------
// Tenant scope and language
// -----------------------------------------------------------------------------

// CustomerID retrieves the ambient customer scope, or zero.
func CustomerID(ctx context.Context) int64 {
	v, _ := ctx.Value(customerIDKey{}).(int64)
	return v
}

// LocationID retrieves the ambient location scope, or zero.
func LocationID(ctx context.Context) int64 {
	v, _ := ctx.Value(locationIDKey{}).(int64)
	return v
}

// WithTenantScope injects the ambient customer/location scope.
func WithTenantScope(ctx context.Context, customerID, locationID int64) context.Context {
	ctx = context.WithValue(ctx, customerIDKey{}, customerID)
	return context.WithValue(ctx, locationIDKey{}, locationID)
}

// Language retrieves the active UI language, or empty.
func Language(ctx context.Context) string {
	v, _ := ctx.Value(languageKey{}).(string)
	return v
}

// WithLanguage injects the active UI language.
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, languageKey{}, lang)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the raw User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(userAgentKey{}).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// Device retrieves the parsed device summary ("Chrome 120 on Linux"), or empty.
func Device(ctx context.Context) string {
	if d, ok := ctx.Value(deviceKey{}).(string); ok {
		return d
	}
	return ""
}

// WithDevice injects a parsed device summary.
func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, deviceKey{}, device)
}

// -----------------------------------------------------------------------------
// Request time
// -----------------------------------------------------------------------------

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (for non-HTTP contexts like workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests and for workers that need consistent time within a batch.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
