// Package flow manages invitation and terminal flow sessions: the short-lived
// state that ties an unauthenticated request to a visit. The audit engine's
// source detector classifies changes by which of these flows is active.
package flow

import "time"

// Kind distinguishes the two self-service channels.
type Kind string

const (
	KindInvitation Kind = "invitation"
	KindTerminal   Kind = "terminal"
)

// State is one active flow session, keyed by an opaque token the client
// carries between requests.
type State struct {
	Token        string    `json:"token"`
	Kind         Kind      `json:"kind"`
	VisitID      int64     `json:"visit_id"`
	CustomerID   int64     `json:"customer_id"`
	LocationID   int64     `json:"location_id"`
	CompanyID    int64     `json:"company_id,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry.
func (s *State) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
