package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"gatehouse/internal/flow"
	"gatehouse/pkg/platform/sentinel"
	"gatehouse/pkg/requestcontext"
)

// FlowResolver looks up an active flow session by token.
type FlowResolver interface {
	Resolve(ctx context.Context, token string) (*flow.State, error)
}

// FlowState attaches active invitation/terminal flow state to the request
// context. Unknown or expired tokens are ignored rather than rejected: an
// expired kiosk session simply means the request is not flow-scoped anymore.
func FlowState(resolver FlowResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Flow-Token")
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			state, err := resolver.Resolve(ctx, token)
			if err != nil {
				if !errors.Is(err, sentinel.ErrNotFound) && !errors.Is(err, sentinel.ErrExpired) {
					logger.WarnContext(ctx, "flow lookup failed",
						"request_id", requestcontext.RequestID(ctx),
						"error", err,
					)
				}
				next.ServeHTTP(w, r)
				return
			}

			flowRef := &requestcontext.Flow{
				Token:        state.Token,
				VisitID:      state.VisitID,
				CustomerID:   state.CustomerID,
				LocationID:   state.LocationID,
				CompanyID:    state.CompanyID,
				ContactEmail: state.ContactEmail,
			}
			switch state.Kind {
			case flow.KindInvitation:
				ctx = requestcontext.WithInvitationFlow(ctx, flowRef)
			case flow.KindTerminal:
				ctx = requestcontext.WithTerminalFlow(ctx, flowRef)
			}
			ctx = requestcontext.WithTenantScope(ctx, state.CustomerID, state.LocationID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
