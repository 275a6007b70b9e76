package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"gatehouse/internal/jwttoken"
	"gatehouse/pkg/requestcontext"
)

// TokenValidator validates bearer tokens into actor claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*jwttoken.Claims, error)
}

// Authenticate resolves a bearer token into the request's actor identity.
// Requests without a valid token pass through unauthenticated: terminal and
// invitation flows are legitimate anonymous callers, and route groups that
// require an actor enforce it with RequireActor.
func Authenticate(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "invalid access token",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := requestcontext.WithActor(r.Context(), &requestcontext.Actor{
				ID:    claims.ActorID,
				Name:  claims.ActorName,
				Email: claims.ActorEmail,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActor rejects requests that did not authenticate.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestcontext.CurrentActor(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"authentication required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminArea marks a route group as the administrative surface. The audit
// source detector uses this to keep stale terminal-flow state from claiming
// admin edits.
func AdminArea(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithAdminArea(r.Context(), true)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
