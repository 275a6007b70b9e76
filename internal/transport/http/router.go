// Package httptransport assembles the HTTP surface: middleware chain, public
// flow endpoints, and the admin-scoped audit reporting surface.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	audithandler "gatehouse/internal/audit/handler"
	flowhandler "gatehouse/internal/flow/handler"
	"gatehouse/internal/platform/middleware"
	"gatehouse/pkg/platform/httputil"
)

// Deps carries the wired handlers and middleware collaborators.
type Deps struct {
	Audit     *audithandler.Handler
	Flows     *flowhandler.Handler
	Validator middleware.TokenValidator
	Flow      middleware.FlowResolver
	Logger    *slog.Logger
}

// NewRouter wires all endpoints. Flow endpoints are public (kiosks and
// invitation links authenticate through flow tokens); the audit surface lives
// behind actor authentication inside the admin area.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Authenticate(deps.Validator, deps.Logger))
	r.Use(middleware.FlowState(deps.Flow, deps.Logger))

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		deps.Flows.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminArea)
		r.Use(middleware.RequireActor)
		deps.Audit.Register(r)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
