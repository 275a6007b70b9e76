// Package handler exposes the audit log's reporting surface. The log itself
// is append-only; this surface is read-only.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gatehouse/internal/audit"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/httputil"
	"gatehouse/pkg/requestcontext"
)

// Service defines the audit query operations this handler needs.
type Service interface {
	Records(ctx context.Context, filter audit.Filter) ([]audit.ChangeRecord, error)
}

// Handler wires audit query endpoints to the engine.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Register mounts audit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/records", h.HandleList)
}

// HandleList handles GET /audit/records.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := filterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	records, err := h.service.Records(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit record query failed",
			"request_id", requestcontext.RequestID(ctx),
			"entity_type", filter.EntityType,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "audit query failed", err))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, listResponse{
		Records: records,
		Count:   len(records),
	})
}

type listResponse struct {
	Records []audit.ChangeRecord `json:"records"`
	Count   int                  `json:"count"`
}

func filterFromQuery(r *http.Request) (audit.Filter, error) {
	q := r.URL.Query()
	filter := audit.Filter{
		EntityType: q.Get("entity_type"),
		Source:     audit.Source(q.Get("source")),
		Action:     audit.Action(q.Get("action")),
	}

	for _, p := range []struct {
		name string
		dest *int64
	}{
		{"entity_id", &filter.EntityID},
		{"customer_id", &filter.CustomerID},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return audit.Filter{}, dErrors.New(dErrors.CodeBadRequest, "invalid "+p.name)
		}
		*p.dest = v
	}

	for _, p := range []struct {
		name string
		dest *int
	}{
		{"limit", &filter.Limit},
		{"offset", &filter.Offset},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return audit.Filter{}, dErrors.New(dErrors.CodeBadRequest, "invalid "+p.name)
		}
		*p.dest = v
	}

	return filter, nil
}
