// Package handler exposes flow session endpoints for kiosks and invitation
// links.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gatehouse/internal/flow"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/httputil"
	"gatehouse/pkg/requestcontext"
)

// Service defines the flow operations this handler needs.
type Service interface {
	StartInvitation(ctx context.Context, visitID, customerID, locationID, companyID int64, contactEmail string) (*flow.State, error)
	StartTerminal(ctx context.Context, visitID, customerID, locationID int64, kioskKey string) (*flow.State, error)
}

// Handler wires flow endpoints to the flow service.
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

// Register mounts flow endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/flows/invitation", h.HandleStartInvitation)
	r.Post("/flows/terminal", h.HandleStartTerminal)
}

type startInvitationRequest struct {
	VisitID      int64  `json:"visit_id"`
	CustomerID   int64  `json:"customer_id"`
	LocationID   int64  `json:"location_id"`
	CompanyID    int64  `json:"company_id"`
	ContactEmail string `json:"contact_email"`
}

type startTerminalRequest struct {
	VisitID    int64  `json:"visit_id"`
	CustomerID int64  `json:"customer_id"`
	LocationID int64  `json:"location_id"`
	KioskKey   string `json:"kiosk_key"`
}

type startResponse struct {
	Token     string    `json:"token"`
	Kind      flow.Kind `json:"kind"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HandleStartInvitation handles POST /flows/invitation.
func (h *Handler) HandleStartInvitation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req startInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	state, err := h.service.StartInvitation(ctx, req.VisitID, req.CustomerID, req.LocationID, req.CompanyID, req.ContactEmail)
	if err != nil {
		h.logger.ErrorContext(ctx, "start invitation flow failed",
			"request_id", requestcontext.RequestID(ctx),
			"visit_id", req.VisitID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, startResponse{
		Token:     state.Token,
		Kind:      state.Kind,
		ExpiresAt: state.ExpiresAt,
	})
}

// HandleStartTerminal handles POST /flows/terminal.
func (h *Handler) HandleStartTerminal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req startTerminalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	state, err := h.service.StartTerminal(ctx, req.VisitID, req.CustomerID, req.LocationID, req.KioskKey)
	if err != nil {
		h.logger.WarnContext(ctx, "start terminal flow failed",
			"request_id", requestcontext.RequestID(ctx),
			"visit_id", req.VisitID,
			"location_id", req.LocationID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, startResponse{
		Token:     state.Token,
		Kind:      state.Kind,
		ExpiresAt: state.ExpiresAt,
	})
}
