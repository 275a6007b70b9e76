package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/sentinel"
)

const (
	invitationTTL = 72 * time.Hour
	terminalTTL   = 30 * time.Minute
)

// Service manages flow session lifecycle.
type Service struct {
	store     Store
	kioskKeys KioskKeys
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(store Store, kioskKeys KioskKeys, opts ...Option) *Service {
	s := &Service{
		store:     store,
		kioskKeys: kioskKeys,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartInvitation opens an invitation flow session for a visit.
func (s *Service) StartInvitation(ctx context.Context, visitID, customerID, locationID, companyID int64, contactEmail string) (*State, error) {
	if visitID == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "visit_id is required")
	}

	now := s.now()
	state := &State{
		Token:        uuid.NewString(),
		Kind:         KindInvitation,
		VisitID:      visitID,
		CustomerID:   customerID,
		LocationID:   locationID,
		CompanyID:    companyID,
		ContactEmail: contactEmail,
		CreatedAt:    now,
		ExpiresAt:    now.Add(invitationTTL),
	}
	if err := s.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save invitation flow: %w", err)
	}

	s.logger.InfoContext(ctx, "invitation flow started",
		"visit_id", visitID,
		"customer_id", customerID,
	)
	return state, nil
}

// StartTerminal opens a terminal flow session. The kiosk must prove
// possession of its location's key; keys are stored bcrypt-hashed.
func (s *Service) StartTerminal(ctx context.Context, visitID, customerID, locationID int64, kioskKey string) (*State, error) {
	if visitID == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "visit_id is required")
	}
	if locationID == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "location_id is required")
	}

	hash, err := s.kioskKeys.KioskKeyHash(ctx, locationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeForbidden, "unknown kiosk location")
		}
		return nil, fmt.Errorf("load kiosk key: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(kioskKey)); err != nil {
		s.logger.WarnContext(ctx, "kiosk key mismatch", "location_id", locationID)
		return nil, dErrors.New(dErrors.CodeForbidden, "invalid kiosk key")
	}

	now := s.now()
	state := &State{
		Token:      uuid.NewString(),
		Kind:       KindTerminal,
		VisitID:    visitID,
		CustomerID: customerID,
		LocationID: locationID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(terminalTTL),
	}
	if err := s.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save terminal flow: %w", err)
	}

	s.logger.InfoContext(ctx, "terminal flow started",
		"visit_id", visitID,
		"location_id", locationID,
	)
	return state, nil
}

// Resolve looks up an active session by token. Expired sessions read as
// sentinel.ErrExpired and are removed.
func (s *Service) Resolve(ctx context.Context, token string) (*State, error) {
	state, err := s.store.Find(ctx, token)
	if err != nil {
		return nil, err
	}
	if state.Expired(s.now()) {
		_ = s.store.Delete(ctx, token)
		return nil, sentinel.ErrExpired
	}
	return state, nil
}

// End discards a session, e.g. after a completed check-in.
func (s *Service) End(ctx context.Context, token string) error {
	return s.store.Delete(ctx, token)
}
