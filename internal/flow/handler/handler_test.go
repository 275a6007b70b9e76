package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"gatehouse/internal/flow"
	"gatehouse/pkg/testutil"
)

type FlowHandlerSuite struct {
	suite.Suite
	router chi.Router
}

func TestFlowHandlerSuite(t *testing.T) {
	suite.Run(t, new(FlowHandlerSuite))
}

func (s *FlowHandlerSuite) SetupTest() {
	kioskKeys := flow.NewInMemoryKioskKeys()
	hash, err := bcrypt.GenerateFromPassword([]byte("kiosk-secret"), bcrypt.MinCost)
	s.Require().NoError(err)
	kioskKeys.Seed(4, string(hash))

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := flow.New(flow.NewInMemory(), kioskKeys, flow.WithLogger(quiet))

	s.router = chi.NewRouter()
	New(service, quiet).Register(s.router)
}

func (s *FlowHandlerSuite) TestStartInvitation() {
	s.Run("creates a session and returns the token", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/flows/invitation", map[string]any{
			"visit_id":      42,
			"customer_id":   1,
			"location_id":   4,
			"company_id":    10,
			"contact_email": "guest@example.com",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)

		resp := testutil.UnmarshalResponse[startResponse](s.T(), rr)
		s.NotEmpty(resp.Token)
		s.Equal(flow.KindInvitation, resp.Kind)
		s.True(resp.ExpiresAt.After(time.Now()))
	})

	s.Run("missing visit id is rejected", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/flows/invitation", map[string]any{
			"customer_id": 1,
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("malformed body is rejected", func() {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/flows/invitation", "{not json")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *FlowHandlerSuite) TestStartTerminal() {
	s.Run("valid kiosk key opens a session", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/flows/terminal", map[string]any{
			"visit_id":    42,
			"customer_id": 1,
			"location_id": 4,
			"kiosk_key":   "kiosk-secret",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)

		resp := testutil.UnmarshalResponse[startResponse](s.T(), rr)
		s.Equal(flow.KindTerminal, resp.Kind)
		s.NotEmpty(resp.Token)
	})

	s.Run("wrong kiosk key is forbidden", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/flows/terminal", map[string]any{
			"visit_id":    42,
			"customer_id": 1,
			"location_id": 4,
			"kiosk_key":   "wrong",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})

	s.Run("unknown location is forbidden", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/flows/terminal", map[string]any{
			"visit_id":    42,
			"customer_id": 1,
			"location_id": 999,
			"kiosk_key":   "kiosk-secret",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})
}
