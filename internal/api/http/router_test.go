package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type stubUsers struct{ users map[int64]*domain.User }

func (s *stubUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *stubUsers) UpdatePasswordHash(context.Context, int64, string) error {
	return nil
}

type stubTickets struct {
	principal *domain.Principal
	input     service.TicketCreateInput
	params    service.TicketListParams
	view      *service.TicketView
	list      *service.TicketListResult
	err       error
	panicMsg  string
}

func (s *stubTickets) CreateTicket(_ context.Context, p *domain.Principal, in service.TicketCreateInput) (*service.TicketView, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	s.principal, s.input = p, in
	return s.view, s.err
}

func (s *stubTickets) ListTickets(_ context.Context, p *domain.Principal, params service.TicketListParams) (*service.TicketListResult, error) {
	s.principal, s.params = p, params
	return s.list, s.err
}

func (s *stubTickets) GetTicket(_ context.Context, p *domain.Principal, _ string) (*service.TicketView, error) {
	s.principal = p
	return s.view, s.err
}

type stubAuth struct{ tokens *auth.TokenManager }

func (s *stubAuth) Login(_ context.Context, email, password string) (*domain.User, string, time.Time, error) {
	if email != "ana@example.com" || password != "secreta" {
		return nil, "", time.Time{}, apperrors.NewUnauthorized(apperrors.CodeInvalidCredentials, "credenciales inválidas")
	}
	token, exp, err := s.tokens.GenerateToken(1, "administrador")
	return &domain.User{ID: 1, Name: "Ana", Email: email, RoleName: "administrador", Active: true}, token, exp, err
}

type stubCatalog struct{}

func (stubCatalog) Categories(context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: 1, Name: "Hardware"}}, nil
}

func (stubCatalog) Priorities(context.Context) ([]domain.Priority, error) {
	return []domain.Priority{{ID: 1, Name: "Alta", Level: 1}}, nil
}

func (stubCatalog) States(context.Context) ([]domain.State, error) { return nil, nil }

func (stubCatalog) Equipment(context.Context) ([]domain.Equipment, error) {
	return nil, errors.New("db down")
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type testServer struct {
	app     *fiber.App
	tokens  *auth.TokenManager
	tickets *stubTickets
}

func newTestServer(t *testing.T, postgres, redis handlers.Pinger) *testServer {
	t.Helper()
	logger := zap.NewNop()
	tokens := auth.NewTokenManager("test-secret", 5)
	users := &stubUsers{users: map[int64]*domain.User{
		1: {ID: 1, Name: "Ana", Email: "ana@example.com", RoleName: "administrador", Active: true},
		2: {ID: 2, Name: "Luis", Email: "luis@example.com", RoleName: "usuario", Active: true},
	}}
	tickets := &stubTickets{}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger)})
	RegisterMiddlewares(app, logger, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("helpdesk", "test", postgres, redis),
		Auth:           handlers.NewAuthHandler(&stubAuth{tokens: tokens}),
		Tickets:        handlers.NewTicketsHandler(tickets),
		References:     handlers.NewReferenceHandler(stubCatalog{}),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, users),
	})
	return &testServer{app: app, tokens: tokens, tickets: tickets}
}

func okPing(context.Context) error { return nil }

func (s *testServer) do(t *testing.T, method, path string, userID int64, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID > 0 {
		token, _, err := s.tokens.GenerateToken(userID, "")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	payload := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &payload))
	}
	return resp.StatusCode, payload
}

func TestCreateTicketRequiresToken(t *testing.T) {
	srv := newTestServer(t, pingFunc(okPing), pingFunc(okPing))
	status, body := srv.do(t, nethttp.MethodPost, "/tickets", 0, `{"titulo":"x"}`)

	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, apperrors.CodeTokenRequired, body["error"])
	assert.NotEmpty(t, body["message"])
}

func TestCreateTicketHappyPath(t *testing.T) {
	srv := newTestServer(t, pingFunc(okPing), pingFunc(okPing))
	srv.tickets.view = &service.TicketView{
		TicketDetail: domain.TicketDetail{
			Ticket:    domain.Ticket{ID: 7, Number: "TICK-20240115-0001", Title: "Printer issue"},
			StateName: domain.StatePending,
		},
		Flags: domain.TicketFlags{PriorityColor: "red", StateColor: "orange"},
	}

	status, body := srv.do(t, nethttp.MethodPost, "/tickets", 2,
		`{"titulo":"Printer issue","descripcion":"Jams on every page","categoria_id":3,"prioridad_id":"1"}`)

	require.Equal(t, nethttp.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, service.AssignmentNote, body["info"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "TICK-20240115-0001", data["numero_ticket"])
	assert.Equal(t, "orange", data["estado_color"])

	require.NotNil(t, srv.tickets.principal)
	assert.Equal(t, int64(2), srv.tickets.principal.UserID)
	assert.Equal(t, domain.RoleEndUser, srv.tickets.principal.Role)
	assert.Equal(t, "3", srv.tickets.input.CategoryID)
	assert.Equal(t, "1", srv.tickets.input.PriorityID)
}

func TestServiceErrorsUseEnvelope(t *testing.T) {
	srv := newTestServer(t, pingFunc(okPing), pingFunc(okPing))
	srv.tickets.err = apperrors.NewNotFound(apperrors.CodeCategoryNotFound, "la categoría no existe", map[string]any{"categoria_id": 9})

	status, body := srv.do(t, nethttp.MethodPost, "/tickets", 2, `{"titulo":"abc"}`)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, apperrors.CodeCategoryNotFound, body["error"])
	assert.Equal(t, map[string]any{"categoria_id": float64(9)}, body["details"])

	srv.tickets.err = errors.New("connection reset by peer")
	status, body = srv.do(t, nethttp.MethodPost, "/tickets", 2, `{"titulo":"abc"}`)
	assert.Equal(t, nethttp.StatusInternalServerError, status)
	assert.Equal(t, apperrors.CodeInternal, body["error"])
	assert.NotContains(t, body["message"], "connection reset")
}

func TestMalformedBody(t *testing.T) {
	srv := newTestServer(t, pingFunc(okPing), pingFunc(okPing))
	status, body := srv.do(t, nethttp.MethodPost, "/tickets", 2, `{"titulo":`)
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, apperrors.CodeValidation, body["error"])
}

func TestPanicIsRecovered(t *testing.T) {
	srv := newTestServer(t, pingFunc(okPing), pingFunc(okPing))
	srv.tickets.panicMsg = "boom"
	status, body := srv.do(t, nethttp.MethodPost, "/tickets", 2, `{"titulo":"abc"}`)
	assert.Equal(t, nethttp.StatusInternalServerError, status)
	assert.Equal(t, apperrors.CodeInternal, body["error"])
}

func TestListTicketsPassesQuery(t *testing.T) {
	srv := newTestServer(t, pingFunc(okPing), pingFunc(okPing))
	srv.tickets.list = &service.TicketListResult{
		Tickets:    []service.TicketView{},
		Pagination: domain.NewPagination(2, 5, 12),
		Filters:    service.AppliedFilters{Sort: domain.SortByTitle, Direction: domain.SortAsc},
	}

	status, body := srv.do(t, nethttp.MethodGet, "/tickets?page=2&limit=5&orden=titulo&direccion=asc&estado_id=1", 2, "")
	require.Equal(t, nethttp.StatusOK, status)

	assert.Equal(t, "2", srv.tickets.params.Page)
	assert.Equal(t, "5", srv.tickets.params.Limit)
	assert.Equal(t, "titulo", srv.tickets.params.Sort)
	assert.Equal(t, "asc", srv.tickets.params.Direction)
	assert.Equal(t, "1", srv.tickets.params.StateID)

	data := body["data"].(map[string]any)
	pagination := data["pagination"].(map[string]any)
	assert.Equal(t, float64(3), pagination["total_pages"])
	assert.Equal(t, true, pagination["has_next"])
	assert.Equal(t, true, pagination["has_prev"])
	assert.Equal(t, "titulo", data["filters_applied"].(map[string]any)["orden"])
	assert.NotContains(t, data, "estadisticas")
}

func TestListTicketsIncludesStatsWhenPresent(t *testing.T) {
	srv := newTestServer(t, pingFunc(okPing), pingFunc(okPing))
	srv.tickets.list = &service.TicketListResult{
		Tickets: []service.TicketView{},
		Stats:   &domain.TicketStats{Total: 3, Pending: 3, HighPriority: 1},
	}

	status, body := srv.do(t, nethttp.MethodGet, "/tickets", 1, "")
	require.Equal(t, nethttp.StatusOK, status)
	stats := body["data"].(map[string]any)["estadisticas"].(map[string]any)
	assert.Equal(t, float64(3), stats["total_tickets"])
	assert.Equal(t, float64(1), stats["alta_prioridad"])
}

func TestLoginAndMe(t *testing.T) {
	srv := newTestServer(t, pingFunc(okPing), pingFunc(okPing))

	status, body := srv.do(t, nethttp.MethodPost, "/auth/login", 0, `{"email":"ana@example.com","password":"secreta"}`)
	require.Equal(t, nethttp.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["token"])
	assert.Equal(t, "administrador", data["usuario"].(map[string]any)["rol"])

	status, body = srv.do(t, nethttp.MethodPost, "/auth/login", 0, `{"email":"ana@example.com","password":"mala"}`)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, apperrors.CodeInvalidCredentials, body["error"])

	status, body = srv.do(t, nethttp.MethodGet, "/auth/me", 2, "")
	require.Equal(t, nethttp.StatusOK, status)
	me := body["data"].(map[string]any)
	assert.Equal(t, float64(2), me["id"])
	assert.Equal(t, "usuario_final", me["rol"])
}

func TestReferenceRoutes(t *testing.T) {
	srv := newTestServer(t, pingFunc(okPing), pingFunc(okPing))

	status, body := srv.do(t, nethttp.MethodGet, "/prioridades", 2, "")
	require.Equal(t, nethttp.StatusOK, status)
	first := body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "red", first["color"])

	status, _ = srv.do(t, nethttp.MethodGet, "/categorias", 0, "")
	assert.Equal(t, nethttp.StatusUnauthorized, status)

	status, body = srv.do(t, nethttp.MethodGet, "/equipos", 2, "")
	assert.Equal(t, nethttp.StatusInternalServerError, status)
	assert.Equal(t, apperrors.CodeInternal, body["error"])
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, pingFunc(okPing), pingFunc(okPing))
	status, body := srv.do(t, nethttp.MethodGet, "/nope", 0, "")
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, apperrors.CodeNotFound, body["error"])
}

func TestHealthEndpoints(t *testing.T) {
	failing := pingFunc(func(context.Context) error { return errors.New("refused") })
	disabled := pingFunc(func(context.Context) error { return persistence.ErrRedisDisabled })

	srv := newTestServer(t, pingFunc(okPing), disabled)
	status, body := srv.do(t, nethttp.MethodGet, "/health/ready", 0, "")
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "disabled", body["dependencies"].(map[string]any)["redis"])

	status, _ = srv.do(t, nethttp.MethodGet, "/health/live", 0, "")
	assert.Equal(t, nethttp.StatusOK, status)

	srv = newTestServer(t, failing, pingFunc(okPing))
	status, body = srv.do(t, nethttp.MethodGet, "/health/ready", 0, "")
	assert.Equal(t, nethttp.StatusServiceUnavailable, status)
	assert.Equal(t, false, body["success"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, pingFunc(okPing), pingFunc(okPing))
	status, _ := srv.do(t, nethttp.MethodGet, "/health/live", 0, "")
	require.Equal(t, nethttp.StatusOK, status)

	req := httptest.NewRequest(nethttp.MethodGet, "/metrics", nil)
	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "helpdesk_http_requests_total")
}
