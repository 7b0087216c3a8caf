package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/orgodyssey/odyssey/internal/api/middleware"
	"github.com/orgodyssey/odyssey/internal/core/domain"
	"github.com/orgodyssey/odyssey/internal/core/graph"
	"github.com/orgodyssey/odyssey/internal/core/ports"
)

var (
	adminUser  = &domain.User{ID: 1, Email: "root@example.com", Admin: true, EmailConfirmed: true}
	memberUser = &domain.User{ID: 2, Email: "member@example.com", EmailConfirmed: true}
)

// newContext builds an echo context for method/path with an optional JSON
// body and, when user is non-nil, the values the Auth middleware would set.
func newContext(method, path, body string, user *domain.User) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if user != nil {
		c.Set(middleware.KeyUser, user)
		c.Set(middleware.KeyRole, user.Role())
		c.Set(middleware.KeySession, &ports.Session{Token: "tok", UserID: user.ID, JTI: "jti-1"})
	}
	return e, c, rec
}

// serve runs h and renders a returned error the way the router would.
func serve(e *echo.Echo, c echo.Context, h echo.HandlerFunc) {
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
}

type stubAuthService struct {
	registerFn func(ctx context.Context, email, password string) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.Session, *domain.User, error)
	confirmFn  func(ctx context.Context, token string) (*domain.User, error)
	loggedOut  []ports.Session
}

func (s *stubAuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	return s.registerFn(ctx, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.Session, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Confirm(ctx context.Context, token string) (*domain.User, error) {
	return s.confirmFn(ctx, token)
}

func (s *stubAuthService) Logout(_ context.Context, session ports.Session) error {
	s.loggedOut = append(s.loggedOut, session)
	return nil
}

func (s *stubAuthService) ParseSession(context.Context, string) (*ports.Session, error) {
	return nil, domain.ErrInvalidToken
}

type stubEmployerService struct {
	createFn    func(actor *domain.User, in ports.CreateEmployerInput) (*domain.Employer, error)
	editFn      func(actor *domain.User, in ports.EditEmployerInput) (bool, error)
	deleteFn    func(actor *domain.User, name string) error
	relationFn  func(actor *domain.User, in ports.RelationInput) error
	summaries   []ports.EmployerSummary
	visualizeFn func(name string) (*domain.Employer, *graph.Subgraph, error)
}

func (s *stubEmployerService) CreateEmployer(_ context.Context, actor *domain.User, in ports.CreateEmployerInput) (*domain.Employer, error) {
	return s.createFn(actor, in)
}

func (s *stubEmployerService) EditEmployer(_ context.Context, actor *domain.User, in ports.EditEmployerInput) (bool, error) {
	return s.editFn(actor, in)
}

func (s *stubEmployerService) DeleteEmployer(_ context.Context, actor *domain.User, name string) error {
	return s.deleteFn(actor, name)
}

func (s *stubEmployerService) AddRelation(_ context.Context, actor *domain.User, in ports.RelationInput) error {
	return s.relationFn(actor, in)
}

func (s *stubEmployerService) ListEmployers(context.Context) ([]ports.EmployerSummary, error) {
	return s.summaries, nil
}

func (s *stubEmployerService) Visualize(_ context.Context, name string) (*domain.Employer, *graph.Subgraph, error) {
	return s.visualizeFn(name)
}

type stubAdminService struct {
	granted  []string
	grantErr error
	overview ports.Overview
}

func (s *stubAdminService) GrantAdmin(_ context.Context, actor *domain.User, email string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if s.grantErr != nil {
		return s.grantErr
	}
	s.granted = append(s.granted, email)
	return nil
}

func (s *stubAdminService) Overview(_ context.Context, actor *domain.User) (*ports.Overview, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	o := s.overview
	return &o, nil
}

func (s *stubAdminService) CurrentUser(context.Context, ports.Session) (*domain.User, error) {
	return adminUser, nil
}
