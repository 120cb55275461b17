package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/linaspasv/cms/internal/domain"
	"github.com/linaspasv/cms/internal/nav"
	"github.com/linaspasv/cms/internal/nocache"
	"github.com/linaspasv/cms/internal/platform/config"
	"github.com/prometheus/client_golang/prometheus"
)

// --- Mock implementations ---

type mockNavService struct {
	getUserByIDFn       func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	buildNavFn          func(ctx context.Context, user *domain.User) (*nav.Tree, error)
	defaultNavFn        func(ctx context.Context, user *domain.User) (*nav.Tree, error)
	updateDefaultNavFn  func(ctx context.Context, user *domain.User, document []byte) error
	destroyDefaultNavFn func(ctx context.Context, user *domain.User) error
}

func (m *mockNavService) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(ctx, userID)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockNavService) BuildNav(ctx context.Context, user *domain.User) (*nav.Tree, error) {
	if m.buildNavFn != nil {
		return m.buildNavFn(ctx, user)
	}
	return testTree(), nil
}

func (m *mockNavService) DefaultNav(ctx context.Context, user *domain.User) (*nav.Tree, error) {
	if m.defaultNavFn != nil {
		return m.defaultNavFn(ctx, user)
	}
	return testTree(), nil
}

func (m *mockNavService) UpdateDefaultNav(ctx context.Context, user *domain.User, document []byte) error {
	if m.updateDefaultNavFn != nil {
		return m.updateDefaultNavFn(ctx, user, document)
	}
	return nil
}

func (m *mockNavService) DestroyDefaultNav(ctx context.Context, user *domain.User) error {
	if m.destroyDefaultNavFn != nil {
		return m.destroyDefaultNavFn(ctx, user)
	}
	return nil
}

type mockPageService struct {
	store nocache.Store

	startSessionFn        func(ctx context.Context, pageURL string) (*nocache.Session, error)
	finishSessionFn       func(ctx context.Context, session *nocache.Session) error
	renderRegionsFn       func(ctx context.Context, pageURL string) (map[string]string, error)
	replacePlaceholdersFn func(ctx context.Context, pageURL, html string) (string, error)
}

func (m *mockPageService) StartSession(ctx context.Context, pageURL string) (*nocache.Session, error) {
	if m.startSessionFn != nil {
		return m.startSessionFn(ctx, pageURL)
	}
	return nocache.NewSession(pageURL, m.store, nil), nil
}

func (m *mockPageService) FinishSession(ctx context.Context, session *nocache.Session) error {
	if m.finishSessionFn != nil {
		return m.finishSessionFn(ctx, session)
	}
	return session.Write(ctx)
}

func (m *mockPageService) RenderRegions(ctx context.Context, pageURL string) (map[string]string, error) {
	if m.renderRegionsFn != nil {
		return m.renderRegionsFn(ctx, pageURL)
	}
	return map[string]string{}, nil
}

func (m *mockPageService) ReplacePlaceholders(ctx context.Context, pageURL, html string) (string, error) {
	if m.replacePlaceholdersFn != nil {
		return m.replacePlaceholdersFn(ctx, pageURL, html)
	}
	return html, errors.New("not implemented")
}

// --- Fixtures ---

var (
	superID  = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	editorID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
)

func testUsers(_ context.Context, userID uuid.UUID) (*domain.User, error) {
	switch userID {
	case superID:
		return &domain.User{ID: superID, Email: "admin@example.com", Super: true}, nil
	case editorID:
		return &domain.User{ID: editorID, Email: "editor@example.com", Roles: []string{"editor"}}, nil
	}
	return nil, domain.ErrUserNotFound
}

func testTree() *nav.Tree {
	urls := nav.NewURLs("http://localhost", "cp", nil)
	return nav.NewRegistry(urls, nil).BuildWithoutPreferences()
}

// --- Server helpers ---

func testConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		SiteURL:        "http://localhost",
		CPRoute:        "cp",
		NavUpdateRate:  100,
		NavUpdateBurst: 100,
	}
}

func newTestServer(t *testing.T, navSvc navService, pages pageService, opts ...func(*Server)) *Server {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	srv := &Server{
		echo:      echo.New(),
		config:    testConfig(),
		nav:       navSvc,
		pages:     pages,
		metrics:   NewInstruments(prometheus.NewRegistry(), "cp"),
		clock:     clock,
		startTime: clock.Now(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	// Register routes so endpoints are available for testing
	srv.registerRoutes()

	return srv
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

func withConfig(mutate func(*config.Config)) func(*Server) {
	return func(s *Server) {
		mutate(s.config)
	}
}

func newPageService() *mockPageService {
	return &mockPageService{store: nocache.NewMemoryStore(clockwork.NewRealClock())}
}

func doRequest(srv *Server, method, target, body string, userID uuid.UUID) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if userID != uuid.Nil {
		req.Header.Set(userHeader, userID.String())
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

var _ http.Handler = (*Server)(nil)
