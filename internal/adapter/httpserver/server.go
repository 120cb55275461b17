package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/linaspasv/cms/internal/adapter/metrics"
	"github.com/linaspasv/cms/internal/domain"
	"github.com/linaspasv/cms/internal/nav"
	"github.com/linaspasv/cms/internal/nocache"
	"github.com/linaspasv/cms/internal/platform/config"
	"github.com/prometheus/client_golang/prometheus"
)

type navService interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	BuildNav(ctx context.Context, user *domain.User) (*nav.Tree, error)
	DefaultNav(ctx context.Context, user *domain.User) (*nav.Tree, error)
	UpdateDefaultNav(ctx context.Context, user *domain.User, document []byte) error
	DestroyDefaultNav(ctx context.Context, user *domain.User) error
}

type pageService interface {
	StartSession(ctx context.Context, pageURL string) (*nocache.Session, error)
	FinishSession(ctx context.Context, session *nocache.Session) error
	RenderRegions(ctx context.Context, pageURL string) (map[string]string, error)
	ReplacePlaceholders(ctx context.Context, pageURL, html string) (string, error)
}

// Instruments are the metrics the server records and exposes on /metrics.
type Instruments struct {
	Registry *prometheus.Registry
	HTTP     *metrics.HTTPMetrics
	Nav      *metrics.NavMetrics
	Nocache  *metrics.NocacheMetrics
}

// NewInstruments registers the HTTP, nav and nocache metrics on reg. cpRoute
// is the control panel prefix used to label HTTP metrics.
func NewInstruments(reg *prometheus.Registry, cpRoute string) Instruments {
	return Instruments{
		Registry: reg,
		HTTP:     metrics.NewHTTPMetrics(reg, cpRoute),
		Nav:      metrics.NewNavMetrics(reg),
		Nocache:  metrics.NewNocacheMetrics(reg),
	}
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	nav   navService
	pages pageService

	metrics      Instruments
	healthChecks []HealthCheck
	clock        clockwork.Clock
	startTime    time.Time
}

func NewServer(cfg *config.Config, navSvc navService, pages pageService, instruments Instruments, healthChecks []HealthCheck, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		nav:          navSvc,
		pages:        pages,
		metrics:      instruments,
		healthChecks: healthChecks,
		clock:        clock,
		startTime:    clock.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP exposes the router, mainly for tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
