package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/linaspasv/cms/internal/app"
	"github.com/linaspasv/cms/internal/domain"
	"github.com/linaspasv/cms/internal/nav"
	apperrors "github.com/linaspasv/cms/internal/platform/errors"
)

func (s *Server) registerNavRoutes() {
	limiter := newRateLimiter(newLimiterStore(s.config.NavUpdateRate, s.config.NavUpdateBurst, s.clock))

	s.echo.GET(s.cpPath("/nav"), s.handleNav)
	s.echo.GET(s.cpPath("/preferences/nav/default"), s.handleEditDefaultNav)
	s.echo.PATCH(s.cpPath("/preferences/nav/default"), s.handleUpdateDefaultNav, limiter)
	s.echo.DELETE(s.cpPath("/preferences/nav/default"), s.handleDestroyDefaultNav, limiter)
}

// handleNav returns the nav of the current user with all preference layers
// applied.
func (s *Server) handleNav(c echo.Context) error {
	user := currentUser(c)
	kind := "guest"
	if user != nil {
		kind = "user"
	}

	start := s.clock.Now()
	tree, err := s.nav.BuildNav(c.Request().Context(), user)
	s.observeBuild(kind, start, err)
	if err != nil {
		return apperrors.InternalError("failed to build nav", err)
	}
	return s.respondTree(c, tree)
}

func (s *Server) handleEditDefaultNav(c echo.Context) error {
	start := s.clock.Now()
	tree, err := s.nav.DefaultNav(c.Request().Context(), currentUser(c))
	s.observeBuild("default", start, err)
	if err != nil {
		return navError(err, "failed to build default nav")
	}
	return s.respondTree(c, tree)
}

// handleUpdateDefaultNav replaces the default nav preferences with the
// request body, a YAML or JSON document keyed by section.
func (s *Server) handleUpdateDefaultNav(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return apperrors.ValidationError("failed to read request body").WithCause(err)
	}

	if err := s.nav.UpdateDefaultNav(c.Request().Context(), currentUser(c), body); err != nil {
		return navError(err, "failed to update default nav")
	}
	s.metrics.Nav.DefaultEdits.WithLabelValues("update").Inc()

	return respondOK(c)
}

func (s *Server) handleDestroyDefaultNav(c echo.Context) error {
	if err := s.nav.DestroyDefaultNav(c.Request().Context(), currentUser(c)); err != nil {
		return navError(err, "failed to reset default nav")
	}
	s.metrics.Nav.DefaultEdits.WithLabelValues("destroy").Inc()

	return respondOK(c)
}

func (s *Server) observeBuild(kind string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	s.metrics.Nav.Builds.WithLabelValues(kind, result).Inc()
	s.metrics.Nav.BuildDuration.WithLabelValues(kind).Observe(s.clock.Since(start).Seconds())
}

func (s *Server) respondTree(c echo.Context, tree *nav.Tree) error {
	if err := c.JSON(http.StatusOK, map[string]any{"nav": tree}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func respondOK(c echo.Context) error {
	if err := c.JSON(http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func navError(err error, message string) error {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return apperrors.ForbiddenError("super user required")
	case errors.Is(err, app.ErrInvalidDocument):
		return apperrors.ValidationError(err.Error())
	default:
		return apperrors.InternalError(message, err)
	}
}
