package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/linaspasv/cms/internal/nocache"
	apperrors "github.com/linaspasv/cms/internal/platform/errors"
)

const maxRegionsPerPage = 100

func (s *Server) registerNocacheRoutes() {
	s.echo.POST("/!/nocache", s.handleRenderRegions)
	s.echo.POST("/!/nocache/regions", s.handleRecordRegions, requireSuperUser)
	s.echo.POST("/!/nocache/replace", s.handleReplace)
}

type renderRegionsRequest struct {
	URL string `json:"url"`
}

// handleRenderRegions renders every region recorded for a cached page, for
// the client script to swap into the placeholders.
func (s *Server) handleRenderRegions(c echo.Context) error {
	var req renderRegionsRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body").WithCause(err)
	}
	if req.URL == "" {
		return apperrors.ValidationError("url is required")
	}

	regions, err := s.pages.RenderRegions(c.Request().Context(), req.URL)
	if err != nil {
		return apperrors.InternalError("failed to render nocache regions", err).WithField("url", req.URL)
	}
	s.metrics.Nocache.RegionsServed.Add(float64(len(regions)))

	if err := c.JSON(http.StatusOK, map[string]any{"regions": regions}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

type regionRequest struct {
	Name      string         `json:"name"`
	Contents  string         `json:"contents"`
	View      string         `json:"view"`
	Context   map[string]any `json:"context"`
	Extension string         `json:"extension"`
}

type recordRegionsRequest struct {
	URL     string          `json:"url"`
	Regions []regionRequest `json:"regions"`
}

type placeholder struct {
	Name string `json:"name"`
	HTML string `json:"html"`
}

// handleRecordRegions records the dynamic regions of a page being rendered
// for the cache and returns the placeholder to leave in place of each. Only
// the renderer, acting as a super user, may record regions.
func (s *Server) handleRecordRegions(c echo.Context) error {
	var req recordRegionsRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body").WithCause(err)
	}
	if req.URL == "" {
		return apperrors.ValidationError("url is required")
	}
	if len(req.Regions) > maxRegionsPerPage {
		return apperrors.ValidationError("too many regions").WithField("max", maxRegionsPerPage)
	}

	ctx := c.Request().Context()
	session, err := s.pages.StartSession(ctx, req.URL)
	if err != nil {
		return apperrors.InternalError("failed to start nocache session", err).WithField("url", req.URL)
	}

	placeholders := make([]placeholder, 0, len(req.Regions))
	for _, r := range req.Regions {
		if r.View != "" && r.Contents != "" {
			return apperrors.ValidationError("a region has either contents or a view").WithField("region", r.Name)
		}
		region := pushRegion(session, r)
		placeholders = append(placeholders, placeholder{Name: region.Name, HTML: nocache.Placeholder(region.Name)})
	}

	if err := s.pages.FinishSession(ctx, session); err != nil {
		return apperrors.InternalError("failed to write nocache session", err).WithField("url", req.URL)
	}

	if err := c.JSON(http.StatusCreated, map[string]any{"placeholders": placeholders}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func pushRegion(session *nocache.Session, r regionRequest) *nocache.Region {
	switch {
	case r.Name == "" && r.View != "":
		return session.PushView(r.View, r.Context, r.Extension)
	case r.Name == "":
		return session.PushContents(r.Contents, r.Context, r.Extension)
	}

	region := session.PushRegion(r.Name, r.Context, r.Extension)
	if r.View != "" {
		region.Type = nocache.RegionView
		region.Contents = r.View
	} else {
		region.Contents = r.Contents
	}
	return region
}

type replaceRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

// handleReplace fills the placeholders of cached html server-side.
func (s *Server) handleReplace(c echo.Context) error {
	var req replaceRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body").WithCause(err)
	}
	if req.URL == "" {
		return apperrors.ValidationError("url is required")
	}

	html, err := s.pages.ReplacePlaceholders(c.Request().Context(), req.URL, req.HTML)
	if err != nil {
		return apperrors.InternalError("failed to replace nocache placeholders", err).WithField("url", req.URL)
	}

	if err := c.JSON(http.StatusOK, map[string]string{"html": html}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
