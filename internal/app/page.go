package app

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/url"

	"dario.cat/mergo"
	"github.com/jonboulle/clockwork"
	"github.com/linaspasv/cms/internal/domain"
	"github.com/linaspasv/cms/internal/nav"
	"github.com/linaspasv/cms/internal/nocache"
)

// PageService restores the nocache session of a page and renders its
// regions. It also derives the cascade regions are rendered with.
type PageService struct {
	pages    domain.PageLookup
	store    nocache.Store
	replacer *nocache.Replacer
	urls     *nav.URLs
	clock    clockwork.Clock
}

func NewPageService(pages domain.PageLookup, store nocache.Store, renderer nocache.Renderer, urls *nav.URLs, clock clockwork.Clock) *PageService {
	return &PageService{
		pages:    pages,
		store:    store,
		replacer: nocache.NewReplacer(renderer),
		urls:     urls,
		clock:    clock,
	}
}

var _ nocache.CascadeProvider = (*PageService)(nil)

// Cascade returns the global variables of the page at pageURL. Page data
// fills in keys the system variables leave unset. Unknown pages only get the
// system variables.
func (s *PageService) Cascade(ctx context.Context, pageURL string) (map[string]any, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url %q: %w", pageURL, err)
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	cascade := map[string]any{
		"url":         path,
		"current_url": pageURL,
		"permalink":   s.urls.Resolve(path),
		"site_url":    s.urls.Site(),
		"cp_url":      s.urls.CP(""),
		"now":         s.clock.Now(),
	}

	page, err := s.pages.FindByURL(ctx, path)
	if errors.Is(err, domain.ErrPageNotFound) {
		return cascade, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up page %s: %w", path, err)
	}

	data := maps.Clone(page.Data)
	if data == nil {
		data = map[string]any{}
	}
	if page.Title != "" {
		data["title"] = page.Title
	}
	if err := mergo.Merge(&cascade, data); err != nil {
		return nil, fmt.Errorf("failed to merge page data for %s: %w", path, err)
	}
	return cascade, nil
}

// StartSession opens an empty session for rendering pageURL, with the cascade
// already derived so pushed regions only keep their own context.
func (s *PageService) StartSession(ctx context.Context, pageURL string) (*nocache.Session, error) {
	cascade, err := s.Cascade(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	session := nocache.NewSession(pageURL, s.store, s)
	session.SetCascade(cascade)
	return session, nil
}

// FinishSession persists session if it recorded any region.
func (s *PageService) FinishSession(ctx context.Context, session *nocache.Session) error {
	if len(session.Regions()) == 0 {
		return nil
	}
	return session.Write(ctx)
}

// RenderRegions restores the session of pageURL and renders every region.
func (s *PageService) RenderRegions(ctx context.Context, pageURL string) (map[string]string, error) {
	session := nocache.NewSession(pageURL, s.store, s)
	if err := session.Restore(ctx); err != nil {
		return nil, err
	}
	return s.replacer.RenderAll(ctx, session)
}

// ReplacePlaceholders swaps the region placeholders in cached html for
// freshly rendered fragments.
func (s *PageService) ReplacePlaceholders(ctx context.Context, pageURL, html string) (string, error) {
	return s.replacer.Replace(ctx, nocache.NewSession(pageURL, s.store, s), html)
}
