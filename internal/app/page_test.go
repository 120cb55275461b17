package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/linaspasv/cms/internal/domain"
	"github.com/linaspasv/cms/internal/nav"
	"github.com/linaspasv/cms/internal/nocache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestPageService(pages domain.PageLookup, store nocache.Store, views map[string]string) *PageService {
	return NewPageService(pages, store, nocache.NewTemplateRenderer(views), nav.NewURLs("http://localhost", "cp", nil), clockwork.NewFakeClockAt(testNow))
}

func testPages() *mockPageLookup {
	return &mockPageLookup{findByURLFn: func(_ context.Context, path string) (*domain.Page, error) {
		if path != "/test" {
			return nil, domain.ErrPageNotFound
		}
		return &domain.Page{
			URL:   "/test",
			Title: "Test page",
			Data: map[string]any{
				"url":    "/not-the-url",
				"author": map[string]any{"name": "Ada"},
			},
		}, nil
	}}
}

func TestCascade_SystemVariablesAndPageData(t *testing.T) {
	svc := newTestPageService(testPages(), nocache.NewMemoryStore(clockwork.NewFakeClock()), nil)

	cascade, err := svc.Cascade(context.Background(), "http://localhost/test?page=2")

	require.NoError(t, err)
	assert.Equal(t, "/test", cascade["url"])
	assert.Equal(t, "http://localhost/test?page=2", cascade["current_url"])
	assert.Equal(t, "http://localhost/test", cascade["permalink"])
	assert.Equal(t, "http://localhost", cascade["site_url"])
	assert.Equal(t, "http://localhost/cp", cascade["cp_url"])
	assert.Equal(t, testNow, cascade["now"])
	assert.Equal(t, "Test page", cascade["title"])
	assert.Equal(t, map[string]any{"name": "Ada"}, cascade["author"])
}

func TestCascade_UnknownPage(t *testing.T) {
	svc := newTestPageService(testPages(), nocache.NewMemoryStore(clockwork.NewFakeClock()), nil)

	cascade, err := svc.Cascade(context.Background(), "/nothing-here")

	require.NoError(t, err)
	assert.Equal(t, "/nothing-here", cascade["url"])
	assert.NotContains(t, cascade, "title")
}

func TestCascade_LookupError(t *testing.T) {
	pages := &mockPageLookup{findByURLFn: func(context.Context, string) (*domain.Page, error) {
		return nil, errors.New("content store offline")
	}}
	svc := newTestPageService(pages, nocache.NewMemoryStore(clockwork.NewFakeClock()), nil)

	_, err := svc.Cascade(context.Background(), "/test")

	assert.ErrorContains(t, err, "content store offline")
}

func TestPageService_RecordAndRender(t *testing.T) {
	ctx := context.Background()
	store := nocache.NewMemoryStore(clockwork.NewFakeClock())
	svc := newTestPageService(testPages(), store, map[string]string{"byline": "by {{ .author.name }}"})

	session, err := svc.StartSession(ctx, "http://localhost/test")
	require.NoError(t, err)
	greeting := session.PushContents("{{ .title }} for {{ .visitor }}", map[string]any{"title": "Test page", "visitor": "Bob"}, "html")
	byline := session.PushView("byline", nil, "html")
	require.NoError(t, svc.FinishSession(ctx, session))

	assert.Equal(t, map[string]any{"visitor": "Bob"}, greeting.Context)

	regions, err := svc.RenderRegions(ctx, "http://localhost/test")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		greeting.Name: "Test page for Bob",
		byline.Name:   "by Ada",
	}, regions)

	html, err := svc.ReplacePlaceholders(ctx, "http://localhost/test", "<p>"+nocache.Placeholder(byline.Name)+"</p>")
	require.NoError(t, err)
	assert.Equal(t, "<p>by Ada</p>", html)
}

func TestFinishSession_WithoutRegionsWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := nocache.NewMemoryStore(clockwork.NewFakeClock())
	svc := newTestPageService(testPages(), store, nil)

	session, err := svc.StartSession(ctx, "/test")
	require.NoError(t, err)
	require.NoError(t, svc.FinishSession(ctx, session))

	_, ok, err := store.Get(ctx, nocache.Key("/test"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRenderRegions_UnknownURL(t *testing.T) {
	svc := newTestPageService(testPages(), nocache.NewMemoryStore(clockwork.NewFakeClock()), nil)

	regions, err := svc.RenderRegions(context.Background(), "/never-cached")

	require.NoError(t, err)
	assert.Empty(t, regions)
}
