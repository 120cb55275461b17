package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/linaspasv/cms/internal/domain"
	"github.com/linaspasv/cms/internal/nav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testContent = `
collections:
  - handle: pages
    title: Pages
  - handle: articles
    title: Articles
pages:
  - url: /
    title: Home
  - url: /about/
    title: About
    data:
      team: [ada, grace]
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(testContent))
	require.NoError(t, err)
	ctx := context.Background()

	assert.Equal(t, []nav.Collection{{Handle: "pages", Title: "Pages"}, {Handle: "articles", Title: "Articles"}}, c.Collections())

	page, err := c.FindByURL(ctx, "/about")
	require.NoError(t, err)
	assert.Equal(t, "About", page.Title)
	assert.Equal(t, []any{"ada", "grace"}, page.Data["team"])

	home, err := c.FindByURL(ctx, "/")
	require.NoError(t, err)
	assert.Equal(t, "Home", home.Title)

	_, err = c.FindByURL(ctx, "/missing")
	assert.ErrorIs(t, err, domain.ErrPageNotFound)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("pages: [{title: No url}]"))
	assert.Error(t, err)

	_, err = Parse([]byte("pages: [{url: /a}, {url: /a/}]"))
	assert.ErrorContains(t, err, "duplicate")

	_, err = Parse([]byte("pages: {"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	empty, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, empty.Collections())

	filename := filepath.Join(t.TempDir(), "content.yaml")
	require.NoError(t, os.WriteFile(filename, []byte(testContent), 0o600))

	c, err := Load(filename)
	require.NoError(t, err)
	assert.Len(t, c.Collections(), 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
