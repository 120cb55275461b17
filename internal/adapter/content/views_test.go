package content

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadViews(t *testing.T) {
	fsys := fstest.MapFS{
		"partials/cart.html": {Data: []byte("{{ .count }} items")},
		"greeting.txt":       {Data: []byte("Hi {{ .name }}")},
		".gitkeep":           {Data: nil},
	}

	views, err := ReadViews(fsys)

	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"partials/cart": "{{ .count }} items",
		"greeting":      "Hi {{ .name }}",
	}, views)
}

func TestReadViews_DuplicateName(t *testing.T) {
	fsys := fstest.MapFS{
		"cart.html": {Data: []byte("a")},
		"cart.txt":  {Data: []byte("b")},
	}

	_, err := ReadViews(fsys)

	assert.ErrorContains(t, err, `view "cart" is defined twice`)
}

func TestLoadViews_EmptyDir(t *testing.T) {
	views, err := LoadViews("")

	require.NoError(t, err)
	assert.Empty(t, views)
}
