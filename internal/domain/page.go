package domain

import "context"

// Page is the content entry rendered at a url. Data is merged into the
// cascade that nocache regions render with.
type Page struct {
	URL   string         `yaml:"url"`
	Title string         `yaml:"title"`
	Data  map[string]any `yaml:"data"`
}

// PageLookup resolves the page served at a url path. It returns
// ErrPageNotFound for unknown paths.
type PageLookup interface {
	FindByURL(ctx context.Context, path string) (*Page, error)
}
