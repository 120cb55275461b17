// Package content serves pages and collections from a YAML content file.
package content

import (
	"context"
	"fmt"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/linaspasv/cms/internal/domain"
	"github.com/linaspasv/cms/internal/nav"
	"gopkg.in/yaml.v3"
)

type file struct {
	Collections []nav.Collection `yaml:"collections"`
	Pages       []domain.Page    `yaml:"pages"`
}

// Catalog is an in-memory, read-only set of pages and collections.
type Catalog struct {
	collections []nav.Collection
	pages       map[string]*domain.Page
}

var (
	_ domain.PageLookup    = (*Catalog)(nil)
	_ nav.CollectionLister = (*Catalog)(nil)
)

// Load reads a content file. An empty path yields an empty catalog.
func Load(filename string) (*Catalog, error) {
	if filename == "" {
		return Parse(nil)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse content file: %w", err)
	}

	c := &Catalog{
		collections: f.Collections,
		pages:       make(map[string]*domain.Page, len(f.Pages)),
	}
	for i := range f.Pages {
		page := &f.Pages[i]
		if page.URL == "" {
			return nil, fmt.Errorf("page %d has no url", i)
		}
		page.URL = cleanPath(page.URL)
		if _, exists := c.pages[page.URL]; exists {
			return nil, fmt.Errorf("duplicate page url %s", page.URL)
		}
		c.pages[page.URL] = page
	}
	return c, nil
}

func (c *Catalog) FindByURL(_ context.Context, p string) (*domain.Page, error) {
	page, ok := c.pages[cleanPath(p)]
	if !ok {
		return nil, domain.ErrPageNotFound
	}
	return page, nil
}

func (c *Catalog) Collections() []nav.Collection {
	return slices.Clone(c.collections)
}

func cleanPath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
