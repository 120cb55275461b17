package nocache

import (
	"context"
	"fmt"
	htmltemplate "html/template"
	"io"
	"strings"
	"sync"
	texttemplate "text/template"
)

// Fragment is a region ready to be rendered with its merged data.
type Fragment struct {
	Region *Region
	Data   map[string]any
}

// Renderer turns a fragment into output.
type Renderer interface {
	Render(ctx context.Context, f *Fragment) (string, error)
}

// Render renders the fragment with r.
func (f *Fragment) Render(ctx context.Context, r Renderer) (string, error) {
	return r.Render(ctx, f)
}

// maxInlineTemplates caps how many parsed string regions are kept. Views are
// always cached since their set is fixed at construction.
const maxInlineTemplates = 256

// TemplateRenderer renders fragments with Go templates. Html extensions use
// html/template, anything else text/template. View regions are looked up in
// the views given at construction.
type TemplateRenderer struct {
	views map[string]string

	mu     sync.Mutex
	cache  map[string]executor
	inline int
}

// executor is satisfied by both html and text templates.
type executor interface {
	Execute(w io.Writer, data any) error
}

func NewTemplateRenderer(views map[string]string) *TemplateRenderer {
	return &TemplateRenderer{views: views, cache: make(map[string]executor)}
}

func (t *TemplateRenderer) Render(_ context.Context, f *Fragment) (string, error) {
	source, key := f.Region.Contents, "inline:"+f.Region.Contents
	if f.Region.Type == RegionView {
		view, ok := t.views[f.Region.Contents]
		if !ok {
			return "", fmt.Errorf("view %q not found", f.Region.Contents)
		}
		source, key = view, "view:"+f.Region.Contents
	}

	exec, err := t.compile(f.Region.Extension, key, source, f.Region.Type == RegionView)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if err := exec.Execute(&b, f.Data); err != nil {
		return "", fmt.Errorf("failed to render region %q: %w", f.Region.Name, err)
	}
	return b.String(), nil
}

// compile parses source once per key. Inline sources past
// maxInlineTemplates are parsed on every render instead of cached.
func (t *TemplateRenderer) compile(extension, key, source string, isView bool) (executor, error) {
	escaped := isHTML(extension)
	key = fmt.Sprintf("%t:%s", escaped, key)

	t.mu.Lock()
	defer t.mu.Unlock()
	if exec, ok := t.cache[key]; ok {
		return exec, nil
	}

	var exec executor
	if escaped {
		tmpl, err := htmltemplate.New("region").Option("missingkey=zero").Parse(source)
		if err != nil {
			return nil, fmt.Errorf("failed to parse region template: %w", err)
		}
		exec = tmpl
	} else {
		tmpl, err := texttemplate.New("region").Option("missingkey=zero").Parse(source)
		if err != nil {
			return nil, fmt.Errorf("failed to parse region template: %w", err)
		}
		exec = tmpl
	}
	if isView || t.inline < maxInlineTemplates {
		t.cache[key] = exec
		if !isView {
			t.inline++
		}
	}
	return exec, nil
}

func (t *TemplateRenderer) cacheSize() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.cache)
}

func isHTML(extension string) bool {
	switch strings.ToLower(strings.TrimPrefix(extension, ".")) {
	case "", "html", "htm":
		return true
	}
	return false
}
