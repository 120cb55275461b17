package nocache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"reflect"
	"slices"
	"strings"

	"github.com/google/uuid"
)

const keyPrefix = "nocache::session."

// CascadeProvider derives the global context of the page at url.
type CascadeProvider interface {
	Cascade(ctx context.Context, pageURL string) (map[string]any, error)
}

// CascadeFunc adapts a function to CascadeProvider.
type CascadeFunc func(ctx context.Context, pageURL string) (map[string]any, error)

func (f CascadeFunc) Cascade(ctx context.Context, pageURL string) (map[string]any, error) {
	return f(ctx, pageURL)
}

// NormalizeURL lower-cases scheme and host and drops the fragment. The query
// string is kept since it selects a different page.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// Key returns the store key of the session for url.
func Key(raw string) string {
	sum := md5.Sum([]byte(NormalizeURL(raw)))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Session holds the dynamic regions of one page render. It is scoped to a
// single request and is not safe for concurrent use.
type Session struct {
	url      string
	store    Store
	cascader CascadeProvider

	cascade map[string]any
	regions []*Region
	byName  map[string]*Region
}

// NewSession creates an empty session for pageURL. cascader may be nil when the
// session is only written, never restored.
func NewSession(pageURL string, store Store, cascader CascadeProvider) *Session {
	return &Session{
		url:      pageURL,
		store:    store,
		cascader: cascader,
		cascade:  map[string]any{},
		byName:   make(map[string]*Region),
	}
}

func (s *Session) URL() string { return s.url }

// Key returns the store key this session reads and writes.
func (s *Session) Key() string { return Key(s.url) }

// SetCascade replaces the cascade.
func (s *Session) SetCascade(cascade map[string]any) {
	if cascade == nil {
		cascade = map[string]any{}
	}
	s.cascade = cascade
}

func (s *Session) Cascade() map[string]any { return s.cascade }

// PushRegion records a region named name. Context values equal to the
// current cascade value of the same key are dropped.
func (s *Session) PushRegion(name string, local map[string]any, extension string) *Region {
	return s.push(&Region{
		Name:      name,
		Type:      RegionString,
		Extension: extension,
		Context:   s.filterContext(local),
	})
}

// PushContents records an inline template under a generated name.
func (s *Session) PushContents(contents string, local map[string]any, extension string) *Region {
	r := s.PushRegion(uuid.NewString(), local, extension)
	r.Contents = contents
	return r
}

// PushView records a region rendered from the named view.
func (s *Session) PushView(view string, local map[string]any, extension string) *Region {
	r := s.PushRegion(uuid.NewString(), local, extension)
	r.Type = RegionView
	r.Contents = view
	return r
}

// Regions returns the regions in push order.
func (s *Session) Regions() []*Region { return slices.Clone(s.regions) }

// Region returns the region named name, or nil.
func (s *Session) Region(name string) *Region { return s.byName[name] }

// FragmentData returns the data the named region renders with.
func (s *Session) FragmentData(name string) (map[string]any, bool) {
	r, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return r.FragmentData(s.cascade), true
}

// Write persists the regions without expiry. Concurrent writes for the same
// url are last-write-wins.
func (s *Session) Write(ctx context.Context) error {
	data, err := encodeRegions(s.regions)
	if err != nil {
		return err
	}
	if err := s.store.Forever(ctx, s.Key(), data); err != nil {
		return fmt.Errorf("failed to write nocache session for %s: %w", s.url, err)
	}
	return nil
}

// Restore loads the regions persisted for the session url and re-derives the
// cascade. A missing, unreadable or corrupt entry leaves the session without
// regions. Only a failing cascade provider is reported as an error.
func (s *Session) Restore(ctx context.Context) error {
	s.regions = nil
	s.byName = make(map[string]*Region)

	data, ok, err := s.store.Get(ctx, s.Key())
	switch {
	case err != nil:
		slog.WarnContext(ctx, "Failed to read nocache session, continuing without regions", "url", s.url, "error", err)
	case ok:
		regions, err := decodeRegions(data)
		if err != nil {
			slog.WarnContext(ctx, "Discarding corrupt nocache session", "url", s.url, "error", err)
			break
		}
		for _, r := range regions {
			s.push(r)
		}
	}

	if s.cascader == nil {
		return nil
	}
	cascade, err := s.cascader.Cascade(ctx, s.url)
	if err != nil {
		return fmt.Errorf("failed to derive cascade for %s: %w", s.url, err)
	}
	s.SetCascade(cascade)
	return nil
}

func (s *Session) push(r *Region) *Region {
	if _, exists := s.byName[r.Name]; exists {
		idx := slices.IndexFunc(s.regions, func(existing *Region) bool { return existing.Name == r.Name })
		s.regions[idx] = r
	} else {
		s.regions = append(s.regions, r)
	}
	s.byName[r.Name] = r
	return r
}

func (s *Session) filterContext(local map[string]any) map[string]any {
	out := make(map[string]any, len(local))
	for key, value := range local {
		if current, ok := s.cascade[key]; ok && reflect.DeepEqual(current, value) {
			continue
		}
		out[key] = value
	}
	return out
}
