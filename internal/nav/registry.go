package nav

import (
	"cmp"
	"slices"
	"sync"
)

// Collection is a content collection listed below the Collections item.
type Collection struct {
	Handle string `yaml:"handle" json:"handle"`
	Title  string `yaml:"title" json:"title"`
}

// CollectionLister supplies the collections shown in the navigation. It is
// consulted lazily, only when the Collections children are read.
type CollectionLister interface {
	Collections() []Collection
}

// StaticCollections is a fixed CollectionLister.
type StaticCollections []Collection

func (s StaticCollections) Collections() []Collection {
	return slices.Clone(s)
}

// Navigation is handed to registration callbacks to add sections and items
// to a default tree under construction.
type Navigation struct {
	tree *Tree
	urls *URLs
}

// URLs returns the url resolver of the tree being built.
func (n *Navigation) URLs() *URLs { return n.urls }

// Item adds a new item to the section with the given display name, creating
// the section if needed, and returns it for further configuration.
func (n *Navigation) Item(section, display string) *Item {
	return n.tree.section(section).Add(NewItem(display))
}

func (n *Navigation) TopLevel(display string) *Item    { return n.Item("Top Level", display) }
func (n *Navigation) Content(display string) *Item     { return n.Item("Content", display) }
func (n *Navigation) Fields(display string) *Item      { return n.Item("Fields", display) }
func (n *Navigation) Tools(display string) *Item       { return n.Item("Tools", display) }
func (n *Navigation) Users(display string) *Item       { return n.Item("Users", display) }
func (n *Navigation) Preferences(display string) *Item { return n.Item("Preferences", display) }

// Registry assembles the default navigation: the core items followed by any
// registered extensions.
type Registry struct {
	urls        *URLs
	collections CollectionLister

	mu         sync.RWMutex
	extensions []func(*Navigation)
}

func NewRegistry(urls *URLs, collections CollectionLister) *Registry {
	if collections == nil {
		collections = StaticCollections(nil)
	}
	return &Registry{urls: urls, collections: collections}
}

func (r *Registry) URLs() *URLs { return r.urls }

// Extend registers a callback that adds items to every default tree. Callbacks
// run in registration order after the core items, and before any preferences
// are applied.
func (r *Registry) Extend(fn func(*Navigation)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extensions = append(r.extensions, fn)
}

// Defaults builds a fresh default tree. Relative urls given by extensions are
// made absolute, including those of lazily resolved children.
func (r *Registry) Defaults() *Tree {
	r.mu.RLock()
	extensions := slices.Clone(r.extensions)
	r.mu.RUnlock()

	n := &Navigation{tree: &Tree{}, urls: r.urls}
	r.core(n)
	for _, extend := range extensions {
		extend(n)
	}

	for _, s := range n.tree.sections {
		r.resolveURLs(s.items)
	}
	return n.tree
}

// Build returns the default tree with doc applied.
func (r *Registry) Build(doc *Document) *Tree {
	return Build(r.Defaults(), doc, r.urls)
}

// BuildWithoutPreferences returns the default tree as is.
func (r *Registry) BuildWithoutPreferences() *Tree {
	return r.Defaults()
}

func (r *Registry) resolveURLs(items []*Item) {
	for _, item := range items {
		item.url = r.urls.Resolve(item.url)
		if item.children == nil {
			continue
		}
		if item.children.resolved {
			r.resolveURLs(item.children.items)
			continue
		}
		if resolve := item.children.resolve; resolve != nil {
			item.children.resolve = func() []*Item {
				items := resolve()
				r.resolveURLs(items)
				return items
			}
		}
	}
}

func (r *Registry) collectionItems() []*Item {
	collections := r.collections.Collections()
	slices.SortStableFunc(collections, func(a, b Collection) int {
		return cmp.Compare(a.Title, b.Title)
	})

	items := make([]*Item, len(collections))
	for idx, c := range collections {
		items[idx] = Link(c.Title, r.urls.CP("collections/"+c.Handle))
	}
	return items
}
