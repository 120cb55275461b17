package nav

import (
	"encoding/json"
)

// Section is a named group of top-level items.
type Section struct {
	key     string
	display string
	items   []*Item
}

func newSection(display string) *Section {
	return &Section{key: Slug(display), display: display}
}

func (s *Section) Key() string     { return s.key }
func (s *Section) Display() string { return s.display }

// Items returns the section's items in order.
func (s *Section) Items() []*Item { return s.items }

// Displays returns the display text of every item in order.
func (s *Section) Displays() []string {
	out := make([]string, len(s.items))
	for idx, item := range s.items {
		out[idx] = item.display
	}
	return out
}

// ByDisplay returns the item with the given display text. When several items
// share a display the last one wins.
func (s *Section) ByDisplay(display string) *Item {
	var found *Item
	for _, item := range s.items {
		if item.display == display {
			found = item
		}
	}
	return found
}

// Item returns the top-level item with the given id.
func (s *Section) Item(id string) *Item {
	for _, item := range s.items {
		if item.id == id {
			return item
		}
	}
	return nil
}

// Add appends item to the section and assigns its id.
func (s *Section) Add(item *Item) *Item {
	place(s.key, item)
	s.items = append(s.items, item)
	return item
}

// Tree is an ordered set of sections. Each build produces its own Tree.
type Tree struct {
	sections []*Section
}

// Sections returns the sections in order.
func (t *Tree) Sections() []*Section { return t.sections }

// Keys returns the section display names in order.
func (t *Tree) Keys() []string {
	out := make([]string, len(t.sections))
	for idx, s := range t.sections {
		out[idx] = s.display
	}
	return out
}

// Get returns the section with the given display name, or nil.
func (t *Tree) Get(display string) *Section {
	for _, s := range t.sections {
		if s.display == display {
			return s
		}
	}
	return nil
}

// Section returns the section with the given key, or nil.
func (t *Tree) Section(key string) *Section {
	for _, s := range t.sections {
		if s.key == key {
			return s
		}
	}
	return nil
}

// Find returns the item with the given id anywhere in the tree. Lazy children
// are only resolved along the path the id points to.
func (t *Tree) Find(id string) *Item {
	if loc, ok := t.locate(id); ok {
		return loc.item()
	}
	return nil
}

// Clone deep-copies the tree. Lazy children stay unresolved in the copy.
func (t *Tree) Clone() *Tree {
	out := &Tree{sections: make([]*Section, len(t.sections))}
	for idx, s := range t.sections {
		cs := &Section{key: s.key, display: s.display, items: make([]*Item, len(s.items))}
		for j, item := range s.items {
			cs.items[j] = item.copy()
		}
		out.sections[idx] = cs
	}
	return out
}

func (t *Tree) section(display string) *Section {
	key := Slug(display)
	if s := t.Section(key); s != nil {
		return s
	}
	s := newSection(display)
	t.sections = append(t.sections, s)
	return s
}

// location points at an item inside its containing list.
type location struct {
	section *Section
	parent  *Item
	index   int
}

func (l location) list() []*Item {
	if l.parent == nil {
		return l.section.items
	}
	return l.parent.children.items
}

func (l location) item() *Item {
	return l.list()[l.index]
}

func (l location) remove() {
	items := l.list()
	rest := make([]*Item, 0, len(items)-1)
	rest = append(rest, items[:l.index]...)
	rest = append(rest, items[l.index+1:]...)
	if l.parent == nil {
		l.section.items = rest
		return
	}
	l.parent.replaceChildren(rest)
}

func (t *Tree) locate(id string) (location, bool) {
	for _, s := range t.sections {
		if loc, ok := locateIn(s, nil, s.items, id, false); ok {
			return loc, true
		}
	}
	return location{}, false
}

// locateIn searches items depth-first. Children are only descended into when
// they are already materialized or when ref lies below the item's id, so
// expensive lazy children stay untouched unless they are addressed.
func locateIn(s *Section, parent *Item, items []*Item, ref string, viaOrigin bool) (location, bool) {
	for idx, item := range items {
		if item.matches(ref, viaOrigin) {
			return location{section: s, parent: parent, index: idx}, true
		}
	}
	for _, item := range items {
		if item.children == nil {
			continue
		}
		if !item.children.resolved && !descendsFrom(ref, item.id) && !descendsFrom(ref, item.origin) {
			continue
		}
		if loc, ok := locateIn(s, item, item.childList(), ref, viaOrigin); ok {
			return loc, true
		}
	}
	return location{}, false
}

type itemJSON struct {
	ID       string     `json:"id"`
	Display  string     `json:"display"`
	URL      string     `json:"url,omitempty"`
	Icon     string     `json:"icon,omitempty"`
	Children []itemJSON `json:"children,omitempty"`
}

type sectionJSON struct {
	Key     string     `json:"key"`
	Display string     `json:"display"`
	Items   []itemJSON `json:"items"`
}

// MarshalJSON renders the fully resolved tree.
func (t *Tree) MarshalJSON() ([]byte, error) {
	out := make([]sectionJSON, len(t.sections))
	for idx, s := range t.sections {
		items := itemsJSON(s.items)
		if items == nil {
			items = []itemJSON{}
		}
		out[idx] = sectionJSON{Key: s.key, Display: s.display, Items: items}
	}
	return json.Marshal(out)
}

func itemsJSON(items []*Item) []itemJSON {
	if len(items) == 0 {
		return nil
	}
	out := make([]itemJSON, len(items))
	for idx, item := range items {
		out[idx] = itemJSON{
			ID:       item.id,
			Display:  item.display,
			URL:      item.url,
			Icon:     item.icon,
			Children: itemsJSON(item.Children()),
		}
	}
	return out
}
