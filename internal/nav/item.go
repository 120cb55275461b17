package nav

// Item is a single navigation entry. Items are owned by exactly one tree
// snapshot; aliasing or moving produces a new Item rather than sharing one.
type Item struct {
	id      string
	section string
	display string
	url     string
	icon    string
	isChild bool

	// pinned ids survive re-parenting; clones keep their "::clone" id wherever
	// they are placed.
	pinned bool
	origin string

	children *children
}

// children is either a materialized slice or a resolver that produces one the
// first time it is read.
type children struct {
	resolved bool
	items    []*Item
	resolve  func() []*Item
}

// NewItem creates a detached item. Its id is assigned once it is added to a
// section or to another item's children.
func NewItem(display string) *Item {
	return &Item{display: display}
}

// Link creates a detached leaf item pointing at url.
func Link(display, url string) *Item {
	return &Item{display: display, url: url}
}

func (i *Item) ID() string      { return i.id }
func (i *Item) Section() string { return i.section }
func (i *Item) Display() string { return i.display }
func (i *Item) URL() string     { return i.url }
func (i *Item) Icon() string    { return i.icon }
func (i *Item) IsChild() bool   { return i.isChild }

// Origin returns the id of the item this one was copied from by an alias or
// move, or the corresponding source child id for children of such a copy.
// It is empty for items that were never cloned.
func (i *Item) Origin() string { return i.origin }

// WithURL sets the target url.
func (i *Item) WithURL(url string) *Item {
	i.url = url
	return i
}

// WithIcon sets the icon markup or identifier.
func (i *Item) WithIcon(icon string) *Item {
	i.icon = icon
	return i
}

// WithChildren replaces the children with an already materialized list.
func (i *Item) WithChildren(items ...*Item) *Item {
	i.setChildren(items)
	return i
}

// WithLazyChildren defers computing the children until they are first read.
func (i *Item) WithLazyChildren(resolve func() []*Item) *Item {
	i.children = &children{resolve: resolve}
	return i
}

// Children returns the child items, resolving lazy children on first access.
// It returns nil for leaf items.
func (i *Item) Children() []*Item {
	if i.children == nil {
		return nil
	}
	i.children.materialize(i)
	if len(i.children.items) == 0 {
		return nil
	}
	return i.children.items
}

// ResolveChildren forces lazy children to be computed and returns the item.
func (i *Item) ResolveChildren() *Item {
	i.Children()
	return i
}

func (c *children) materialize(owner *Item) {
	if c.resolved {
		return
	}
	c.resolved = true
	if c.resolve == nil {
		return
	}
	c.items = c.resolve()
	c.resolve = nil
	for _, child := range c.items {
		attach(owner, child)
	}
}

func (c *children) copy() *children {
	if c == nil {
		return nil
	}
	if !c.resolved {
		return &children{resolve: c.resolve}
	}
	items := make([]*Item, len(c.items))
	for idx, child := range c.items {
		items[idx] = child.copy()
	}
	return &children{resolved: true, items: items}
}

func (i *Item) setChildren(items []*Item) {
	i.children = &children{resolved: true, items: items}
	for _, child := range items {
		attach(i, child)
	}
}

// childList returns the materialized children, creating an empty list when the
// item has none yet.
func (i *Item) childList() []*Item {
	if i.children == nil {
		i.children = &children{resolved: true}
	}
	i.children.materialize(i)
	return i.children.items
}

func (i *Item) replaceChildren(items []*Item) {
	if i.children == nil {
		i.children = &children{}
	}
	i.children.resolved = true
	i.children.resolve = nil
	i.children.items = items
}

// copy duplicates the item and its materialized subtree, keeping ids.
func (i *Item) copy() *Item {
	c := *i
	c.children = i.children.copy()
	return &c
}

// clone produces the copy inserted by @alias and @move.
func (i *Item) clone() *Item {
	c := i.copy()
	c.id = CloneID(i.id)
	c.pinned = true
	c.origin = i.id
	if c.children != nil && c.children.resolved {
		for _, child := range c.children.items {
			attach(c, child)
		}
	}
	return c
}

// attach assigns ids below parent, recursing into materialized children.
func attach(parent, child *Item) {
	child.isChild = true
	child.section = parent.section
	if !child.pinned {
		child.id = ChildID(parent.id, child.display)
		child.origin = ""
		if parent.origin != "" {
			child.origin = ChildID(parent.origin, child.display)
		}
	}
	if child.children != nil && child.children.resolved {
		for _, grandchild := range child.children.items {
			attach(child, grandchild)
		}
	}
}

// place assigns ids for a top-level item of section.
func place(section string, item *Item) {
	item.isChild = false
	item.section = section
	if !item.pinned {
		item.id = ItemID(section, item.display)
	}
	if item.children != nil && item.children.resolved {
		for _, child := range item.children.items {
			attach(item, child)
		}
	}
}

// matches reports whether ref names this item, either directly or through the
// item it was cloned from.
func (i *Item) matches(ref string, viaOrigin bool) bool {
	return i.id == ref || (viaOrigin && i.origin != "" && i.origin == ref)
}
