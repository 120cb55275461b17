package nav

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Build applies the preferences document to a copy of defaults and returns
// the resulting tree. defaults is never modified, so one default tree may be
// shared by concurrent builds as long as its lazy resolvers return fresh
// items on every call.
//
// Unresolvable references, entries missing required fields and actions used
// in the wrong scope are skipped; Build never fails.
func Build(defaults *Tree, doc *Document, urls *URLs) *Tree {
	tree := defaults.Clone()
	if doc.Empty() {
		return tree
	}

	b := &builder{
		tree:    tree,
		urls:    urls,
		actions: make(map[*Entry]Action),
		targets: make(map[*Entry]*Item),
		placed:  make(map[*Entry]*Item),
		custom:  make(map[*Section]bool),
	}

	scopes := make([]scope, len(doc.Sections))
	for idx, sp := range doc.Sections {
		scopes[idx] = scope{section: b.section(sp)}
	}

	// Creates and modifies run for every section before any alias or move is
	// resolved, so references may point at items defined further down.
	for idx, sp := range doc.Sections {
		b.prepare(scopes[idx], sp.Items)
	}
	for idx, sp := range doc.Sections {
		b.link(scopes[idx], sp.Items)
	}
	for idx, sp := range doc.Sections {
		b.prune(scopes[idx], sp.Items)
	}
	for idx, sp := range doc.Sections {
		b.arrange(scopes[idx], sp.Items, sp.Reorder)
	}

	b.orderSections(doc)
	return tree
}

type builder struct {
	tree *Tree
	urls *URLs

	// actions memoizes the effective action per entry; implicit actions
	// depend on tree state and must not change between passes.
	actions map[*Entry]Action
	// targets is the item an entry created, modified or cloned.
	targets map[*Entry]*Item
	// placed holds the items an entry inserted into its scope.
	placed map[*Entry]*Item
	// custom sections exist only in preferences and are dropped when empty.
	custom map[*Section]bool
}

// scope is a list of items preferences operate on: a section's top-level
// items or the children of one item.
type scope struct {
	section *Section
	parent  *Item
}

func (s scope) key() string { return s.section.key }

func (s scope) items() []*Item {
	if s.parent == nil {
		return s.section.items
	}
	return s.parent.childList()
}

func (s scope) set(items []*Item) {
	if s.parent == nil {
		s.section.items = items
		return
	}
	s.parent.replaceChildren(items)
}

func (s scope) add(item *Item) {
	if s.parent == nil {
		s.section.Add(item)
		return
	}
	list := s.parent.childList()
	attach(s.parent, item)
	s.parent.replaceChildren(append(list, item))
}

func (s scope) find(ref string) (location, bool) {
	return locateIn(s.section, s.parent, s.items(), ref, true)
}

func (s scope) below(item *Item) scope {
	return scope{section: s.section, parent: item}
}

func (b *builder) section(sp *SectionPrefs) *Section {
	s := b.tree.Section(sp.Key)
	if s == nil {
		s = &Section{key: sp.Key, display: titleize(sp.Key)}
		b.tree.sections = append(b.tree.sections, s)
		b.custom[s] = true
	}
	if sp.Display != nil && *sp.Display != "" {
		s.display = *sp.Display
	}
	return s
}

// action returns the effective action of e within sc. Entries without an
// action alias items from other sections and modify items of their own
// scope; anything else is ignored.
func (b *builder) action(sc scope, e *Entry) Action {
	if act, ok := b.actions[e]; ok {
		return act
	}

	var act Action
	switch {
	case e.Action != "":
		if e.Action.known() {
			act = e.Action
		}
	case IsReference(e.Key) && SectionOf(e.Key) != sc.key():
		act = ActionAlias
	default:
		if _, ok := sc.find(e.Key); ok {
			act = ActionModify
		}
	}
	b.actions[e] = act
	return act
}

func (b *builder) prepare(sc scope, entries []*Entry) {
	for _, e := range entries {
		switch b.action(sc, e) {
		case ActionCreate:
			item := b.create(e)
			if item == nil {
				continue
			}
			sc.add(item)
			b.targets[e] = item
			b.placed[e] = item
			b.prepare(sc.below(item), e.Children)
		case ActionModify:
			loc, ok := sc.find(e.Key)
			if !ok {
				continue
			}
			item := loc.item()
			b.override(item, e)
			b.targets[e] = item
			b.prepare(sc.below(item), e.Children)
		}
	}
}

func (b *builder) link(sc scope, entries []*Entry) {
	for _, e := range entries {
		switch act := b.action(sc, e); act {
		case ActionAlias, ActionMove:
			b.relocate(sc, e, act == ActionMove)
		case ActionCreate, ActionModify:
			if target := b.targets[e]; target != nil {
				b.link(sc.below(target), e.Children)
			}
		}
	}
}

// relocate inserts a clone of the referenced item into sc. Moves also drop
// the source, except within the source's own section where they do nothing.
func (b *builder) relocate(sc scope, e *Entry, move bool) {
	loc, ok := b.tree.locate(e.Key)
	if !ok {
		return
	}
	src := loc.item()
	if move && src.section == sc.key() {
		return
	}

	clone := src.clone()
	b.override(clone, e)
	sc.add(clone)
	b.targets[e] = clone
	b.placed[e] = clone
	if move {
		loc.remove()
	}

	// The clone did not exist during the first pass, so its children are
	// prepared and linked here.
	b.prepare(sc.below(clone), e.Children)
	b.link(sc.below(clone), e.Children)
}

func (b *builder) prune(sc scope, entries []*Entry) {
	for _, e := range entries {
		switch b.action(sc, e) {
		case ActionRemove:
			if loc, ok := sc.find(e.Key); ok {
				loc.remove()
			}
		case ActionCreate, ActionModify, ActionAlias, ActionMove:
			if target := b.targets[e]; target != nil {
				b.prune(sc.below(target), e.Children)
			}
		}
	}
}

// arrange orders the items of sc. Without reorder, default items keep their
// order and inserted items follow in document order. With reorder, entries
// come first in document order and unmentioned items follow.
func (b *builder) arrange(sc scope, entries []*Entry, reorder bool) {
	for _, e := range entries {
		if target := b.targets[e]; target != nil && len(e.Children) > 0 {
			b.arrange(sc.below(target), e.Children, e.Reorder)
		}
	}
	if len(entries) == 0 || (sc.parent != nil && sc.parent.children == nil) {
		return
	}

	items := sc.items()
	present := make(map[*Item]bool, len(items))
	for _, item := range items {
		present[item] = true
	}
	inserted := make(map[*Item]bool)
	for _, e := range entries {
		if item := b.placed[e]; item != nil {
			inserted[item] = true
		}
	}

	out := make([]*Item, 0, len(items))
	used := make(map[*Item]bool, len(items))
	take := func(item *Item) {
		if item != nil && present[item] && !used[item] {
			out = append(out, item)
			used[item] = true
		}
	}

	if reorder {
		for _, e := range entries {
			item := b.targets[e]
			if item == nil {
				item = byID(items, e.Key)
			}
			take(item)
		}
		for _, item := range items {
			take(item)
		}
	} else {
		for _, item := range items {
			if !inserted[item] {
				take(item)
			}
		}
		for _, e := range entries {
			take(b.placed[e])
		}
	}
	sc.set(out)
}

func (b *builder) orderSections(doc *Document) {
	sections := b.tree.sections
	if doc.Reorder {
		ordered := make([]*Section, 0, len(sections))
		used := make(map[*Section]bool, len(sections))
		for _, sp := range doc.Sections {
			if s := b.tree.Section(sp.Key); s != nil && !used[s] {
				ordered = append(ordered, s)
				used[s] = true
			}
		}
		for _, s := range sections {
			if !used[s] {
				ordered = append(ordered, s)
			}
		}
		sections = ordered
	}

	out := make([]*Section, 0, len(sections))
	for _, s := range sections {
		if s.key == TopLevel {
			out = append(out, s)
		}
	}
	for _, s := range sections {
		if s.key == TopLevel || (b.custom[s] && len(s.items) == 0) {
			continue
		}
		out = append(out, s)
	}
	b.tree.sections = out
}

// create builds a new item from e. An entry without a display creates
// nothing.
func (b *builder) create(e *Entry) *Item {
	if e.Display == nil || *e.Display == "" {
		return nil
	}
	item := NewItem(*e.Display)
	b.override(item, e)
	return item
}

// override applies the display, url and icon settings of e to item. The id
// is left untouched.
func (b *builder) override(item *Item, e *Entry) {
	if e.Display != nil && *e.Display != "" {
		item.display = *e.Display
	}
	switch {
	case e.URL != nil:
		item.url = b.urls.Resolve(*e.URL)
	case e.Route != nil:
		item.url = b.urls.Route(*e.Route)
	}
	if e.Icon != nil {
		item.icon = *e.Icon
	}
}

func byID(items []*Item, id string) *Item {
	for _, item := range items {
		if item.id == id {
			return item
		}
	}
	return nil
}

func titleize(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}
