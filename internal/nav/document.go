package nav

import (
	"fmt"
	"iter"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"
)

// Action is a directive of the preferences grammar.
type Action string

const (
	ActionInherit Action = "@inherit"
	ActionAlias   Action = "@alias"
	ActionMove    Action = "@move"
	ActionRemove  Action = "@remove"
	ActionCreate  Action = "@create"
	ActionModify  Action = "@modify"
)

func (a Action) known() bool {
	switch a {
	case ActionInherit, ActionAlias, ActionMove, ActionRemove, ActionCreate, ActionModify:
		return true
	}
	return false
}

// EntryKind tells which shape an entry had in the preferences document.
type EntryKind int

const (
	// EntryShorthand is a bare action token such as '@alias'.
	EntryShorthand EntryKind = iota + 1
	// EntryURL is a bare url string, shorthand for creating a link whose
	// display is the entry key.
	EntryURL
	// EntryConfig is an object with optional action, display, url, route,
	// icon, reorder and children keys.
	EntryConfig
)

// Entry is one item-level instruction. Key is either an item id (for
// references) or a free-form key for a new item.
type Entry struct {
	Key      string
	Kind     EntryKind
	Action   Action
	Display  *string
	URL      *string
	Route    *string
	Icon     *string
	Reorder  bool
	Children []*Entry
}

// SectionPrefs holds the instructions for one section.
type SectionPrefs struct {
	Key     string
	Action  Action
	Display *string
	Reorder bool
	Items   []*Entry
}

// Document is a parsed nav preferences document. Order of sections and
// entries follows the source document.
type Document struct {
	Reorder  bool
	Sections []*SectionPrefs
}

// Empty reports whether the document carries no instructions at all.
func (d *Document) Empty() bool {
	return d == nil || (!d.Reorder && len(d.Sections) == 0)
}

var reservedSectionKeys = map[string]bool{
	"display": true,
	"reorder": true,
	"action":  true,
	"items":   true,
}

// ParseDocument decodes a YAML or JSON preferences document.
func ParseDocument(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse nav preferences: %w", err)
	}
	return DocumentFromNode(&root), nil
}

// DocumentFromNode normalizes a decoded document. Both the abbreviated form
// (section keys at the root) and the fully qualified form (under "sections",
// with items under "items") are accepted. Shapes it does not understand are
// skipped.
func DocumentFromNode(node *yaml.Node) *Document {
	doc := &Document{}
	root := unwrap(node)
	if root == nil || root.Kind != yaml.MappingNode {
		return doc
	}

	doc.Reorder = boolValue(lookup(root, "reorder"))

	sections := root
	if nested := unwrap(lookup(root, "sections")); nested != nil && nested.Kind == yaml.MappingNode {
		sections = nested
	}

	for key, value := range pairs(sections) {
		if sections == root && (key == "reorder" || key == "sections") {
			continue
		}
		if sp := parseSection(key, value); sp != nil {
			doc.Sections = append(doc.Sections, sp)
		}
	}
	return doc
}

func parseSection(key string, value *yaml.Node) *SectionPrefs {
	value = unwrap(value)
	if value == nil {
		return nil
	}

	if s, ok := stringValue(value); ok {
		return &SectionPrefs{Key: key, Action: Action(s)}
	}
	if value.Kind != yaml.MappingNode {
		return nil
	}

	sp := &SectionPrefs{
		Key:     key,
		Display: optionalString(lookup(value, "display")),
		Reorder: boolValue(lookup(value, "reorder")),
	}
	if action, ok := stringValue(unwrap(lookup(value, "action"))); ok {
		sp.Action = Action(action)
	}

	items := value
	if nested := unwrap(lookup(value, "items")); nested != nil && nested.Kind == yaml.MappingNode {
		items = nested
	}
	for itemKey, itemValue := range pairs(items) {
		if items == value && reservedSectionKeys[itemKey] {
			continue
		}
		if e := parseEntry(itemKey, itemValue, false); e != nil {
			sp.Items = append(sp.Items, e)
		}
	}
	return sp
}

// urlLike reports whether s is a path or carries a scheme.
func urlLike(s string) bool {
	if strings.HasPrefix(s, "/") {
		return true
	}
	u, err := url.Parse(s)
	return err == nil && u.Scheme != ""
}

func parseEntry(key string, value *yaml.Node, isChild bool) *Entry {
	value = unwrap(value)
	if value == nil {
		return nil
	}

	if s, ok := scalarValue(value); ok {
		// Inside children any bare string is a leaf link. Elsewhere only a
		// URL-like value creates one; other words are unknown actions.
		if strings.HasPrefix(s, "@") || (!isChild && !urlLike(s)) {
			return &Entry{Key: key, Kind: EntryShorthand, Action: Action(s)}
		}
		display, link := key, s
		return &Entry{Key: key, Kind: EntryURL, Action: ActionCreate, Display: &display, URL: &link}
	}
	if value.Kind != yaml.MappingNode {
		return nil
	}

	e := &Entry{
		Key:     key,
		Kind:    EntryConfig,
		Display: optionalString(lookup(value, "display")),
		URL:     optionalString(lookup(value, "url")),
		Route:   optionalString(lookup(value, "route")),
		Icon:    optionalString(lookup(value, "icon")),
		Reorder: boolValue(lookup(value, "reorder")),
	}
	if action, ok := stringValue(unwrap(lookup(value, "action"))); ok {
		e.Action = Action(action)
	}

	// Children of children are not supported by the grammar.
	if isChild {
		return e
	}
	if children := unwrap(lookup(value, "children")); children != nil && children.Kind == yaml.MappingNode {
		for childKey, childValue := range pairs(children) {
			if child := parseEntry(childKey, childValue, true); child != nil {
				e.Children = append(e.Children, child)
			}
		}
	}
	return e
}

func unwrap(node *yaml.Node) *yaml.Node {
	for node != nil {
		switch node.Kind {
		case yaml.DocumentNode:
			if len(node.Content) == 0 {
				return nil
			}
			node = node.Content[0]
		case yaml.AliasNode:
			node = node.Alias
		default:
			return node
		}
	}
	return nil
}

// pairs yields the key/value pairs of a mapping node in document order.
func pairs(mapping *yaml.Node) iter.Seq2[string, *yaml.Node] {
	return func(yield func(string, *yaml.Node) bool) {
		if mapping == nil || mapping.Kind != yaml.MappingNode {
			return
		}
		for i := 0; i+1 < len(mapping.Content); i += 2 {
			if !yield(mapping.Content[i].Value, mapping.Content[i+1]) {
				return
			}
		}
	}
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for k, v := range pairs(mapping) {
		if k == key {
			return v
		}
	}
	return nil
}

func scalarValue(node *yaml.Node) (string, bool) {
	if node == nil || node.Kind != yaml.ScalarNode || node.ShortTag() == "!!null" {
		return "", false
	}
	return node.Value, true
}

func stringValue(node *yaml.Node) (string, bool) {
	if node == nil || node.Kind != yaml.ScalarNode || node.ShortTag() != "!!str" {
		return "", false
	}
	return node.Value, true
}

func optionalString(node *yaml.Node) *string {
	s, ok := scalarValue(unwrap(node))
	if !ok {
		return nil
	}
	return &s
}

func boolValue(node *yaml.Node) bool {
	node = unwrap(node)
	if node == nil || node.Kind != yaml.ScalarNode {
		return false
	}
	var b bool
	if err := node.Decode(&b); err != nil {
		return false
	}
	return b
}
