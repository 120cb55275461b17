package preferences

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Bag is an ordered mapping of preference values. Keys are dotted paths
// into nested mappings, so "nav.content" addresses the content key below nav.
type Bag struct {
	root *yaml.Node
}

func NewBag() *Bag {
	return &Bag{root: newMapping()}
}

// ParseBag reads a YAML document. Empty and null documents yield an empty
// bag; any other non-mapping root is an error.
func ParseBag(data []byte) (*Bag, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse preferences: %w", err)
	}

	root := resolve(&doc)
	if root == nil || isNull(root) {
		return NewBag(), nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to parse preferences: root must be a mapping, got %s", root.ShortTag())
	}
	return &Bag{root: deepCopy(root)}, nil
}

// Node returns the root mapping. Callers must not modify it.
func (b *Bag) Node() *yaml.Node { return b.root }

func (b *Bag) Empty() bool { return len(b.root.Content) == 0 }

// Keys returns the top-level keys in document order.
func (b *Bag) Keys() []string {
	keys := make([]string, 0, len(b.root.Content)/2)
	for i := 0; i+1 < len(b.root.Content); i += 2 {
		keys = append(keys, b.root.Content[i].Value)
	}
	return keys
}

func (b *Bag) Get(key string) (*yaml.Node, bool) {
	node := b.root
	for _, part := range strings.Split(key, ".") {
		if node.Kind != yaml.MappingNode {
			return nil, false
		}
		idx := indexOf(node, part)
		if idx < 0 {
			return nil, false
		}
		node = node.Content[idx+1]
	}
	return node, true
}

// Decode decodes the value at key into v. It reports false when the key is
// not set.
func (b *Bag) Decode(key string, v any) (bool, error) {
	node, ok := b.Get(key)
	if !ok {
		return false, nil
	}
	if err := node.Decode(v); err != nil {
		return true, fmt.Errorf("failed to decode preference %q: %w", key, err)
	}
	return true, nil
}

// Set stores value at key, creating intermediate mappings and replacing
// intermediate values that are not mappings.
func (b *Bag) Set(key string, value any) error {
	if node, ok := value.(*yaml.Node); ok {
		b.SetNode(key, node)
		return nil
	}

	var node yaml.Node
	if err := node.Encode(value); err != nil {
		return fmt.Errorf("failed to encode preference %q: %w", key, err)
	}
	b.SetNode(key, &node)
	return nil
}

func (b *Bag) SetNode(key string, node *yaml.Node) {
	parts := strings.Split(key, ".")
	parent := b.root
	for _, part := range parts[:len(parts)-1] {
		idx := indexOf(parent, part)
		switch {
		case idx < 0:
			child := newMapping()
			parent.Content = append(parent.Content, keyNode(part), child)
			parent = child
		case parent.Content[idx+1].Kind != yaml.MappingNode:
			child := newMapping()
			parent.Content[idx+1] = child
			parent = child
		default:
			parent = parent.Content[idx+1]
		}
	}

	last := parts[len(parts)-1]
	if idx := indexOf(parent, last); idx >= 0 {
		parent.Content[idx+1] = node
		return
	}
	parent.Content = append(parent.Content, keyNode(last), node)
}

// Remove deletes key and reports whether it was set.
func (b *Bag) Remove(key string) bool {
	parts := strings.Split(key, ".")
	parent := b.root
	if len(parts) > 1 {
		node, ok := b.Get(strings.Join(parts[:len(parts)-1], "."))
		if !ok || node.Kind != yaml.MappingNode {
			return false
		}
		parent = node
	}

	idx := indexOf(parent, parts[len(parts)-1])
	if idx < 0 {
		return false
	}
	parent.Content = slices.Delete(parent.Content, idx, idx+2)
	return true
}

func (b *Bag) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(b.root)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preferences: %w", err)
	}
	return data, nil
}

func (b *Bag) Clone() *Bag {
	return &Bag{root: deepCopy(b.root)}
}

// leaves walks the bag depth-first yielding the dotted key of every value
// that is not a non-empty mapping.
func (b *Bag) leaves() iter.Seq2[string, *yaml.Node] {
	return func(yield func(string, *yaml.Node) bool) {
		walk(b.root, "", yield)
	}
}

func walk(mapping *yaml.Node, prefix string, yield func(string, *yaml.Node) bool) bool {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		if prefix != "" {
			key = prefix + "." + key
		}
		value := mapping.Content[i+1]
		if value.Kind == yaml.MappingNode && len(value.Content) > 0 {
			if !walk(value, key, yield) {
				return false
			}
			continue
		}
		if !yield(key, value) {
			return false
		}
	}
	return true
}

func indexOf(mapping *yaml.Node, key string) int {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return i
		}
	}
	return -1
}

func newMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func keyNode(key string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
}

func resolve(node *yaml.Node) *yaml.Node {
	for node != nil {
		switch {
		case node.Kind == yaml.DocumentNode && len(node.Content) > 0:
			node = node.Content[0]
		case node.Kind == yaml.DocumentNode || node.Kind == 0:
			return nil
		case node.Kind == yaml.AliasNode:
			node = node.Alias
		default:
			return node
		}
	}
	return nil
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}

// deepCopy copies node with aliases expanded, so the result can be merged
// and re-encoded without dangling anchors.
func deepCopy(node *yaml.Node) *yaml.Node {
	node = resolve(node)
	if node == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	out := *node
	out.Anchor = ""
	out.Alias = nil
	out.Content = make([]*yaml.Node, len(node.Content))
	for i, child := range node.Content {
		out.Content[i] = deepCopy(child)
	}
	return &out
}
