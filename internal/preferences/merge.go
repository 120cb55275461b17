package preferences

import (
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// NavKey holds the nav preferences document. Its children are never merged
// across layers.
const NavKey = "nav"

// Merger combines preference layers into the effective preferences.
type Merger struct {
	preserve []string
}

func NewMerger(preserve ...string) *Merger {
	return &Merger{preserve: slices.Clone(preserve)}
}

// PreventMergingChildren makes key behave as a single value: the strongest
// layer that sets it to something non-empty provides it whole.
func (m *Merger) PreventMergingChildren(key string) {
	if !slices.Contains(m.preserve, key) {
		m.preserve = append(m.preserve, key)
	}
}

// Merge combines layers ordered strongest first. Every dotted leaf takes the
// value of the strongest layer that sets it. Nil layers are skipped.
func (m *Merger) Merge(layers ...*Bag) *Bag {
	type leaf struct {
		key  string
		node *yaml.Node
	}

	var dotted []leaf
	seen := make(map[string]bool)
	add := func(key string, node *yaml.Node) {
		if seen[key] {
			return
		}
		seen[key] = true
		dotted = append(dotted, leaf{key: key, node: node})
	}

	for _, layer := range layers {
		if layer == nil {
			continue
		}
		layer = layer.Clone()

		var preserved []leaf
		for _, key := range m.preserve {
			node, ok := layer.Get(key)
			if !ok {
				continue
			}
			layer.Remove(key)
			if truthy(node) {
				preserved = append(preserved, leaf{key: key, node: node})
			}
		}

		for key, node := range layer.leaves() {
			add(key, node)
		}
		for _, p := range preserved {
			add(p.key, p.node)
		}
	}

	out := NewBag()
	for _, l := range dotted {
		out.SetNode(l.key, l.node)
	}
	return out
}

func truthy(node *yaml.Node) bool {
	node = resolve(node)
	if node == nil {
		return false
	}

	switch node.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		return len(node.Content) > 0
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!null":
			return false
		case "!!bool":
			v, err := strconv.ParseBool(node.Value)
			return err == nil && v
		case "!!int", "!!float":
			f, err := strconv.ParseFloat(node.Value, 64)
			return err != nil || f != 0
		default:
			return node.Value != "" && node.Value != "0"
		}
	}
	return false
}
