// SPDX-License-Identifier: MIT

package yamlpath

import (
	"sort"

	"gopkg.in/yaml.v3"
)

// anchorDef records one `&name` definition: the byte offset at which it
// starts and the node it labels.
type anchorDef struct {
	offset int
	node   *yaml.Node
}

// anchorMap indexes every anchor definition in a document by name.
// Duplicates are permitted; resolution for a given alias picks the
// most recent definition preceding that alias in byte order.
type anchorMap struct {
	byName map[string][]anchorDef
}

func buildAnchorMap(d *Document, root *yaml.Node) *anchorMap {
	m := &anchorMap{byName: make(map[string][]anchorDef)}
	var walk func(n *yaml.Node)
	walk = func(n *yaml.Node) {
		if n == nil {
			return
		}
		if n.Anchor != "" && n.Kind != yaml.AliasNode {
			off := d.Offset(n.Line, n.Column)
			m.byName[n.Anchor] = append(m.byName[n.Anchor], anchorDef{offset: off, node: n})
		}
		for _, c := range n.Content {
			walk(c)
		}
	}
	walk(root)
	for name, defs := range m.byName {
		sort.Slice(defs, func(i, j int) bool { return defs[i].offset < defs[j].offset })
		m.byName[name] = defs
	}
	return m
}

// resolve finds the anchor definition named name whose start byte is
// strictly less than beforePos: a greatest-lower-bound search over the
// ordered (start_byte -> target_node) entries for that name.
func (m *anchorMap) resolve(name string, beforePos int) (*yaml.Node, bool) {
	defs := m.byName[name]
	var best *anchorDef
	for i := range defs {
		if defs[i].offset < beforePos {
			best = &defs[i]
		} else {
			break
		}
	}
	if best == nil {
		return nil, false
	}
	return best.node, true
}

// ResolveAnchor exposes anchor resolution to callers outside this
// package. It is primarily useful to audits and tests that need to
// dereference an alias independently of a route descent.
func (d *Document) ResolveAnchor(name string, beforePos int) (*yaml.Node, bool) {
	return d.anchors.resolve(name, beforePos)
}
