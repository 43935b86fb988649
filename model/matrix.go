// SPDX-License-Identifier: MIT

package model

import "gopkg.in/yaml.v3"

// MatrixPair is one (dotted.path, value) member of a Matrix expansion.
type MatrixPair struct {
	Path  string
	Value string
}

// Matrix is a view over a job's `strategy.matrix`, expanded into its
// cross-product of dimension values.
type Matrix struct {
	// Opaque is true when any matrix dimension is itself an expression
	// (e.g. `matrix: ${{ fromJSON(needs.plan.outputs.matrix) }}`), in
	// which case the matrix is not expanded at all.
	Opaque bool
	Pairs  []MatrixPair
}

// BuildMatrix parses a `strategy.matrix` value node.
func BuildMatrix(n *yaml.Node) *Matrix {
	if n == nil {
		return nil
	}
	if n.Kind != yaml.MappingNode || nodeContainsExpression(n) {
		return &Matrix{Opaque: true}
	}

	var dimKeys []string
	dims := map[string][]*yaml.Node{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if key == "include" || key == "exclude" {
			continue
		}
		dimKeys = append(dimKeys, key)
		dims[key] = dimensionValues(n.Content[i+1])
	}

	combos := cartesian(dimKeys, dims)
	combos = applyExcludes(combos, mapGet(n, "exclude"))
	combos = append(combos, includeCombos(mapGet(n, "include"))...)

	m := &Matrix{}
	for _, combo := range combos {
		for _, key := range comboOrder(combo) {
			m.Pairs = append(m.Pairs, flattenDimension("matrix."+key, combo[key])...)
		}
	}
	return m
}

// dimensionValues returns the candidate value nodes for one matrix
// dimension: the node itself when scalar, or its elements when a
// sequence.
func dimensionValues(n *yaml.Node) []*yaml.Node {
	if n == nil {
		return nil
	}
	if n.Kind == yaml.SequenceNode {
		return n.Content
	}
	return []*yaml.Node{n}
}

type combo map[string]*yaml.Node

func comboOrder(c combo) []string {
	// Stable order is not load-bearing for correctness, only for
	// deterministic output; sort by insertion is unnecessary since Go
	// map iteration is what it is — callers only need *a* consistent
	// key set per combo, not global ordering across combos.
	var keys []string
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

func cartesian(keys []string, dims map[string][]*yaml.Node) []combo {
	combos := []combo{{}}
	for _, key := range keys {
		values := dims[key]
		if len(values) == 0 {
			continue
		}
		var next []combo
		for _, c := range combos {
			for _, v := range values {
				nc := combo{}
				for k, vv := range c {
					nc[k] = vv
				}
				nc[key] = v
				next = append(next, nc)
			}
		}
		combos = next
	}
	return combos
}

func applyExcludes(combos []combo, excludeNode *yaml.Node) []combo {
	if excludeNode == nil || excludeNode.Kind != yaml.SequenceNode {
		return combos
	}
	var rows []map[string]string
	for _, row := range excludeNode.Content {
		rows = append(rows, stringMap(row))
	}
	var out []combo
	for _, c := range combos {
		excluded := false
		for _, row := range rows {
			if comboMatchesRow(c, row) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, c)
		}
	}
	return out
}

func comboMatchesRow(c combo, row map[string]string) bool {
	if len(row) == 0 {
		return false
	}
	for k, v := range row {
		node, ok := c[k]
		if !ok || node.Kind != yaml.ScalarNode || node.Value != v {
			return false
		}
	}
	return true
}

func includeCombos(includeNode *yaml.Node) []combo {
	if includeNode == nil || includeNode.Kind != yaml.SequenceNode {
		return nil
	}
	var out []combo
	for _, row := range includeNode.Content {
		if row.Kind != yaml.MappingNode {
			continue
		}
		c := combo{}
		for i := 0; i+1 < len(row.Content); i += 2 {
			c[row.Content[i].Value] = row.Content[i+1]
		}
		out = append(out, c)
	}
	return out
}

// flattenDimension recurses into a literal value rooted at path:
// scalars become a single pair; arrays become one pair per element;
// objects become dotted child paths, applied to one already-selected
// dimension value.
func flattenDimension(path string, n *yaml.Node) []MatrixPair {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return []MatrixPair{{Path: path, Value: n.Value}}
	case yaml.SequenceNode:
		var out []MatrixPair
		for _, item := range n.Content {
			out = append(out, flattenDimension(path, item)...)
		}
		return out
	case yaml.MappingNode:
		var out []MatrixPair
		for i := 0; i+1 < len(n.Content); i += 2 {
			out = append(out, flattenDimension(path+"."+n.Content[i].Value, n.Content[i+1])...)
		}
		return out
	default:
		return nil
	}
}

func nodeContainsExpression(n *yaml.Node) bool {
	if n == nil {
		return false
	}
	if n.Kind == yaml.ScalarNode {
		return ContainsExpression(n.Value)
	}
	for _, c := range n.Content {
		if nodeContainsExpression(c) {
			return true
		}
	}
	return false
}

// ExpandsToStaticValues reports whether every value assigned to the
// dotted path (e.g. "matrix.os") across the whole expansion is free of
// `${{ ... }}` sub-expressions.
func (m *Matrix) ExpandsToStaticValues(path string) bool {
	if m == nil || m.Opaque {
		return false
	}
	for _, p := range m.Pairs {
		if p.Path == path && ContainsExpression(p.Value) {
			return false
		}
	}
	return true
}
