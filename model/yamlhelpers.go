// SPDX-License-Identifier: MIT

package model

import "gopkg.in/yaml.v3"

// mapGet returns the value node paired with key in mapping node n, or
// nil when n is not a mapping or has no such key.
func mapGet(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// mapKeys returns every mapping key in n, in document order.
func mapKeys(n *yaml.Node) []string {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	var out []string
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, n.Content[i].Value)
	}
	return out
}

// scalarString returns n's value when n is a scalar, else "".
func scalarString(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}

// stringMap decodes a mapping of scalar->scalar into a Go map,
// tolerating a nil node (returns an empty, non-nil map).
func stringMap(n *yaml.Node) map[string]string {
	out := map[string]string{}
	if n == nil || n.Kind != yaml.MappingNode {
		return out
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		out[n.Content[i].Value] = scalarToText(n.Content[i+1])
	}
	return out
}

// scalarToText renders any node as the text a `with:`/`env:` consumer
// would see: scalars verbatim, everything else (sequences, mappings)
// as empty since GitHub Actions inputs are always strings in practice
// and a non-scalar here indicates an authoring mistake the schema
// validator (not this package) should catch.
func scalarToText(n *yaml.Node) string {
	if n == nil {
		return ""
	}
	if n.Kind == yaml.ScalarNode {
		return n.Value
	}
	return ""
}

func isTruthyYAML(s string) bool {
	switch s {
	case "true", "True", "TRUE":
		return true
	default:
		return false
	}
}
