// SPDX-License-Identifier: MIT

package model

import "gopkg.in/yaml.v3"

// PermKind discriminates the shapes a `permissions:` block can take.
type PermKind int

const (
	// PermDefault means the key was absent at this level.
	PermDefault PermKind = iota
	PermReadAll
	PermWriteAll
	PermExplicit
	// PermEmpty means an explicit empty mapping `permissions: {}`,
	// distinct from PermDefault (absent) per the excessive-permissions
	// audit's fix targets.
	PermEmpty
)

// Permissions is a parsed `permissions:` value at either workflow or
// job scope.
type Permissions struct {
	Kind     PermKind
	Explicit map[string]string // scope name -> "read" | "write" | "none"
	Route    Route
}

// ParsePermissions parses the `permissions:` value node n (nil when
// absent).
func ParsePermissions(n *yaml.Node, route Route) Permissions {
	if n == nil {
		return Permissions{Kind: PermDefault, Route: route}
	}
	if n.Kind == yaml.ScalarNode {
		switch n.Value {
		case "write-all":
			return Permissions{Kind: PermWriteAll, Route: route}
		case "read-all":
			return Permissions{Kind: PermReadAll, Route: route}
		}
	}
	if n.Kind == yaml.MappingNode {
		if len(n.Content) == 0 {
			return Permissions{Kind: PermEmpty, Route: route}
		}
		explicit := map[string]string{}
		for i := 0; i+1 < len(n.Content); i += 2 {
			explicit[n.Content[i].Value] = n.Content[i+1].Value
		}
		return Permissions{Kind: PermExplicit, Explicit: explicit, Route: route}
	}
	return Permissions{Kind: PermDefault, Route: route}
}
