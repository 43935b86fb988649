// SPDX-License-Identifier: MIT

package model

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// TriggerSet is the parsed `on:` value: the set of event names a
// workflow responds to, plus the raw input config node per event
// (needed for `inputs:` unification under workflow_dispatch /
// workflow_call).
type TriggerSet struct {
	Names  map[string]bool
	Config map[string]*yaml.Node
	Route  Route
}

// ParseTriggers parses the `on:` node, which GitHub Actions allows in
// three shapes: a bare event name string, a list of event name
// strings, or a mapping of event name to per-event config (or null).
func ParseTriggers(n *yaml.Node, route Route) TriggerSet {
	t := TriggerSet{Names: map[string]bool{}, Config: map[string]*yaml.Node{}, Route: route}
	if n == nil {
		return t
	}
	switch n.Kind {
	case yaml.ScalarNode:
		t.Names[n.Value] = true
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if item.Kind == yaml.ScalarNode {
				t.Names[item.Value] = true
			}
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			name := n.Content[i].Value
			t.Names[name] = true
			t.Config[name] = n.Content[i+1]
		}
	}
	return t
}

// Has reports whether name is one of the workflow's triggers,
// case-sensitively (GitHub Actions event names are lowercase).
func (t TriggerSet) Has(name string) bool { return t.Names[name] }

// Count is the number of distinct trigger event names.
func (t TriggerSet) Count() int { return len(t.Names) }

// inputsCapabilityNames returns the declared `inputs:` names under a
// workflow_dispatch or workflow_call trigger config node.
func inputsCapabilityNames(cfg *yaml.Node) map[string]bool {
	out := map[string]bool{}
	if cfg == nil {
		return out
	}
	inputs := mapGet(cfg, "inputs")
	if inputs == nil || inputs.Kind != yaml.MappingNode {
		return out
	}
	for i := 0; i+1 < len(inputs.Content); i += 2 {
		out[inputs.Content[i].Value] = true
	}
	return out
}

// UnifiedInputNames returns every input name declared under either
// workflow_dispatch or workflow_call: when an input is declared on
// both, callers should treat it with the more permissive capability
// (the union here is a name set; severity unification happens in the
// audit that consumes it).
func (t TriggerSet) UnifiedInputNames() map[string]bool {
	out := map[string]bool{}
	for _, trigger := range []string{"workflow_dispatch", "workflow_call"} {
		for name := range inputsCapabilityNames(t.Config[trigger]) {
			out[name] = true
		}
	}
	return out
}

// Publishes reports whether the trigger set matches the cache-poisoning
// audit's "publisher trigger" heuristic: a release event, a tag push,
// or a push restricted to a release-named branch.
func (t TriggerSet) Publishes() bool {
	if t.Has("release") {
		return true
	}
	pushCfg, hasPush := t.Config["push"]
	if !t.Has("push") {
		return false
	}
	if !hasPush || pushCfg == nil {
		return false
	}
	if tagsNode := mapGet(pushCfg, "tags"); tagsNode != nil {
		return true
	}
	if branchesNode := mapGet(pushCfg, "branches"); branchesNode != nil {
		for _, b := range branchesNode.Content {
			lower := strings.ToLower(b.Value)
			if strings.Contains(lower, "release") {
				return true
			}
		}
	}
	return false
}
