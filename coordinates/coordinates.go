// SPDX-License-Identifier: MIT

// Package coordinates implements the "action coordinate" shared
// building block: matching a parsed `uses:` reference against
// known-action patterns and classifying how a step opts into a
// configurable behavior via its `with:` inputs.
package coordinates

import (
	"strings"

	"github.com/esacteksab/gh-audit/model"
)

// ValueType is the expected type of a control input.
type ValueType int

const (
	ValueBool ValueType = iota
	ValueString
)

// ControlKind distinguishes whether the presence of an input opts a
// step into, or out of, the coordinate's described behavior.
type ControlKind int

const (
	OptIn ControlKind = iota
	OptOut
)

// Control describes one `with:` input that toggles behavior.
type Control struct {
	Input   string
	Kind    ControlKind
	Type    ValueType
	Default string // the action's own default when the input is absent
}

// Policy is the usage-policy half of an action coordinate: zero or
// more controls. An action with no controls always exercises its
// described behavior whenever it runs.
type Policy struct {
	Controls []Control
}

// Coordinate is a (pattern, usage-policy) record pairing a `uses:`
// match against a description of how the action is controlled.
type Coordinate struct {
	Pattern model.UsesPattern
	Policy  Policy
}

// Usage classifies how a step exercises a Coordinate's behavior.
type Usage int

const (
	// None: the step does not use a matching action at all.
	None Usage = iota
	// Always: the action always exhibits the behavior (no controls).
	Always
	// DefaultActionBehaviour: a control exists but the step didn't set
	// it, and the action's own default exercises the behavior.
	DefaultActionBehaviour
	// DirectOptIn: the step set a literal control value that enables
	// the behavior.
	DirectOptIn
	// ConditionalOptIn: the control's value is itself an expression,
	// so whether the behavior triggers can't be decided statically.
	ConditionalOptIn
)

// Usage determines how step exercises c.
func (c Coordinate) Usage(step *model.Step) Usage {
	if step.Uses == nil || !c.Pattern.Matches(*step.Uses) {
		return None
	}
	if len(c.Policy.Controls) == 0 {
		return Always
	}
	for _, ctrl := range c.Policy.Controls {
		raw, present := step.With[ctrl.Input]
		if !present {
			if defaultEnables(ctrl) {
				return DefaultActionBehaviour
			}
			continue
		}
		if model.ContainsExpression(raw) {
			return ConditionalOptIn
		}
		if literalEnables(ctrl, raw) {
			return DirectOptIn
		}
	}
	return None
}

func defaultEnables(c Control) bool {
	return literalEnables(c, c.Default)
}

func literalEnables(c Control, raw string) bool {
	truthy := strings.EqualFold(strings.TrimSpace(raw), "true")
	switch c.Kind {
	case OptIn:
		if c.Type == ValueBool {
			return truthy
		}
		return strings.TrimSpace(raw) != ""
	case OptOut:
		if c.Type == ValueBool {
			return !truthy
		}
		return strings.TrimSpace(raw) == ""
	}
	return false
}

// KnownCachingActions is a small seed table of actions the
// cache-poisoning audit treats as cache-aware. A production build
// would load this from bundled static data; it is reproduced as a
// literal here because the dataset itself is out of core scope, but
// the catalog needs a concrete table to exercise the Coordinate
// machinery end to end.
var KnownCachingActions = []Coordinate{
	{
		Pattern: model.UsesPattern{Owner: "actions", Repo: "cache"},
		Policy:  Policy{},
	},
	{
		Pattern: model.UsesPattern{Owner: "actions", Repo: "setup-go"},
		Policy: Policy{Controls: []Control{
			{Input: "cache", Kind: OptOut, Type: ValueBool, Default: "true"},
		}},
	},
	{
		Pattern: model.UsesPattern{Owner: "actions", Repo: "setup-node"},
		Policy: Policy{Controls: []Control{
			{Input: "cache", Kind: OptIn, Type: ValueString, Default: ""},
		}},
	},
	{
		Pattern: model.UsesPattern{Owner: "actions", Repo: "setup-python"},
		Policy: Policy{Controls: []Control{
			{Input: "cache", Kind: OptIn, Type: ValueString, Default: ""},
		}},
	},
	{
		Pattern: model.UsesPattern{Owner: "Swatinem", Repo: "rust-cache"},
		Policy:  Policy{},
	},
}

// KnownPublisherActions seeds the cache-poisoning audit's "publisher
// job" heuristic: actions whose presence in a job signals that
// the job publishes a release artifact.
var KnownPublisherActions = []model.UsesPattern{
	{Owner: "softprops", Repo: "action-gh-release"},
	{Owner: "pypa", Repo: "gh-action-pypi-publish"},
	{Owner: "goreleaser", Repo: "goreleaser-action"},
}
