// SPDX-License-Identifier: MIT

// Package config loads the user-facing configuration: persona,
// severity, and confidence filtering, per-audit disablement, and the
// pinning/allow-deny policy the unpinned-uses and forbidden-uses
// audits consult. It is plain data plus lookup methods; nothing here
// touches the network or the filesystem beyond Load.
package config

import (
	"fmt"
	"os"

	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/model"
	"gopkg.in/yaml.v3"
)

// PinPolicy names how strictly unpinned-uses requires a `uses:`
// reference to be pinned.
type PinPolicy string

const (
	// PolicyRefPin is the default: any ref (branch, tag, or hash)
	// satisfies pinning; a non-hash ref is still noted, pedantically.
	PolicyRefPin PinPolicy = "ref-pin"
	// PolicyHashPin requires a full commit SHA.
	PolicyHashPin PinPolicy = "hash-pin"
	// PolicyAny disables the check entirely for matching patterns.
	PolicyAny PinPolicy = "any"
)

// PinRule pairs a Uses pattern with the policy that applies to it.
// Rules are consulted in order; the first match wins.
type PinRule struct {
	Pattern model.UsesPattern `yaml:"pattern"`
	Policy  PinPolicy         `yaml:"policy"`
}

// Disable scopes a disabled audit to a set of input keys, or to every
// input when Inputs is empty.
type Disable struct {
	Ident  string   `yaml:"id"`
	Inputs []string `yaml:"inputs"`
}

// Config is the full user-facing configuration surface.
type Config struct {
	// Persona is the lowest persona an audit's findings must carry to
	// survive filtering: auditor <= pedantic <= regular.
	Persona finding.Persona `yaml:"persona"`
	// MinSeverity and MinConfidence drop findings below either floor.
	MinSeverity   finding.Severity   `yaml:"min-severity"`
	MinConfidence finding.Confidence `yaml:"min-confidence"`

	Disabled []Disable `yaml:"disable"`

	// PinRules drives unpinned-uses; a uses: reference matching no
	// rule falls back to DefaultPinPolicy.
	PinRules         []PinRule `yaml:"pin-policy"`
	DefaultPinPolicy PinPolicy `yaml:"default-pin-policy"`

	// AllowedUses and DeniedUses drive forbidden-uses. Only one of the
	// two is meaningful at a time: a non-empty AllowedUses makes every
	// reference not matching it forbidden; otherwise a reference
	// matching DeniedUses is forbidden.
	AllowedUses []model.UsesPattern `yaml:"allow"`
	DeniedUses  []model.UsesPattern `yaml:"deny"`
}

// Default returns the configuration used when no config file is
// given: regular persona, no severity/confidence floor, ref-pin.
func Default() *Config {
	return &Config{
		Persona:          finding.PersonaRegular,
		MinSeverity:      finding.SeverityUnknown,
		MinConfidence:    finding.ConfidenceLow,
		DefaultPinPolicy: PolicyRefPin,
	}
}

// Load reads and parses a YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.DefaultPinPolicy == "" {
		cfg.DefaultPinPolicy = PolicyRefPin
	}
	return cfg, nil
}

// Disables reports whether ident is disabled for inputKey.
func (c *Config) Disables(ident, inputKey string) bool {
	if c == nil {
		return false
	}
	for _, d := range c.Disabled {
		if d.Ident != ident {
			continue
		}
		if len(d.Inputs) == 0 {
			return true
		}
		for _, in := range d.Inputs {
			if in == inputKey {
				return true
			}
		}
	}
	return false
}

// PolicyFor returns the pin policy that applies to u, the first
// matching rule or the configured default.
func (c *Config) PolicyFor(u model.Uses) PinPolicy {
	if c != nil {
		for _, r := range c.PinRules {
			if r.Pattern.Matches(u) {
				return r.Policy
			}
		}
		if c.DefaultPinPolicy != "" {
			return c.DefaultPinPolicy
		}
	}
	return PolicyRefPin
}

// Forbidden reports whether u is disallowed by the allow/deny lists.
func (c *Config) Forbidden(u model.Uses) bool {
	if c == nil {
		return false
	}
	if len(c.AllowedUses) > 0 {
		for _, p := range c.AllowedUses {
			if p.Matches(u) {
				return false
			}
		}
		return true
	}
	for _, p := range c.DeniedUses {
		if p.Matches(u) {
			return true
		}
	}
	return false
}

// Passes reports whether a finding with the given persona, severity,
// and confidence survives this config's filters.
func (c *Config) Passes(p finding.Persona, sev finding.Severity, conf finding.Confidence) bool {
	if c == nil {
		return true
	}
	if !p.AtLeast(c.Persona) {
		return false
	}
	if sev < c.MinSeverity {
		return false
	}
	if conf < c.MinConfidence {
		return false
	}
	return true
}
