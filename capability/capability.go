// SPDX-License-Identifier: MIT

// Package capability classifies GitHub Actions expression contexts by
// how much an attacker can influence their value.
package capability

import "strings"

// Capability classifies a context pattern's attacker-influence shape.
type Capability int

const (
	// Fixed values are not attacker-influenceable and carry no
	// injectable structure.
	Fixed Capability = iota
	// Structured values are attacker-influenceable but bounded in
	// shape (e.g. a SHA, a numeric id).
	Structured
	// Arbitrary values are fully attacker-controllable strings.
	Arbitrary
)

func (c Capability) String() string {
	switch c {
	case Fixed:
		return "fixed"
	case Structured:
		return "structured"
	case Arbitrary:
		return "arbitrary"
	default:
		return "unknown"
	}
}

// Dictionary looks up the capability of a canonical dotted context
// pattern (as produced by expr.Context.AsPattern). A full dictionary
// compiles thousands of entries into a finite-state map; the table
// below is a representative seed covering the patterns the bundled
// audits reason about directly. A production build would load the
// full dictionary as bundled static data — only the lookup and
// classification logic below is core.
type Dictionary struct {
	entries map[string]Capability
	prefix  []prefixEntry
}

type prefixEntry struct {
	prefix string
	cap    Capability
}

// NewDictionary builds a Dictionary from exact-match entries and
// prefix entries (matched longest-prefix-first). Prefix entries let a
// small seed table cover whole context families, e.g. every
// `github.event.*` field without enumerating each one.
func NewDictionary(exact map[string]Capability, prefixes map[string]Capability) *Dictionary {
	d := &Dictionary{entries: exact}
	for p, c := range prefixes {
		d.prefix = append(d.prefix, prefixEntry{prefix: p, cap: c})
	}
	return d
}

// Lookup returns the capability for pattern and true if found, or
// (Fixed, false) when the pattern is unknown to the dictionary, in
// which case callers fall back to the per-audit heuristics used by
// template-injection.
func (d *Dictionary) Lookup(pattern string) (Capability, bool) {
	if d == nil {
		return Fixed, false
	}
	if c, ok := d.entries[pattern]; ok {
		return c, true
	}
	best := -1
	var bestCap Capability
	for _, pe := range d.prefix {
		if strings.HasPrefix(pattern, pe.prefix) && len(pe.prefix) > best {
			best = len(pe.prefix)
			bestCap = pe.cap
		}
	}
	if best >= 0 {
		return bestCap, true
	}
	return Fixed, false
}

// Seed returns a small, hand-maintained Dictionary covering the
// context families template-injection analysis leans on most
// heavily: attacker-controlled event payload fields, fixed
// repository/workflow metadata, and structured identifiers like SHAs
// and run numbers.
func Seed() *Dictionary {
	exact := map[string]Capability{
		"github.repository":     Fixed,
		"github.repository_id":  Fixed,
		"github.workflow":       Fixed,
		"github.job":            Fixed,
		"github.run_id":         Structured,
		"github.run_number":     Structured,
		"github.run_attempt":    Structured,
		"github.sha":            Structured,
		"github.ref":            Structured,
		"github.ref_name":       Structured,
		"github.actor":          Structured,
		"github.actor_id":       Structured,
		"github.base_ref":       Structured,
		"github.head_ref":       Arbitrary,
		"github.event_name":     Fixed,
		"github.event.repository.full_name": Fixed,
	}
	prefixes := map[string]Capability{
		"github.event.issue.title":         Arbitrary,
		"github.event.issue.body":          Arbitrary,
		"github.event.pull_request.title":  Arbitrary,
		"github.event.pull_request.body":   Arbitrary,
		"github.event.comment.body":        Arbitrary,
		"github.event.review.body":         Arbitrary,
		"github.event.head_commit.message": Arbitrary,
		"github.event.commits":             Arbitrary,
		"github.event.pages":               Arbitrary,
		"github.event.discussion":          Arbitrary,
		"secrets.":                         Structured,
	}
	return NewDictionary(exact, prefixes)
}
