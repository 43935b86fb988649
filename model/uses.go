// SPDX-License-Identifier: MIT

// Package model layers typed, location-bearing views (Workflow, Job,
// Step, Matrix, Action) over raw workflow/action YAML. It is built
// directly on yamlpath.Document rather than on yaml.v3's own generic
// Unmarshal, since every node the catalog reasons about needs a Route
// back into the source document.
package model

import (
	"strings"

	"github.com/esacteksab/gh-audit/expr"
)

// UsesKind discriminates the three shapes a `uses:` reference can take.
type UsesKind int

const (
	UsesRepo UsesKind = iota
	UsesLocal
	UsesDocker
)

// Uses is a parsed `uses:` value.
type Uses struct {
	Kind    UsesKind
	Raw     string
	Owner   string
	Repo    string
	Subpath string
	Ref     string
}

// ParseUses parses the raw string of a `uses:` entry.
func ParseUses(raw string) Uses {
	u := Uses{Raw: raw}
	switch {
	case strings.HasPrefix(raw, "./") || strings.HasPrefix(raw, "../"):
		u.Kind = UsesLocal
		u.Subpath = raw
		return u
	case strings.HasPrefix(raw, "docker://"):
		u.Kind = UsesDocker
		rest := strings.TrimPrefix(raw, "docker://")
		if at := strings.LastIndex(rest, "@"); at >= 0 {
			// Digest-pinned, e.g. docker://alpine@sha256:...
			u.Ref = rest[at+1:]
			rest = rest[:at]
		} else if colon := strings.LastIndex(rest, ":"); colon >= 0 {
			// Tag-pinned, e.g. docker://alpine:3.18
			u.Ref = rest[colon+1:]
			rest = rest[:colon]
		}
		u.Repo = rest
		return u
	}

	u.Kind = UsesRepo
	ownerRepoPath := raw
	if at := strings.LastIndex(raw, "@"); at >= 0 {
		u.Ref = raw[at+1:]
		ownerRepoPath = raw[:at]
	}
	parts := strings.SplitN(ownerRepoPath, "/", 3)
	if len(parts) >= 1 {
		u.Owner = parts[0]
	}
	if len(parts) >= 2 {
		u.Repo = parts[1]
	}
	if len(parts) == 3 {
		u.Subpath = parts[2]
	}
	return u
}

const shaLength = 40

func isFullHexSHA(s string) bool {
	if len(s) != shaLength {
		return false
	}
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')) {
			return false
		}
	}
	return true
}

// IsSymbolic reports whether u's ref is not a full 40-hex commit.
func (u Uses) IsSymbolic() bool {
	return u.Ref != "" && !isFullHexSHA(u.Ref)
}

// IsUnpinned reports whether u has no ref at all.
func (u Uses) IsUnpinned() bool {
	return u.Ref == ""
}

// UsesPattern matches against repository references. The zero value
// (all fields empty, AnyRepo false) matches nothing; use
// AnyRepoPattern() for the wildcard.
type UsesPattern struct {
	AnyRepo bool
	Owner   string
	Repo    string // empty means "any repo in Owner"
	Subpath string // empty means unconstrained
	Ref     string // empty means unconstrained
}

// AnyRepoPattern returns a pattern matching every repository reference.
func AnyRepoPattern() UsesPattern { return UsesPattern{AnyRepo: true} }

// Matches reports whether u satisfies p.
func (p UsesPattern) Matches(u Uses) bool {
	if u.Kind != UsesRepo {
		return false
	}
	if p.AnyRepo {
		return true
	}
	if !strings.EqualFold(p.Owner, u.Owner) {
		return false
	}
	if p.Repo != "" && !strings.EqualFold(p.Repo, u.Repo) {
		return false
	}
	if p.Subpath != "" && p.Subpath != u.Subpath {
		return false
	}
	if p.Ref != "" && p.Ref != u.Ref {
		return false
	}
	return true
}

// ContainsExpression reports whether s has at least one `${{ ... }}`
// template block, per the expr package's bracket-balanced scanner.
func ContainsExpression(s string) bool {
	return len(expr.ScanBlocks(s)) > 0
}
