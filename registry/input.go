// SPDX-License-Identifier: MIT

// Package registry implements the audit driver: it loads inputs
// (local files or remote slugs) into a deterministically
// ordered registry, runs the full audit catalog against each one, and
// gates the resulting findings through configuration and ignore
// comments before handing them back for rendering.
package registry

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/esacteksab/gh-audit/audit"
	"github.com/esacteksab/gh-audit/model"
	"github.com/esacteksab/gh-audit/remotemeta"
	"github.com/esacteksab/gh-audit/yamlpath"
)

// InputKey identifies a single input. It
// is either local (a canonical path plus an optional display prefix)
// or remote (owner, repo, optional ref, and path within the repo).
// Keys are totally ordered so registry iteration is deterministic.
type InputKey struct {
	// Local fields.
	Path   string
	Prefix string

	// Remote fields.
	Owner string
	Repo  string
	Ref   string

	Remote bool
}

// String renders the key the way findings display it: a repo-relative
// local path, or an owner/repo[@ref]/path slug for a remote input.
func (k InputKey) String() string {
	if !k.Remote {
		rel := k.Path
		if k.Prefix != "" {
			if r, err := filepath.Rel(k.Prefix, k.Path); err == nil {
				rel = r
			}
		}
		return rel
	}
	slug := k.Owner + "/" + k.Repo
	if k.Ref != "" {
		slug += "@" + k.Ref
	}
	return slug + "/" + k.Path
}

// Less imposes a total order over keys: local inputs sort
// before remote ones, then lexicographically within each kind.
func (k InputKey) Less(other InputKey) bool {
	if k.Remote != other.Remote {
		return !k.Remote
	}
	if !k.Remote {
		if k.Prefix != other.Prefix {
			return k.Prefix < other.Prefix
		}
		return k.Path < other.Path
	}
	if k.Owner != other.Owner {
		return k.Owner < other.Owner
	}
	if k.Repo != other.Repo {
		return k.Repo < other.Repo
	}
	if k.Ref != other.Ref {
		return k.Ref < other.Ref
	}
	return k.Path < other.Path
}

// Kind discriminates what shape of GitHub Actions file an input holds.
type Kind int

const (
	KindWorkflow Kind = iota
	KindAction
	KindUnknown
)

// DetectKind classifies a file by name: anything under
// a workflows directory (or simply ending .yml/.yaml outside an
// action context) is a workflow; action.yml/action.yaml is a
// composite/JS/Docker action definition.
func DetectKind(path string) Kind {
	base := strings.ToLower(filepath.Base(path))
	if base == "action.yml" || base == "action.yaml" {
		return KindAction
	}
	if strings.HasSuffix(base, ".yml") || strings.HasSuffix(base, ".yaml") {
		return KindWorkflow
	}
	return KindUnknown
}

// BuildInput parses source and wraps it as an audit.Input, dispatching
// on kind. strict additionally runs schema validation before
// accepting the input.
func BuildInput(key InputKey, source []byte, kind Kind, remote remotemeta.Interface, strict bool) (*audit.Input, error) {
	doc, err := yamlpath.New(source)
	if err != nil {
		return nil, fmt.Errorf("registry: %s: %w", key, err)
	}

	if strict {
		if err := ValidateStrict(kind, source); err != nil {
			return nil, fmt.Errorf("registry: %s: schema: %w", key, err)
		}
	}

	in := &audit.Input{Key: key.String(), Doc: doc, Remote: remote}
	switch kind {
	case KindAction:
		act, err := model.ParseAction(doc)
		if err != nil {
			return nil, fmt.Errorf("registry: %s: %w", key, err)
		}
		in.Action = act
	default:
		wf, err := model.ParseWorkflow(doc)
		if err != nil {
			return nil, fmt.Errorf("registry: %s: %w", key, err)
		}
		in.Workflow = wf
	}
	return in, nil
}
