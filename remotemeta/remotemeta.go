// SPDX-License-Identifier: MIT

// Package remotemeta defines the interface audits use to ask questions
// of a repository's remote history and advisory data; the
// githubclient package implements it against the real GitHub API.
// Keeping it as an interface lets the audit catalog and the driver stay
// untestable-network-free in unit tests: a fake implementation can
// stand in for githubclient.Remote.
package remotemeta

import "context"

// ComparisonStatus mirrors the GitHub compare-commits API's status
// field for two commits within the same repository.
type ComparisonStatus int

const (
	ComparisonUnknown ComparisonStatus = iota
	ComparisonIdentical
	ComparisonAhead
	ComparisonBehind
	ComparisonDiverged
)

// Advisory is the subset of a GitHub Security Advisory a finding needs
// to render: enough to cite and to map to a severity.
type Advisory struct {
	GHSAID     string
	Summary    string
	Severity   string // "low", "moderate", "high", "critical"
	URL        string
	Vulnerable bool // whether the queried (owner, repo, version) is in range
}

// Interface is the remote-metadata surface every remote-aware audit
// depends on. Every method is scoped to a single (owner, repo) and
// takes a context for cancellation, since each call is a network
// round-trip (cached by the underlying transport).
type Interface interface {
	// HasBranch reports whether repo has a branch named ref.
	HasBranch(ctx context.Context, owner, repo, ref string) (bool, error)
	// HasTag reports whether repo has a tag named ref.
	HasTag(ctx context.Context, owner, repo, ref string) (bool, error)
	// CommitForRef resolves a tag or branch name to the commit SHA it
	// currently points at.
	CommitForRef(ctx context.Context, owner, repo, ref string) (string, error)
	// LongestTagForCommit returns the name of the most specific
	// (longest) tag pointing directly at commit, if any.
	LongestTagForCommit(ctx context.Context, owner, repo, commit string) (string, bool, error)
	// CompareCommits reports how base relates to head within repo.
	CompareCommits(ctx context.Context, owner, repo, base, head string) (ComparisonStatus, error)
	// CommitBelongsToRepo reports whether commit exists in repo's
	// history at all (used by impostor-commit: a commit-pinned `uses:`
	// whose SHA does not belong to the named repository).
	CommitBelongsToRepo(ctx context.Context, owner, repo, commit string) (bool, error)
	// GHAAdvisories returns every known advisory affecting owner/repo
	// at the given ref (a tag, branch, or commit).
	GHAAdvisories(ctx context.Context, owner, repo, ref string) ([]Advisory, error)
}
