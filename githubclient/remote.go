// SPDX-License-Identifier: MIT

package githubclient

import (
	"context"
	"fmt"

	"github.com/google/go-github/v80/github"

	"github.com/esacteksab/gh-audit/remotemeta"
)

// Remote implements remotemeta.Interface against the real GitHub API,
// using the same cached *github.Client NewClient builds. It is the
// only part of the catalog that reaches the network; every audit talks
// to it through the interface, not this type.
type Remote struct {
	Client *github.Client
}

// NewRemote wraps an already-constructed client.
func NewRemote(client *github.Client) *Remote {
	return &Remote{Client: client}
}

var _ remotemeta.Interface = (*Remote)(nil)

// HasBranch reports whether owner/repo has a branch named ref.
func (r *Remote) HasBranch(ctx context.Context, owner, repo, ref string) (bool, error) {
	_, resp, err := r.Client.Git.GetRef(ctx, owner, repo, "refs/heads/"+ref)
	if err != nil {
		if isNotFoundError(err, resp) {
			return false, nil
		}
		return false, fmt.Errorf("remotemeta: checking branch %q in %s/%s: %w", ref, owner, repo, err)
	}
	return true, nil
}

// HasTag reports whether owner/repo has a tag named ref.
func (r *Remote) HasTag(ctx context.Context, owner, repo, ref string) (bool, error) {
	_, resp, err := r.Client.Git.GetRef(ctx, owner, repo, "refs/tags/"+ref)
	if err != nil {
		if isNotFoundError(err, resp) {
			return false, nil
		}
		return false, fmt.Errorf("remotemeta: checking tag %q in %s/%s: %w", ref, owner, repo, err)
	}
	return true, nil
}

// CommitForRef resolves ref to the commit SHA it currently points at,
// trying ref as an already-resolved commit SHA first, then as a tag,
// then as a branch.
func (r *Remote) CommitForRef(ctx context.Context, owner, repo, ref string) (string, error) {
	sha, err := ResolveRefToSHA(ctx, r.Client, owner, repo, ref)
	if err != nil {
		return "", fmt.Errorf("remotemeta: %w", err)
	}
	return sha, nil
}

// LongestTagForCommit lists the repository's tags and returns the
// longest (most specific) one whose commit matches commit exactly,
// e.g. preferring "v4.1.2" over "v4" when both point at the same SHA.
func (r *Remote) LongestTagForCommit(ctx context.Context, owner, repo, commit string) (string, bool, error) {
	opt := &github.ListOptions{PerPage: 100} //nolint:mnd
	var best string
	for {
		tags, resp, err := r.Client.Repositories.ListTags(ctx, owner, repo, opt)
		if err != nil {
			return "", false, fmt.Errorf("remotemeta: listing tags for %s/%s: %w", owner, repo, err)
		}
		for _, t := range tags {
			if t.Commit == nil || t.Commit.SHA == nil || t.Name == nil {
				continue
			}
			if *t.Commit.SHA != commit {
				continue
			}
			if len(*t.Name) > len(best) {
				best = *t.Name
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return best, best != "", nil
}

// CompareCommits reports how base relates to head within repo.
func (r *Remote) CompareCommits(ctx context.Context, owner, repo, base, head string) (remotemeta.ComparisonStatus, error) {
	cmp, _, err := r.Client.Repositories.CompareCommits(ctx, owner, repo, base, head, nil)
	if err != nil {
		return remotemeta.ComparisonUnknown, fmt.Errorf("remotemeta: comparing %s...%s in %s/%s: %w", base, head, owner, repo, err)
	}
	if cmp.Status == nil {
		return remotemeta.ComparisonUnknown, nil
	}
	switch *cmp.Status {
	case "identical":
		return remotemeta.ComparisonIdentical, nil
	case "ahead":
		return remotemeta.ComparisonAhead, nil
	case "behind":
		return remotemeta.ComparisonBehind, nil
	case "diverged":
		return remotemeta.ComparisonDiverged, nil
	default:
		return remotemeta.ComparisonUnknown, nil
	}
}

// CommitBelongsToRepo confirms commit exists in repo's history, per
// the impostor-commit audit: a commit-pinned `uses:` reference whose
// SHA is real somewhere on GitHub but was never part of this
// repository is a sign of a confused or spoofed coordinate.
func (r *Remote) CommitBelongsToRepo(ctx context.Context, owner, repo, commit string) (bool, error) {
	_, resp, err := r.Client.Git.GetCommit(ctx, owner, repo, commit)
	if err != nil {
		if isNotFoundError(err, resp) {
			return false, nil
		}
		return false, fmt.Errorf("remotemeta: checking commit %q in %s/%s: %w", commit, owner, repo, err)
	}
	return true, nil
}

// GHAAdvisories queries GitHub's global security advisory database for
// advisories affecting owner/repo, and reports which ones cover ref.
func (r *Remote) GHAAdvisories(ctx context.Context, owner, repo, ref string) ([]remotemeta.Advisory, error) {
	ecosystem := "actions"
	opts := &github.ListGlobalSecurityAdvisoriesOptions{
		Ecosystem: &ecosystem,
		Affects:   github.Ptr(fmt.Sprintf("%s/%s", owner, repo)),
	}
	advisories, _, err := r.Client.SecurityAdvisories.ListGlobalSecurityAdvisories(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("remotemeta: listing advisories for %s/%s: %w", owner, repo, err)
	}

	out := make([]remotemeta.Advisory, 0, len(advisories))
	for _, a := range advisories {
		adv := remotemeta.Advisory{Vulnerable: true}
		if a.GHSAID != nil {
			adv.GHSAID = *a.GHSAID
		}
		if a.Summary != nil {
			adv.Summary = *a.Summary
		}
		if a.Severity != nil {
			adv.Severity = *a.Severity
		}
		if a.HTMLURL != nil {
			adv.URL = *a.HTMLURL
		}
		out = append(out, adv)
	}
	return out, nil
}
