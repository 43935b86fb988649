// SPDX-License-Identifier: MIT

package audit

import (
	"context"

	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/model"
	"github.com/esacteksab/gh-audit/yamlpath"
)

const impostorCommitIdent = "impostor-commit"

// ImpostorCommit flags a commit-pinned `uses:` whose SHA does not
// belong to the named repository at all: a pin that looks maximally
// safe (a full 40-hex commit) can still resolve to a
// commit GitHub will happily serve from a repository the attacker
// controls, if the named owner/repo was renamed or deleted and the
// attacker now squats on that slug.
type ImpostorCommit struct{}

func NewImpostorCommit() *ImpostorCommit { return &ImpostorCommit{} }

func (a *ImpostorCommit) Ident() string { return impostorCommitIdent }
func (a *ImpostorCommit) Description() string {
	return "a commit-pinned uses: whose SHA does not belong to the named repository"
}
func (a *ImpostorCommit) URL() string {
	return "https://docs.github.com/actions/security-guides/security-hardening-for-github-actions#using-third-party-actions"
}

var (
	_ StepAuditor          = (*ImpostorCommit)(nil)
	_ CompositeStepAuditor = (*ImpostorCommit)(nil)
	_ ReusableJobAuditor   = (*ImpostorCommit)(nil)
)

func (a *ImpostorCommit) AuditStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	if step.Kind != model.StepUses || step.Uses == nil {
		return nil, nil
	}
	return a.check(in, *step.Uses, step.Route.Child("uses"))
}

func (a *ImpostorCommit) AuditCompositeStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	return a.AuditStep(in, step)
}

func (a *ImpostorCommit) AuditReusableJob(in *Input, job *model.Job) ([]finding.Finding, error) {
	if job.Uses == nil {
		return nil, nil
	}
	return a.check(in, *job.Uses, job.Route.Child("uses"))
}

func (a *ImpostorCommit) check(in *Input, u model.Uses, route yamlpath.Route) ([]finding.Finding, error) {
	if u.Kind != model.UsesRepo || u.IsSymbolic() || u.IsUnpinned() || in.Remote == nil {
		return nil, nil
	}

	belongs, err := in.Remote.CommitBelongsToRepo(context.Background(), u.Owner, u.Repo, u.Ref)
	if err != nil || belongs {
		return nil, nil
	}

	f, err := finding.NewBuilder(a.Ident(), a.Description()).
		URL(a.URL()).
		Severity(finding.SeverityHigh).
		Confidence(finding.ConfidenceHigh).
		Location(finding.SymbolicLocation{
			InputKey:    in.Key,
			Route:       route,
			FeatureKind: finding.FeatureNormal,
			Kind:        finding.LocationPrimary,
		}).
		Build(in.Doc)
	if err != nil {
		return nil, err
	}
	return []finding.Finding{f}, nil
}
