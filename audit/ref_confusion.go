// SPDX-License-Identifier: MIT

package audit

import (
	"context"

	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/model"
	"github.com/esacteksab/gh-audit/yamlpath"
)

const refConfusionIdent = "ref-confusion"

// RefConfusion flags a `uses:` reference whose ref is ambiguous between
// a branch and a tag of the same name: GitHub resolves the ambiguity
// in favor of the branch, which a repository
// owner can create (or force-push) after the fact to redirect every
// consumer pinned to that name without touching a single workflow file.
type RefConfusion struct{}

func NewRefConfusion() *RefConfusion { return &RefConfusion{} }

func (a *RefConfusion) Ident() string       { return refConfusionIdent }
func (a *RefConfusion) Description() string { return "a uses: ref that names both a branch and a tag" }
func (a *RefConfusion) URL() string {
	return "https://docs.github.com/actions/security-guides/security-hardening-for-github-actions#using-third-party-actions"
}

var (
	_ StepAuditor          = (*RefConfusion)(nil)
	_ CompositeStepAuditor = (*RefConfusion)(nil)
	_ ReusableJobAuditor   = (*RefConfusion)(nil)
)

func (a *RefConfusion) AuditStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	if step.Kind != model.StepUses || step.Uses == nil {
		return nil, nil
	}
	return a.check(in, *step.Uses, step.Route.Child("uses"))
}

func (a *RefConfusion) AuditCompositeStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	return a.AuditStep(in, step)
}

func (a *RefConfusion) AuditReusableJob(in *Input, job *model.Job) ([]finding.Finding, error) {
	if job.Uses == nil {
		return nil, nil
	}
	return a.check(in, *job.Uses, job.Route.Child("uses"))
}

func (a *RefConfusion) check(in *Input, u model.Uses, route yamlpath.Route) ([]finding.Finding, error) {
	if u.Kind != model.UsesRepo || !u.IsSymbolic() || in.Remote == nil {
		return nil, nil
	}

	ctx := context.Background()
	isBranch, err := in.Remote.HasBranch(ctx, u.Owner, u.Repo, u.Ref)
	if err != nil || !isBranch {
		return nil, nil
	}
	isTag, err := in.Remote.HasTag(ctx, u.Owner, u.Repo, u.Ref)
	if err != nil || !isTag {
		return nil, nil
	}

	fix, hasFix := refConfusionFix(ctx, in, u, route)

	b := finding.NewBuilder(a.Ident(), a.Description()).
		URL(a.URL()).
		Severity(finding.SeverityMedium).
		Confidence(finding.ConfidenceHigh).
		Location(finding.SymbolicLocation{
			InputKey:    in.Key,
			Route:       route,
			FeatureKind: finding.FeatureNormal,
			Kind:        finding.LocationPrimary,
		})
	if hasFix {
		b = b.Fix(fix)
	}
	f, err := b.Build(in.Doc)
	if err != nil {
		return nil, err
	}
	return []finding.Finding{f}, nil
}

// refConfusionFix pins the reference to the tag's commit, the
// interpretation GitHub's UI and documentation both steer authors
// toward when a tag name is the one actually intended.
func refConfusionFix(ctx context.Context, in *Input, u model.Uses, route yamlpath.Route) (finding.Fix, bool) {
	sha, err := in.Remote.CommitForRef(ctx, u.Owner, u.Repo, u.Ref)
	if err != nil || sha == "" {
		return finding.Fix{}, false
	}
	newRaw := u.Owner + "/" + u.Repo
	if u.Subpath != "" {
		newRaw += "/" + u.Subpath
	}
	newRaw += "@" + sha
	return finding.Fix{
		Title:       "pin to the tag's commit SHA",
		Disposition: finding.DispositionUnsafe,
		InputKey:    in.Key,
		Ops:         []finding.PatchOp{{Kind: finding.OpReplace, Route: route, Value: newRaw}},
	}, true
}
