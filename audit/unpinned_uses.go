// SPDX-License-Identifier: MIT

package audit

import (
	"context"

	"github.com/esacteksab/gh-audit/config"
	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/model"
	"github.com/esacteksab/gh-audit/yamlpath"
)

const unpinnedUsesIdent = "unpinned-uses"

// UnpinnedUses flags `uses:` references that are not pinned to a full
// commit hash. How strict the check is for a given reference is
// decided by config.PinPolicy: the default
// (ref-pin) treats any ref at all as acceptable, noting pedantically
// when it is not a hash; hash-pin demands the hash outright; any
// disables the check for matching patterns.
type UnpinnedUses struct {
	Config *config.Config
}

func NewUnpinnedUses(cfg *config.Config) *UnpinnedUses { return &UnpinnedUses{Config: cfg} }

func (a *UnpinnedUses) Ident() string { return unpinnedUsesIdent }
func (a *UnpinnedUses) Description() string {
	return "a uses: reference that is not pinned to a commit hash"
}
func (a *UnpinnedUses) URL() string {
	return "https://docs.github.com/actions/security-guides/security-hardening-for-github-actions#using-third-party-actions"
}

var (
	_ StepAuditor          = (*UnpinnedUses)(nil)
	_ CompositeStepAuditor = (*UnpinnedUses)(nil)
	_ ReusableJobAuditor   = (*UnpinnedUses)(nil)
)

func (a *UnpinnedUses) AuditStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	if step.Kind != model.StepUses || step.Uses == nil {
		return nil, nil
	}
	return a.check(in, *step.Uses, step.Route.Child("uses"))
}

func (a *UnpinnedUses) AuditCompositeStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	return a.AuditStep(in, step)
}

func (a *UnpinnedUses) AuditReusableJob(in *Input, job *model.Job) ([]finding.Finding, error) {
	if job.Uses == nil {
		return nil, nil
	}
	return a.check(in, *job.Uses, job.Route.Child("uses"))
}

func (a *UnpinnedUses) check(in *Input, u model.Uses, route yamlpath.Route) ([]finding.Finding, error) {
	if u.Kind != model.UsesRepo {
		return nil, nil
	}
	policy := a.Config.PolicyFor(u)
	if policy == config.PolicyAny {
		return nil, nil
	}

	switch {
	case u.IsUnpinned():
		f, err := finding.NewBuilder(a.Ident(), "action has no ref at all").
			URL(a.URL()).
			Severity(finding.SeverityMedium).
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

	case u.IsSymbolic():
		b := finding.NewBuilder(a.Ident(), "action is not pinned to a hash ref").URL(a.URL())
		switch policy {
		case config.PolicyHashPin:
			b = b.Severity(finding.SeverityMedium).Confidence(finding.ConfidenceHigh)
		default: // PolicyRefPin
			b = b.Severity(finding.SeverityLow).
				Confidence(finding.ConfidenceHigh).
				Persona(finding.PersonaPedantic)
		}
		b = b.Location(finding.SymbolicLocation{
			InputKey:    in.Key,
			Route:       route,
			FeatureKind: finding.FeatureNormal,
			Kind:        finding.LocationPrimary,
		})
		if fix, ok := hashPinFix(in, u, route); ok {
			b = b.Fix(fix)
		}
		f, err := b.Build(in.Doc)
		if err != nil {
			return nil, err
		}
		return []finding.Finding{f}, nil
	}
	return nil, nil
}

// hashPinFix resolves u's symbolic ref to its current commit and
// offers to rewrite `uses:` to the resolved hash, keeping the
// original ref in a trailing comment so the history of the pin stays
// legible in the diff.
func hashPinFix(in *Input, u model.Uses, route yamlpath.Route) (finding.Fix, bool) {
	if in.Remote == nil {
		return finding.Fix{}, false
	}
	sha, err := in.Remote.CommitForRef(context.Background(), u.Owner, u.Repo, u.Ref)
	if err != nil || sha == "" {
		return finding.Fix{}, false
	}
	newRaw := u.Owner + "/" + u.Repo
	if u.Subpath != "" {
		newRaw += "/" + u.Subpath
	}
	newRaw += "@" + sha + " # " + u.Ref
	return finding.Fix{
		Title:       "pin to the resolved commit SHA",
		Disposition: finding.DispositionUnsafe,
		InputKey:    in.Key,
		Ops:         []finding.PatchOp{{Kind: finding.OpReplace, Route: route, Value: newRaw}},
	}, true
}
