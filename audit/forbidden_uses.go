// SPDX-License-Identifier: MIT

package audit

import (
	"fmt"

	"github.com/esacteksab/gh-audit/config"
	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/model"
	"github.com/esacteksab/gh-audit/yamlpath"
)

const forbiddenUsesIdent = "forbidden-uses"

// ForbiddenUses applies config's allow/deny uses-pattern lists to
// every `uses:` reference. A non-empty allow-list makes anything not
// matching it forbidden; otherwise a reference
// matching the deny-list is forbidden. Neither list is populated by
// Default(), so this audit is silent until a config file configures
// one.
type ForbiddenUses struct {
	Config *config.Config
}

func NewForbiddenUses(cfg *config.Config) *ForbiddenUses { return &ForbiddenUses{Config: cfg} }

func (a *ForbiddenUses) Ident() string       { return forbiddenUsesIdent }
func (a *ForbiddenUses) Description() string { return "a uses: reference forbidden by configuration" }
func (a *ForbiddenUses) URL() string {
	return "https://docs.github.com/actions/security-guides/security-hardening-for-github-actions#using-third-party-actions"
}

var (
	_ StepAuditor          = (*ForbiddenUses)(nil)
	_ CompositeStepAuditor = (*ForbiddenUses)(nil)
	_ ReusableJobAuditor   = (*ForbiddenUses)(nil)
)

func (a *ForbiddenUses) AuditStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	if step.Kind != model.StepUses || step.Uses == nil {
		return nil, nil
	}
	return a.check(in, *step.Uses, step.Route.Child("uses"))
}

func (a *ForbiddenUses) AuditCompositeStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	return a.AuditStep(in, step)
}

func (a *ForbiddenUses) AuditReusableJob(in *Input, job *model.Job) ([]finding.Finding, error) {
	if job.Uses == nil {
		return nil, nil
	}
	return a.check(in, *job.Uses, job.Route.Child("uses"))
}

func (a *ForbiddenUses) check(in *Input, u model.Uses, route yamlpath.Route) ([]finding.Finding, error) {
	if u.Kind != model.UsesRepo || !a.Config.Forbidden(u) {
		return nil, nil
	}

	f, err := finding.NewBuilder(a.Ident(), fmt.Sprintf("%s/%s is not permitted by this repository's configuration", u.Owner, u.Repo)).
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
}
