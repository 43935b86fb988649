// SPDX-License-Identifier: MIT

package audit

import (
	"context"
	"fmt"

	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/model"
	"github.com/esacteksab/gh-audit/remotemeta"
	"github.com/esacteksab/gh-audit/yamlpath"
)

const knownVulnerableActionsIdent = "known-vulnerable-actions"

// KnownVulnerableActions asks the remote-metadata interface whether
// the referenced (owner, repo, version) is covered by a GitHub
// Security Advisory. It is the one audit that exercises
// remotemeta.Interface.GHAAdvisories; severity comes straight from the
// advisory's own rating.
type KnownVulnerableActions struct{}

func NewKnownVulnerableActions() *KnownVulnerableActions { return &KnownVulnerableActions{} }

func (a *KnownVulnerableActions) Ident() string { return knownVulnerableActionsIdent }
func (a *KnownVulnerableActions) Description() string {
	return "a uses: reference covered by a known security advisory"
}
func (a *KnownVulnerableActions) URL() string {
	return "https://github.com/advisories?query=type%3Areviewed+ecosystem%3Aactions"
}

var (
	_ StepAuditor          = (*KnownVulnerableActions)(nil)
	_ CompositeStepAuditor = (*KnownVulnerableActions)(nil)
	_ ReusableJobAuditor   = (*KnownVulnerableActions)(nil)
)

func (a *KnownVulnerableActions) AuditStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	if step.Kind != model.StepUses || step.Uses == nil {
		return nil, nil
	}
	return a.check(in, *step.Uses, step.Route.Child("uses"))
}

func (a *KnownVulnerableActions) AuditCompositeStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	return a.AuditStep(in, step)
}

func (a *KnownVulnerableActions) AuditReusableJob(in *Input, job *model.Job) ([]finding.Finding, error) {
	if job.Uses == nil {
		return nil, nil
	}
	return a.check(in, *job.Uses, job.Route.Child("uses"))
}

func (a *KnownVulnerableActions) check(in *Input, u model.Uses, route yamlpath.Route) ([]finding.Finding, error) {
	if u.Kind != model.UsesRepo || u.Ref == "" || in.Remote == nil {
		return nil, nil
	}

	advisories, err := in.Remote.GHAAdvisories(context.Background(), u.Owner, u.Repo, u.Ref)
	if err != nil {
		// A transient remote error is not an audit failure: the
		// finding is simply skipped.
		return nil, nil
	}

	var out []finding.Finding
	for _, adv := range advisories {
		if !adv.Vulnerable {
			continue
		}
		f, err := finding.NewBuilder(a.Ident(), fmt.Sprintf("%s is affected by %s: %s", u.Owner+"/"+u.Repo, adv.GHSAID, adv.Summary)).
			URL(advisoryURL(a.URL(), adv)).
			Severity(advisorySeverity(adv.Severity)).
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
		out = append(out, f)
	}
	return out, nil
}

func advisoryURL(fallback string, adv remotemeta.Advisory) string {
	if adv.URL != "" {
		return adv.URL
	}
	return fallback
}

// advisorySeverity maps a GHSA severity rating onto the finding
// severity scale.
func advisorySeverity(sev string) finding.Severity {
	switch sev {
	case "critical", "high":
		return finding.SeverityHigh
	case "moderate":
		return finding.SeverityMedium
	case "low":
		return finding.SeverityLow
	default:
		return finding.SeverityMedium
	}
}
