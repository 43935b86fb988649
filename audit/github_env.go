// SPDX-License-Identifier: MIT

package audit

import (
	"strings"

	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/model"
)

const githubEnvIdent = "github-env"

// GitHubEnv flags `run:` steps that write to $GITHUB_ENV in a workflow
// reachable by a dangerous trigger: a later step (or
// job, via outputs) can then read back a value an earlier, attacker-
// influenced step wrote, smuggling data across the trust boundary a
// single step's isolation would otherwise provide.
type GitHubEnv struct{}

func NewGitHubEnv() *GitHubEnv { return &GitHubEnv{} }

func (a *GitHubEnv) Ident() string { return githubEnvIdent }
func (a *GitHubEnv) Description() string {
	return "writing to $GITHUB_ENV from a step reachable by a dangerous trigger"
}
func (a *GitHubEnv) URL() string {
	return "https://docs.github.com/actions/security-guides/security-hardening-for-github-actions#restricting-permissions-for-tokens"
}

var _ StepAuditor = (*GitHubEnv)(nil)

func (a *GitHubEnv) AuditStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	if step.Kind != model.StepRun || step.Run == "" {
		return nil, nil
	}
	if step.Job == nil || step.Job.Workflow == nil {
		return nil, nil
	}
	wf := step.Job.Workflow

	dangerous := false
	for _, t := range dangerousTriggers {
		if wf.On.Has(t) {
			dangerous = true
			break
		}
	}
	if !hasAttackerControllableTrigger(wf.On.Names) && !dangerous {
		return nil, nil
	}

	if !writesGitHubEnv(step.Run) {
		return nil, nil
	}

	f, err := finding.NewBuilder(a.Ident(), a.Description()).
		URL(a.URL()).
		Severity(finding.SeverityMedium).
		Confidence(finding.ConfidenceMedium).
		Location(finding.SymbolicLocation{
			InputKey:    in.Key,
			Route:       step.Route.Child("run"),
			FeatureKind: finding.FeatureNormal,
			Kind:        finding.LocationPrimary,
		}).
		Build(in.Doc)
	if err != nil {
		return nil, err
	}
	return []finding.Finding{f}, nil
}

func writesGitHubEnv(script string) bool {
	return strings.Contains(script, "$GITHUB_ENV") || strings.Contains(script, "${GITHUB_ENV}")
}
