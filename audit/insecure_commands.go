// SPDX-License-Identifier: MIT

package audit

import (
	"strings"

	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/model"
	"github.com/esacteksab/gh-audit/yamlpath"
)

const insecureCommandsIdent = "insecure-commands"

// InsecureCommands flags any `env:` block that re-enables the legacy
// `::set-env::`/`::add-path::` workflow commands GitHub disabled by
// default after CVE-2020-15228.
type InsecureCommands struct{}

func NewInsecureCommands() *InsecureCommands { return &InsecureCommands{} }

func (a *InsecureCommands) Ident() string { return insecureCommandsIdent }
func (a *InsecureCommands) Description() string {
	return "ACTIONS_ALLOW_UNSECURE_COMMANDS re-enables workflow commands vulnerable to log injection"
}
func (a *InsecureCommands) URL() string {
	return "https://github.blog/changelog/2020-10-01-github-actions-deprecating-set-env-and-add-path-commands/"
}

var (
	_ WorkflowAuditor      = (*InsecureCommands)(nil)
	_ NormalJobAuditor     = (*InsecureCommands)(nil)
	_ StepAuditor          = (*InsecureCommands)(nil)
	_ CompositeStepAuditor = (*InsecureCommands)(nil)
)

const unsecureCommandsKey = "ACTIONS_ALLOW_UNSECURE_COMMANDS"

func (a *InsecureCommands) AuditWorkflow(in *Input, wf *model.Workflow) ([]finding.Finding, error) {
	return a.checkEnv(in, wf.Env, yamlpath.Root().Child("env"))
}

func (a *InsecureCommands) AuditNormalJob(in *Input, job *model.Job) ([]finding.Finding, error) {
	out, err := a.checkEnv(in, job.Env, job.Route.Child("env"))
	if err != nil {
		return nil, err
	}
	for _, step := range job.Steps {
		fs, err := a.AuditStep(in, step)
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
	}
	return out, nil
}

func (a *InsecureCommands) AuditStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	return a.checkEnv(in, step.Env, step.Route.Child("env"))
}

func (a *InsecureCommands) AuditCompositeStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	return a.AuditStep(in, step)
}

// checkEnv flags env when it sets ACTIONS_ALLOW_UNSECURE_COMMANDS to a
// truthy literal value, and emits an auditor-only finding (persona
// restricted, since the check could not be confirmed statically) when
// the key's value is itself an expression.
func (a *InsecureCommands) checkEnv(in *Input, env map[string]string, envRoute yamlpath.Route) ([]finding.Finding, error) {
	raw, ok := env[unsecureCommandsKey]
	if !ok {
		return nil, nil
	}
	keyRoute := envRoute.Child(unsecureCommandsKey)

	if model.ContainsExpression(raw) {
		f, err := finding.NewBuilder(a.Ident(), a.Description()).
			URL(a.URL()).
			Severity(finding.SeverityMedium).
			Confidence(finding.ConfidenceLow).
			Persona(finding.PersonaAuditor).
			Location(finding.SymbolicLocation{
				InputKey:    in.Key,
				Route:       keyRoute,
				FeatureKind: finding.FeatureNormal,
				Kind:        finding.LocationPrimary,
			}).
			Build(in.Doc)
		if err != nil {
			return nil, err
		}
		return []finding.Finding{f}, nil
	}

	if !strings.EqualFold(strings.TrimSpace(raw), "true") {
		return nil, nil
	}

	f, err := finding.NewBuilder(a.Ident(), a.Description()).
		URL(a.URL()).
		Severity(finding.SeverityHigh).
		Confidence(finding.ConfidenceHigh).
		Location(finding.SymbolicLocation{
			InputKey:    in.Key,
			Route:       keyRoute,
			FeatureKind: finding.FeatureKeyOnly,
			Kind:        finding.LocationPrimary,
		}).
		Fix(finding.Fix{
			Title:       "remove ACTIONS_ALLOW_UNSECURE_COMMANDS",
			Disposition: finding.DispositionSafe,
			InputKey:    in.Key,
			Ops:         []finding.PatchOp{{Kind: finding.OpRemove, Route: keyRoute}},
		}).
		Build(in.Doc)
	if err != nil {
		return nil, err
	}
	return []finding.Finding{f}, nil
}
