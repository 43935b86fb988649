// SPDX-License-Identifier: MIT

package audit

import (
	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/model"
)

const secretsInheritIdent = "secrets-inherit"

// SecretsInherit flags reusable-workflow-call jobs that pass
// `secrets: inherit`: the called workflow receives every secret in
// scope, whether it needs them or not.
type SecretsInherit struct{}

func NewSecretsInherit() *SecretsInherit { return &SecretsInherit{} }

func (a *SecretsInherit) Ident() string       { return secretsInheritIdent }
func (a *SecretsInherit) Description() string { return "secrets: inherit passes every secret in scope to the called workflow" }
func (a *SecretsInherit) URL() string {
	return "https://docs.github.com/actions/sharing-automations/reusing-workflows#using-inputs-and-secrets-in-a-reusable-workflow"
}

var _ ReusableJobAuditor = (*SecretsInherit)(nil)

func (a *SecretsInherit) AuditReusableJob(in *Input, job *model.Job) ([]finding.Finding, error) {
	if !job.SecretsInherit {
		return nil, nil
	}
	f, err := finding.NewBuilder(a.Ident(), a.Description()).
		URL(a.URL()).
		Severity(finding.SeverityMedium).
		Confidence(finding.ConfidenceHigh).
		Persona(finding.PersonaPedantic).
		Location(finding.SymbolicLocation{
			InputKey:    in.Key,
			Route:       job.Route.Child("secrets"),
			FeatureKind: finding.FeatureNormal,
			Kind:        finding.LocationPrimary,
		}).
		Build(in.Doc)
	if err != nil {
		return nil, err
	}
	return []finding.Finding{f}, nil
}
