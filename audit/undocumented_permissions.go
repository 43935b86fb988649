// SPDX-License-Identifier: MIT

package audit

import (
	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/model"
	"github.com/esacteksab/gh-audit/yamlpath"
)

const undocumentedPermissionsIdent = "undocumented-permissions"

// UndocumentedPermissions flags a job or workflow that accepts the
// broad default token (no permissions: block, or an explicit empty
// one) with no nearby comment explaining why that default is
// acceptable here. Unlike excessive-permissions, this is purely about
// missing rationale, not about the grant itself, so it reports at
// auditor persona only: a human has to read the comment to judge
// whether it's a real justification.
type UndocumentedPermissions struct{}

func NewUndocumentedPermissions() *UndocumentedPermissions { return &UndocumentedPermissions{} }

func (a *UndocumentedPermissions) Ident() string { return undocumentedPermissionsIdent }
func (a *UndocumentedPermissions) Description() string {
	return "default GITHUB_TOKEN permissions with no comment explaining why"
}
func (a *UndocumentedPermissions) URL() string {
	return "https://docs.github.com/actions/security-guides/automatic-token-authentication#permissions-for-the-github_token"
}

var (
	_ WorkflowAuditor    = (*UndocumentedPermissions)(nil)
	_ NormalJobAuditor   = (*UndocumentedPermissions)(nil)
	_ ReusableJobAuditor = (*UndocumentedPermissions)(nil)
)

func (a *UndocumentedPermissions) AuditWorkflow(in *Input, wf *model.Workflow) ([]finding.Finding, error) {
	return a.check(in, wf.Permissions, yamlpath.Root().Child("on"))
}

func (a *UndocumentedPermissions) AuditNormalJob(in *Input, job *model.Job) ([]finding.Finding, error) {
	return a.check(in, job.Permissions, job.Route)
}

func (a *UndocumentedPermissions) AuditReusableJob(in *Input, job *model.Job) ([]finding.Finding, error) {
	return a.AuditNormalJob(in, job)
}

func (a *UndocumentedPermissions) check(in *Input, perms model.Permissions, anchor yamlpath.Route) ([]finding.Finding, error) {
	if perms.Kind != model.PermDefault && perms.Kind != model.PermEmpty {
		return nil, nil
	}

	route := anchor
	if perms.Kind == model.PermEmpty {
		route = perms.Route
	}

	feat, err := in.Doc.QueryPretty(route)
	if err != nil {
		return nil, err
	}
	if len(in.Doc.FeatureComments(feat)) > 0 {
		return nil, nil
	}

	f, err := finding.NewBuilder(a.Ident(), a.Description()).
		URL(a.URL()).
		Severity(finding.SeverityInformational).
		Confidence(finding.ConfidenceLow).
		Persona(finding.PersonaAuditor).
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
