// SPDX-License-Identifier: MIT

package audit

import (
	"fmt"

	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/model"
	"github.com/esacteksab/gh-audit/yamlpath"
)

const excessivePermissionsIdent = "excessive-permissions"

// permissionSeverity ranks how dangerous `write` access to each scope
// is. Scopes not listed here fall back to medium.
var permissionSeverity = map[string]finding.Severity{
	"contents":        finding.SeverityHigh,
	"packages":        finding.SeverityHigh,
	"id-token":        finding.SeverityHigh,
	"actions":         finding.SeverityMedium,
	"deployments":     finding.SeverityMedium,
	"pull-requests":   finding.SeverityMedium,
	"pages":           finding.SeverityMedium,
	"security-events": finding.SeverityMedium,
	"checks":          finding.SeverityLow,
	"statuses":        finding.SeverityLow,
	"issues":          finding.SeverityLow,
	"discussions":     finding.SeverityLow,
}

// ExcessivePermissions walks workflow- and job-level `permissions:`
// blocks and flags scopes granted write access beyond what the job
// needs.
type ExcessivePermissions struct{}

func NewExcessivePermissions() *ExcessivePermissions { return &ExcessivePermissions{} }

func (a *ExcessivePermissions) Ident() string { return excessivePermissionsIdent }
func (a *ExcessivePermissions) Description() string {
	return "a GITHUB_TOKEN permission broader than the job needs"
}
func (a *ExcessivePermissions) URL() string {
	return "https://docs.github.com/actions/security-guides/automatic-token-authentication#permissions-for-the-github_token"
}

var (
	_ WorkflowAuditor    = (*ExcessivePermissions)(nil)
	_ NormalJobAuditor   = (*ExcessivePermissions)(nil)
	_ ReusableJobAuditor = (*ExcessivePermissions)(nil)
)

func (a *ExcessivePermissions) AuditWorkflow(in *Input, wf *model.Workflow) ([]finding.Finding, error) {
	pedantic := workflowPermissionsDowngraded(wf)
	loc, err := workflowPermissionsLocation(wf)
	if err != nil {
		return nil, err
	}
	return a.audit(in, wf.Permissions, loc, yamlpath.Root(), pedantic)
}

func (a *ExcessivePermissions) AuditNormalJob(in *Input, job *model.Job) ([]finding.Finding, error) {
	return a.audit(in, job.Permissions, finding.SymbolicLocation{
		InputKey:    in.Key,
		Route:       job.Route,
		FeatureKind: finding.FeatureKeyOnly,
		Kind:        finding.LocationPrimary,
	}, job.Route, false)
}

func (a *ExcessivePermissions) AuditReusableJob(in *Input, job *model.Job) ([]finding.Finding, error) {
	return a.AuditNormalJob(in, job)
}

// workflowPermissionsDowngraded reports whether a workflow-level
// finding should drop to pedantic persona: every job sets its own
// explicit permissions, the workflow has a single job, or the workflow
// is reusable with a single trigger.
func workflowPermissionsDowngraded(wf *model.Workflow) bool {
	if len(wf.Jobs) == 1 {
		return true
	}
	if wf.HasWorkflowCall() && wf.HasSingleTrigger() {
		return true
	}
	allExplicit := len(wf.Jobs) > 0
	for _, j := range wf.Jobs {
		if j.Permissions.Kind != model.PermExplicit && j.Permissions.Kind != model.PermEmpty {
			allExplicit = false
			break
		}
	}
	return allExplicit
}

// workflowPermissionsLocation anchors a workflow-level permissions
// finding: the `permissions:` key itself when present, or the `on:`
// key (always present in a valid workflow) as a stand-in anchor when
// permissions were never set at all.
func workflowPermissionsLocation(wf *model.Workflow) (finding.SymbolicLocation, error) {
	if wf.Permissions.Kind != model.PermDefault {
		return finding.SymbolicLocation{
			Route:       wf.Permissions.Route,
			FeatureKind: finding.FeatureNormal,
			Kind:        finding.LocationPrimary,
		}, nil
	}
	return finding.SymbolicLocation{
		Route:       yamlpath.Root().Child("on"),
		FeatureKind: finding.FeatureKeyOnly,
		Kind:        finding.LocationPrimary,
	}, nil
}

func (a *ExcessivePermissions) audit(in *Input, perms model.Permissions, loc finding.SymbolicLocation, containerRoute yamlpath.Route, pedantic bool) ([]finding.Finding, error) {
	loc.InputKey = in.Key
	persona := finding.PersonaRegular
	if pedantic {
		persona = finding.PersonaPedantic
	}

	switch perms.Kind {
	case model.PermDefault:
		return a.build(in, loc, persona, finding.SeverityMedium,
			"no permissions: block sets an explicit minimum, so the default (often broad) token is granted",
			finding.Fix{
				Title:       "add an empty permissions: block",
				Disposition: finding.DispositionManual,
				InputKey:    in.Key,
				Ops:         []finding.PatchOp{{Kind: finding.OpAdd, Route: containerRoute, Key: "permissions", Value: "{}"}},
			})

	case model.PermReadAll:
		return a.build(in, loc, persona, finding.SeverityMedium,
			"read-all grants read access to every scope, more than almost any job needs",
			finding.Fix{
				Title:       "replace read-all with an empty permissions: block",
				Disposition: finding.DispositionManual,
				InputKey:    in.Key,
				Ops:         []finding.PatchOp{{Kind: finding.OpReplace, Route: perms.Route, Value: "{}"}},
			})

	case model.PermWriteAll:
		return a.build(in, loc, persona, finding.SeverityHigh,
			"write-all grants write access to every scope",
			finding.Fix{
				Title:       "replace write-all with an empty permissions: block",
				Disposition: finding.DispositionManual,
				InputKey:    in.Key,
				Ops:         []finding.PatchOp{{Kind: finding.OpReplace, Route: perms.Route, Value: "{}"}},
			})

	case model.PermExplicit:
		var out []finding.Finding
		for scope, value := range perms.Explicit {
			if value != "write" {
				continue
			}
			sev, ok := permissionSeverity[scope]
			if !ok {
				sev = finding.SeverityMedium
			}
			scopeLoc := finding.SymbolicLocation{
				InputKey:    in.Key,
				Route:       perms.Route.Child(scope),
				FeatureKind: finding.FeatureNormal,
				Kind:        finding.LocationPrimary,
			}
			fs, err := a.build(in, scopeLoc, persona, sev,
				fmt.Sprintf("%s: write is broader than many workflows need", scope),
				finding.Fix{
					Title:       fmt.Sprintf("downgrade %s to read", scope),
					Disposition: finding.DispositionManual,
					InputKey:    in.Key,
					Ops:         []finding.PatchOp{{Kind: finding.OpReplace, Route: perms.Route.Child(scope), Value: "read"}},
				})
			if err != nil {
				return nil, err
			}
			out = append(out, fs...)
		}
		return out, nil
	}

	return nil, nil
}

func (a *ExcessivePermissions) build(in *Input, loc finding.SymbolicLocation, persona finding.Persona, sev finding.Severity, desc string, fix finding.Fix) ([]finding.Finding, error) {
	f, err := finding.NewBuilder(a.Ident(), desc).
		URL(a.URL()).
		Severity(sev).
		Confidence(finding.ConfidenceHigh).
		Persona(persona).
		Location(loc).
		Fix(fix).
		Build(in.Doc)
	if err != nil {
		return nil, err
	}
	return []finding.Finding{f}, nil
}
