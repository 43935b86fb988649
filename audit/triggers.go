// SPDX-License-Identifier: MIT

package audit

import (
	"fmt"

	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/model"
)

const dangerousTriggersIdent = "dangerous-triggers"

// DangerousTriggers flags two `on:` triggers by name:
// pull_request_target runs with write-scoped secrets against
// checked-out, attacker-supplied code, and workflow_run can re-run a
// modified workflow definition with the default branch's privileges.
type DangerousTriggers struct{}

func NewDangerousTriggers() *DangerousTriggers { return &DangerousTriggers{} }

func (a *DangerousTriggers) Ident() string       { return dangerousTriggersIdent }
func (a *DangerousTriggers) Description() string { return "a trigger that is easy to misuse into running attacker-influenced code with elevated privileges" }
func (a *DangerousTriggers) URL() string {
	return "https://docs.github.com/actions/security-guides/security-hardening-for-github-actions#understanding-the-risk-of-pull_request_target-and-workflow_run"
}

var _ WorkflowAuditor = (*DangerousTriggers)(nil)

func (a *DangerousTriggers) AuditWorkflow(in *Input, wf *model.Workflow) ([]finding.Finding, error) {
	var out []finding.Finding
	for _, name := range dangerousTriggers {
		if !wf.On.Has(name) {
			continue
		}
		sev := finding.SeverityHigh
		conf := finding.ConfidenceMedium
		if name == "workflow_run" {
			sev = finding.SeverityMedium
		}

		route := wf.On.Route.Child(name)
		if !in.Doc.QueryExists(route) {
			// `on:` is a bare scalar or a sequence, not a mapping: no
			// per-trigger key to point at, so anchor on `on:` itself.
			route = wf.On.Route
		}

		f, err := finding.NewBuilder(a.Ident(), fmt.Sprintf("%s is a frequently-misused trigger", name)).
			URL(a.URL()).
			Severity(sev).
			Confidence(conf).
			Location(finding.SymbolicLocation{
				InputKey:    in.Key,
				Route:       route,
				FeatureKind: finding.FeatureKeyOnly,
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
