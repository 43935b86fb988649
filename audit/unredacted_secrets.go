// SPDX-License-Identifier: MIT

package audit

import (
	"fmt"
	"regexp"

	"github.com/esacteksab/gh-audit/expr"
	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/model"
)

const unredactedSecretsIdent = "unredacted-secrets"

// echoLikeCommand matches a shell line that prints its arguments
// verbatim: echo, printf, or cat of a file substitution — the
// commands that put a secret directly into the job log.
var echoLikeCommand = regexp.MustCompile(`(?m)^\s*(echo|printf|cat)\b`)

// UnredactedSecrets is a narrower, syntactic cousin of
// template-injection: it flags a `run:` line that echoes a
// `secrets.*` context straight to stdout, where GitHub Actions' own
// log redaction can be defeated by splitting, encoding, or
// re-formatting the value before printing it. Unlike
// template-injection, this fires regardless of capability
// classification — the concern here is exposure, not injection.
type UnredactedSecrets struct{}

func NewUnredactedSecrets() *UnredactedSecrets { return &UnredactedSecrets{} }

func (a *UnredactedSecrets) Ident() string { return unredactedSecretsIdent }
func (a *UnredactedSecrets) Description() string {
	return "a run: step that echoes a secrets.* context directly to stdout"
}
func (a *UnredactedSecrets) URL() string {
	return "https://docs.github.com/actions/security-guides/using-secrets-in-github-actions#redacting-secrets-from-logs"
}

var (
	_ StepAuditor          = (*UnredactedSecrets)(nil)
	_ CompositeStepAuditor = (*UnredactedSecrets)(nil)
)

func (a *UnredactedSecrets) AuditStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	if step.Kind != model.StepRun || step.Run == "" {
		return nil, nil
	}

	var out []finding.Finding
	for _, block := range expr.ScanBlocks(step.Run) {
		if !echoLikeCommand.MatchString(lineContaining(step.Run, block.Outer.Start)) {
			continue
		}
		parsed, err := expr.Parse(block.Body)
		if err != nil {
			continue
		}
		for _, dc := range expr.DataflowContexts(parsed) {
			if !dc.Context.ChildOf("secrets") {
				continue
			}
			f, err := finding.NewBuilder(a.Ident(), fmt.Sprintf("%s is printed without going through a redaction helper", dc.Context.Node().Origin.Raw)).
				URL(a.URL()).
				Severity(finding.SeverityMedium).
				Confidence(finding.ConfidenceLow).
				Persona(finding.PersonaPedantic).
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
			out = append(out, f)
		}
	}
	return out, nil
}

func (a *UnredactedSecrets) AuditCompositeStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	return a.AuditStep(in, step)
}

// lineContaining returns the line of script that contains byte offset
// at, used to check the command name a `${{ ... }}` block sits inside
// without re-parsing the whole script as shell.
func lineContaining(script string, at int) string {
	start := at
	for start > 0 && script[start-1] != '\n' {
		start--
	}
	end := at
	for end < len(script) && script[end] != '\n' {
		end++
	}
	return script[start:end]
}
