// SPDX-License-Identifier: MIT

package audit

import (
	"fmt"
	"strings"

	"github.com/esacteksab/gh-audit/capability"
	"github.com/esacteksab/gh-audit/expr"
	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/model"
	"github.com/esacteksab/gh-audit/yamlpath"
)

const templateInjectionIdent = "template-injection"

// scriptSinks maps a `uses:` action's owner/repo (lowercased) to the
// `with:` input whose value is interpreted as a script: a handful of
// well-known actions splice their input straight into an interpreter,
// the same way a bare `run:` step does.
var scriptSinks = map[string]string{
	"actions/github-script": "script",
}

// TemplateInjection flags `${{ ... }}` expressions whose value an
// attacker can influence, once they are substituted into a shell
// script or a known script-sink input.
type TemplateInjection struct {
	dict *capability.Dictionary
}

// NewTemplateInjection builds the audit with the bundled capability
// seed dictionary.
func NewTemplateInjection() *TemplateInjection {
	return &TemplateInjection{dict: capability.Seed()}
}

func (a *TemplateInjection) Ident() string { return templateInjectionIdent }

func (a *TemplateInjection) Description() string {
	return "dangerous expression interpolation into shell scripts and script-sink action inputs"
}

func (a *TemplateInjection) URL() string {
	return "https://docs.github.com/actions/security-guides/security-hardening-for-github-actions#understanding-the-risk-of-script-injections"
}

var (
	_ StepAuditor          = (*TemplateInjection)(nil)
	_ CompositeStepAuditor = (*TemplateInjection)(nil)
)

// AuditStep inspects a normal job's step.
func (a *TemplateInjection) AuditStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	return a.auditStep(in, step)
}

// AuditCompositeStep inspects a composite action's step. The sink
// logic is identical; only the object graph it hangs off differs.
func (a *TemplateInjection) AuditCompositeStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	return a.auditStep(in, step)
}

func (a *TemplateInjection) auditStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	var out []finding.Finding

	if step.Kind == model.StepRun && step.Run != "" {
		fs, err := a.auditSink(in, step, step.Run, step.Route.Child("run"), true)
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
	}

	if step.Kind == model.StepUses && step.Uses != nil {
		key := strings.ToLower(step.Uses.Owner + "/" + step.Uses.Repo)
		if sinkInput, ok := scriptSinks[key]; ok {
			if text, ok := step.With[sinkInput]; ok && text != "" {
				fs, err := a.auditSink(in, step, text, step.Route.Child("with").Child(sinkInput), false)
				if err != nil {
					return nil, err
				}
				out = append(out, fs...)
			}
		}
	}

	return out, nil
}

// auditSink scans text (a `run:` script or a script-sink input) for
// `${{ ... }}` blocks and emits one finding per attacker-influenced
// context it finds flowing into the substitution. offerFix is true
// only for `run:` steps: the env-variable fix only makes sense for a
// shell script, not for an opaque action input.
func (a *TemplateInjection) auditSink(in *Input, step *model.Step, text string, route yamlpath.Route, offerFix bool) ([]finding.Finding, error) {
	var out []finding.Finding

	for _, block := range expr.ScanBlocks(text) {
		parsed, err := expr.Parse(block.Body)
		if err != nil {
			continue
		}

		for _, dc := range expr.DataflowContexts(parsed) {
			sev, conf, skip := classifyContext(dc.Context, step, a.dict)
			if skip {
				continue
			}

			fb := finding.NewBuilder(a.Ident(), a.Description()).
				URL(a.URL()).
				Severity(sev).
				Confidence(conf).
				Location(finding.SymbolicLocation{
					InputKey:    in.Key,
					Route:       route,
					FeatureKind: finding.FeatureSubfeature,
					Subfeature: yamlpath.Subfeature{
						Literal: text[block.Outer.Start:block.Outer.End],
					},
					Kind: finding.LocationPrimary,
				})

			if offerFix && parsed.Kind == expr.KindContext {
				if fix, ok := envVarFix(in.Key, step, route, text, block, dc.Context); ok {
					fb.Fix(fix)
				}
			}

			f, err := fb.Build(in.Doc)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
	}

	return out, nil
}

// envVarFix builds the "pass through env" fix: the `${{ ... }}` block
// is replaced in the script by a `${NAME}` shell reference, and a
// `NAME: ${{ ... }}` entry carrying the original expression is merged
// into the step's `env:` block.
func envVarFix(inputKey string, step *model.Step, route yamlpath.Route, text string, block expr.Block, ctx expr.Context) (finding.Fix, bool) {
	name, ok := ctx.ToEnvVar()
	if !ok {
		return finding.Fix{}, false
	}

	newScript := text[:block.Outer.Start] + "${" + name + "}" + text[block.Outer.End:]
	rawExpr := text[block.Outer.Start:block.Outer.End]

	return finding.Fix{
		Title:       fmt.Sprintf("pass %s through the step environment instead of interpolating it", name),
		Disposition: finding.DispositionUnsafe,
		InputKey:    inputKey,
		Ops: []finding.PatchOp{
			{Kind: finding.OpReplace, Route: route, Value: newScript},
			{Kind: finding.OpMergeInto, Route: step.Route, Key: "env", Value: name + ": " + yamlQuoteIfNeeded(rawExpr) + "\n"},
		},
	}, true
}

// yamlQuoteIfNeeded double-quotes s when it would otherwise be
// ambiguous as a YAML plain scalar: when it contains a colon followed
// by a space, or ends with a colon.
func yamlQuoteIfNeeded(s string) string {
	if !strings.Contains(s, ": ") && !strings.HasSuffix(s, ":") {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// classifyContext maps a dataflow context to a severity/confidence
// pair, or skip == true when the context carries no attacker
// influence worth reporting.
func classifyContext(ctx expr.Context, step *model.Step, dict *capability.Dictionary) (sev finding.Severity, conf finding.Confidence, skip bool) {
	// secrets values are redacted in logs by the runner; the catalog
	// does not treat their content as attacker-controlled.
	if ctx.ChildOf("secrets") {
		return 0, 0, true
	}

	if pattern, ok := ctx.AsPattern(); ok {
		if cap, found := dict.Lookup(pattern); found {
			switch cap {
			case capability.Arbitrary:
				return finding.SeverityHigh, finding.ConfidenceHigh, false
			case capability.Structured:
				return finding.SeverityMedium, finding.ConfidenceHigh, false
			default: // capability.Fixed
				return 0, 0, true
			}
		}
	}

	switch {
	case ctx.ChildOf("inputs"):
		// Not yet in the dictionary pending input-type inference; an
		// unconstrained `string` input is as dangerous as any event
		// payload field, but a `choice`/`boolean` input is not, hence
		// the reduced confidence.
		return finding.SeverityHigh, finding.ConfidenceLow, false

	case ctx.ChildOf("env"):
		name := ""
		if path := ctx.Path(); len(path) > 1 {
			name = path[1].Name
		}
		if name != "" && step.EnvIsStatic(name) {
			return 0, 0, true
		}
		return finding.SeverityLow, finding.ConfidenceMedium, false

	case ctx.ChildOf("github"):
		return finding.SeverityHigh, finding.ConfidenceMedium, false

	case ctx.ChildOf("matrix"):
		if pattern, ok := ctx.AsPattern(); ok && step.Job != nil && step.Job.Matrix != nil {
			if step.Job.Matrix.ExpandsToStaticValues(pattern) {
				return 0, 0, true
			}
		}
		return finding.SeverityMedium, finding.ConfidenceMedium, false

	default:
		return finding.SeverityInformational, finding.ConfidenceLow, false
	}
}
