// SPDX-License-Identifier: MIT

package audit

import (
	"fmt"
	"path"
	"strings"

	"github.com/esacteksab/gh-audit/expr"
	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/model"
	"github.com/esacteksab/gh-audit/yamlpath"
)

const obfuscationIdent = "obfuscation"

// Obfuscation flags `uses:` coordinates whose subpath hides its real
// target behind `.`/`..`/empty path components, and expressions whose
// value is knowable ahead of time but written as a template anyway.
// Both are ways an author (or an attacker who can influence workflow
// content) can make a `uses:` target or a condition harder to read
// than what it actually does.
type Obfuscation struct{}

func NewObfuscation() *Obfuscation { return &Obfuscation{} }

func (a *Obfuscation) Ident() string        { return obfuscationIdent }
func (a *Obfuscation) Description() string  { return "obfuscated uses: paths and constant-foldable expressions" }
func (a *Obfuscation) URL() string {
	return "https://docs.github.com/actions/security-guides/security-hardening-for-github-actions"
}

var (
	_ StepAuditor          = (*Obfuscation)(nil)
	_ CompositeStepAuditor = (*Obfuscation)(nil)
	_ ReusableJobAuditor   = (*Obfuscation)(nil)
	_ RawAuditor           = (*Obfuscation)(nil)
)

func (a *Obfuscation) AuditStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	if step.Kind != model.StepUses || step.Uses == nil {
		return nil, nil
	}
	return a.checkUses(in, *step.Uses, step.Route.Child("uses"))
}

func (a *Obfuscation) AuditCompositeStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	return a.AuditStep(in, step)
}

func (a *Obfuscation) AuditReusableJob(in *Input, job *model.Job) ([]finding.Finding, error) {
	if job.Uses == nil {
		return nil, nil
	}
	return a.checkUses(in, *job.Uses, job.Route.Child("uses"))
}

// checkUses flags a subpath with a `.`, `..`, or empty component and
// offers a fix that replaces the whole `uses:` value with its
// path.Clean-normalized form.
func (a *Obfuscation) checkUses(in *Input, u model.Uses, route yamlpath.Route) ([]finding.Finding, error) {
	if u.Kind != model.UsesRepo || u.Subpath == "" {
		return nil, nil
	}
	cleaned, dirty := cleanedSubpath(u.Subpath)
	if !dirty {
		return nil, nil
	}

	newRaw := u.Owner + "/" + u.Repo + "/" + cleaned
	if u.Ref != "" {
		newRaw += "@" + u.Ref
	}

	f, err := finding.NewBuilder(a.Ident(), a.Description()).
		URL(a.URL()).
		Severity(finding.SeverityLow).
		Confidence(finding.ConfidenceHigh).
		Location(finding.SymbolicLocation{
			InputKey:    in.Key,
			Route:       route,
			FeatureKind: finding.FeatureNormal,
			Kind:        finding.LocationPrimary,
		}).
		Fix(finding.Fix{
			Title:       "normalize the uses: subpath",
			Disposition: finding.DispositionSafe,
			InputKey:    in.Key,
			Ops: []finding.PatchOp{
				{Kind: finding.OpReplace, Route: route, Value: newRaw},
			},
		}).
		Build(in.Doc)
	if err != nil {
		return nil, err
	}
	return []finding.Finding{f}, nil
}

// cleanedSubpath reports whether subpath contains a `.`, `..`, or
// empty path component, and if so returns the path.Clean-normalized
// replacement.
func cleanedSubpath(subpath string) (cleaned string, dirty bool) {
	for _, part := range strings.Split(subpath, "/") {
		if part == "" || part == "." || part == ".." {
			dirty = true
			break
		}
	}
	if !dirty {
		return "", false
	}
	cleaned = strings.TrimPrefix(path.Clean("/"+subpath), "/")
	return cleaned, true
}

// AuditRaw scans the whole input for constant-reducible `${{ ... }}`
// expressions (or sub-expressions): ones whose value does not depend
// on anything but literals and operators GitHub evaluates at template
// time, e.g. `${{ 1 == 1 }}` or `${{ 'a' || github.ref }}`. Function
// calls never fold, so `${{ format('{0}', 'x') }}` is not reported.
func (a *Obfuscation) AuditRaw(in *Input) ([]finding.Finding, error) {
	var out []finding.Finding
	text := string(in.Doc.Source)

	for _, block := range expr.ScanBlocks(text) {
		parsed, err := expr.Parse(block.Body)
		if err != nil {
			continue
		}

		if expr.ConstantReducible(parsed) {
			if f, ok, err := a.reduceFinding(in, text, block, parsed); err != nil {
				return nil, err
			} else if ok {
				out = append(out, f)
			}
			continue
		}

		for _, sub := range expr.ConstantReducibleSubexprs(parsed) {
			if f, ok, err := a.reduceFinding(in, text, block, sub); err != nil {
				return nil, err
			} else if ok {
				out = append(out, f)
			}
		}
	}

	return out, nil
}

func (a *Obfuscation) reduceFinding(in *Input, text string, block expr.Block, sub *expr.Node) (finding.Finding, bool, error) {
	value, ok := expr.Fold(sub)
	if !ok {
		return finding.Finding{}, false, nil
	}
	rendered := value.Render()

	startOffset := block.InnerStart + sub.Origin.Start
	endOffset := block.InnerStart + sub.Origin.End
	literal := sub.Origin.Raw
	if literal == "" {
		return finding.Finding{}, false, nil
	}

	// OpReplace against the root route covers the top node's span, which
	// ends where its last value ends, not at EOF
	// (yamlpath.Document.QueryExact has no notion of a sub-span replace),
	// so the fix's Value is that span's text with just this expression's
	// span substituted. An expression outside that span gets no finding.
	rootFeature, _, err := in.Doc.QueryExact(yamlpath.Root())
	if err != nil {
		return finding.Finding{}, false, err
	}
	if startOffset < rootFeature.Span.Start || endOffset > rootFeature.Span.End {
		return finding.Finding{}, false, nil
	}
	newValue := text[rootFeature.Span.Start:startOffset] + rendered + text[endOffset:rootFeature.Span.End]

	f, err := finding.NewBuilder(a.Ident(), a.Description()).
		URL(a.URL()).
		Severity(finding.SeverityInformational).
		Confidence(finding.ConfidenceHigh).
		Location(finding.SymbolicLocation{
			InputKey:    in.Key,
			Route:       yamlpath.Root(),
			FeatureKind: finding.FeatureSubfeature,
			Subfeature: yamlpath.Subfeature{
				After:   startOffset - rootFeature.Span.Start,
				Literal: literal,
			},
			Kind: finding.LocationPrimary,
		}).
		Fix(finding.Fix{
			Title:       fmt.Sprintf("fold to the constant value %q", rendered),
			Disposition: finding.DispositionSafe,
			InputKey:    in.Key,
			Ops: []finding.PatchOp{
				{Kind: finding.OpReplace, Route: yamlpath.Root(), Value: newValue},
			},
		}).
		Build(in.Doc)
	if err != nil {
		return finding.Finding{}, false, err
	}
	return f, true, nil
}
