// SPDX-License-Identifier: MIT

package audit

import (
	"strings"

	"github.com/esacteksab/gh-audit/expr"
	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/model"
	"github.com/esacteksab/gh-audit/yamlpath"
)

const (
	botConditionsIdent  = "bot-conditions"
	unsoundContainsIdent = "unsound-contains"
)

// Conditions inspects `if:` expressions for two unsound gating
// patterns: a bot-identity check an attacker can spoof, and a
// `contains()` allow-list check that matches on substring rather than
// membership.
type Conditions struct{}

func NewConditions() *Conditions { return &Conditions{} }

func (a *Conditions) Ident() string       { return botConditionsIdent }
func (a *Conditions) Description() string { return "an if: condition that is unsound as an authorization gate" }
func (a *Conditions) URL() string {
	return "https://docs.github.com/actions/security-guides/security-hardening-for-github-actions#considering-cross-repository-access"
}

var (
	_ NormalJobAuditor     = (*Conditions)(nil)
	_ ReusableJobAuditor   = (*Conditions)(nil)
	_ StepAuditor          = (*Conditions)(nil)
	_ CompositeStepAuditor = (*Conditions)(nil)
)

func (a *Conditions) AuditNormalJob(in *Input, job *model.Job) ([]finding.Finding, error) {
	return a.checkIf(in, job.If, job.Route.Child("if"))
}

func (a *Conditions) AuditReusableJob(in *Input, job *model.Job) ([]finding.Finding, error) {
	return a.checkIf(in, job.If, job.Route.Child("if"))
}

func (a *Conditions) AuditStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	return a.checkIf(in, step.If, step.Route.Child("if"))
}

func (a *Conditions) AuditCompositeStep(in *Input, step *model.Step) ([]finding.Finding, error) {
	return a.AuditStep(in, step)
}

func (a *Conditions) checkIf(in *Input, raw string, route yamlpath.Route) ([]finding.Finding, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || !in.Doc.QueryExists(route) {
		return nil, nil
	}
	body := stripIfWrapper(raw)
	parsed, err := expr.Parse(body)
	if err != nil {
		return nil, nil
	}

	var out []finding.Finding
	walkConditions(parsed, func(n *expr.Node) {
		if f, ok := a.botConditionFinding(in, n, route); ok {
			out = append(out, f)
		}
		if f, ok := a.unsoundContainsFinding(in, n, route); ok {
			out = append(out, f)
		}
	})
	return out, nil
}

// stripIfWrapper removes a surrounding `${{ }}` block when the author
// wrote the explicit form; `if:` also accepts the bare expression body,
// which is returned unchanged.
func stripIfWrapper(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "${{") && strings.HasSuffix(trimmed, "}}") {
		return strings.TrimSpace(trimmed[3 : len(trimmed)-2])
	}
	return trimmed
}

// botNames are workflow-bot logins frequently used as an (unsound)
// authorization check against `github.actor` or an event actor field.
var botNames = map[string]bool{
	"dependabot[bot]":     true,
	"renovate[bot]":       true,
	"github-actions[bot]": true,
}

// botConditionFinding flags an equality comparison between an actor-like
// context and a known bot login. Such logins are the PR author/pusher
// as GitHub reports it, not a cryptographic attestation: anyone can open
// a pull request from an account they name to look like a bot, or an
// attacker landing a pull_request_target run can otherwise influence
// the very data this check treats as trusted.
func (a *Conditions) botConditionFinding(in *Input, n *expr.Node, route yamlpath.Route) (finding.Finding, bool) {
	if n.Kind != expr.KindBinary || n.BinOp != expr.OpEq {
		return finding.Finding{}, false
	}
	ctxNode, litNode := binaryOperands(n)
	if ctxNode == nil {
		return finding.Finding{}, false
	}
	ctx, ok := expr.AsContext(ctxNode)
	if !ok {
		return finding.Finding{}, false
	}
	path := ctx.Path()
	if len(path) == 0 {
		return finding.Finding{}, false
	}
	last := path[len(path)-1]
	if last.Kind != expr.PathIdent || !strings.EqualFold(last.Name, "actor") {
		return finding.Finding{}, false
	}
	if !botNames[litNode.Str] {
		return finding.Finding{}, false
	}

	f, err := finding.NewBuilder(botConditionsIdent, "checking the actor login against a bot name is spoofable").
		URL(a.URL()).
		Severity(finding.SeverityMedium).
		Confidence(finding.ConfidenceMedium).
		Location(finding.SymbolicLocation{
			InputKey:    in.Key,
			Route:       route,
			FeatureKind: finding.FeatureNormal,
			Kind:        finding.LocationPrimary,
		}).
		Build(in.Doc)
	if err != nil {
		return finding.Finding{}, false
	}
	return f, true
}

// binaryOperands returns (context, literal) in whichever order an
// equality comparison was written, or (nil, nil) when neither operand
// has that shape.
func binaryOperands(n *expr.Node) (*expr.Node, *expr.Node) {
	if n.Left != nil && n.Left.Kind == expr.KindContext && n.Right != nil && n.Right.Kind == expr.KindString {
		return n.Left, n.Right
	}
	if n.Right != nil && n.Right.Kind == expr.KindContext && n.Left != nil && n.Left.Kind == expr.KindString {
		return n.Right, n.Left
	}
	return nil, nil
}

// unsoundContainsFinding flags `contains(list, needle)` calls whose
// first argument is a string literal that looks like a delimited list
// of alternatives. contains() performs a substring test, not a set
// membership test: `contains('refs/heads/main refs/heads/release', x)`
// matches `refs/heads/release-from-a-fork` just as readily as the
// intended branch.
func (a *Conditions) unsoundContainsFinding(in *Input, n *expr.Node, route yamlpath.Route) (finding.Finding, bool) {
	if n.Kind != expr.KindCall || !strings.EqualFold(n.Callee, "contains") || len(n.Args) != 2 {
		return finding.Finding{}, false
	}
	haystack := n.Args[0]
	if haystack.Kind != expr.KindString || !looksLikeList(haystack.Str) {
		return finding.Finding{}, false
	}
	needle := n.Args[1]
	if needle.Kind != expr.KindContext {
		return finding.Finding{}, false
	}

	f, err := finding.NewBuilder(unsoundContainsIdent, "contains() matches substrings, not set membership").
		URL(a.URL()).
		Severity(finding.SeverityMedium).
		Confidence(finding.ConfidenceLow).
		Persona(finding.PersonaPedantic).
		Location(finding.SymbolicLocation{
			InputKey:    in.Key,
			Route:       route,
			FeatureKind: finding.FeatureNormal,
			Kind:        finding.LocationPrimary,
		}).
		Build(in.Doc)
	if err != nil {
		return finding.Finding{}, false
	}
	return f, true
}

func looksLikeList(s string) bool {
	return strings.ContainsAny(s, " ,")
}

// walkConditions visits every node of the tree, depth-first, calling
// visit on each; it covers only the shapes the condition grammar can
// produce (boolean combinators, calls, unary not).
func walkConditions(n *expr.Node, visit func(*expr.Node)) {
	if n == nil {
		return
	}
	visit(n)
	switch n.Kind {
	case expr.KindBinary:
		walkConditions(n.Left, visit)
		walkConditions(n.Right, visit)
	case expr.KindUnary:
		walkConditions(n.Operand, visit)
	case expr.KindCall:
		for _, arg := range n.Args {
			walkConditions(arg, visit)
		}
	case expr.KindIndex:
		walkConditions(n.Target, visit)
		walkConditions(n.Index, visit)
	}
}
