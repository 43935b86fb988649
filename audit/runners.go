// SPDX-License-Identifier: MIT

package audit

import (
	"fmt"
	"strings"

	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/model"
	"gopkg.in/yaml.v3"
)

const (
	selfHostedRunnerIdent = "self-hosted-runner"
	staleRunnerIdent      = "stale-runner"
)

// staleRunnerLabels names `runs-on:` labels GitHub has removed or
// deprecated; a workflow still naming one will fail to schedule at
// all.
var staleRunnerLabels = map[string]bool{
	"ubuntu-18.04": true,
	"macos-11":     true,
	"macos-12":     true,
	"windows-2016": true,
}

// Runners inspects `runs-on:` labels for self-hosted and deprecated
// runners. It reports under two idents sharing one walk, the way a
// single pass over a job's labels naturally covers both conditions.
type Runners struct{}

func NewRunners() *Runners { return &Runners{} }

func (a *Runners) Ident() string       { return selfHostedRunnerIdent }
func (a *Runners) Description() string { return "a self-hosted or deprecated runs-on: label" }
func (a *Runners) URL() string {
	return "https://docs.github.com/actions/hosting-your-own-runners/managing-self-hosted-runners/about-self-hosted-runners#self-hosted-runner-security"
}

var _ NormalJobAuditor = (*Runners)(nil)

func (a *Runners) AuditNormalJob(in *Input, job *model.Job) ([]finding.Finding, error) {
	if job.RunsOn == nil {
		return nil, nil
	}
	var out []finding.Finding
	for _, label := range runsOnLabelNodes(job.RunsOn) {
		lower := strings.ToLower(label.Value)
		loc := finding.SymbolicLocation{
			InputKey:    in.Key,
			Route:       job.Route.Child("runs-on"),
			FeatureKind: finding.FeatureNormal,
			Kind:        finding.LocationPrimary,
		}

		switch {
		case strings.HasPrefix(lower, "self-hosted"):
			f, err := finding.NewBuilder(selfHostedRunnerIdent, "self-hosted runners are not sandboxed or ephemeral by default").
				URL(a.URL()).
				Severity(finding.SeverityLow).
				Confidence(finding.ConfidenceHigh).
				Persona(finding.PersonaAuditor).
				Location(loc).
				Build(in.Doc)
			if err != nil {
				return nil, err
			}
			out = append(out, f)

		case staleRunnerLabels[lower]:
			f, err := finding.NewBuilder(staleRunnerIdent, fmt.Sprintf("%s is a removed or deprecated GitHub-hosted runner image", label.Value)).
				URL(a.URL()).
				Severity(finding.SeverityMedium).
				Confidence(finding.ConfidenceHigh).
				Location(loc).
				Build(in.Doc)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
	}
	return out, nil
}

// runsOnLabelNodes returns the scalar label nodes of a `runs-on:`
// value, whether written as a single string or a sequence; a
// runner-group mapping has no labels to inspect.
func runsOnLabelNodes(n *yaml.Node) []*yaml.Node {
	switch n.Kind {
	case yaml.ScalarNode:
		return []*yaml.Node{n}
	case yaml.SequenceNode:
		var out []*yaml.Node
		for _, item := range n.Content {
			if item.Kind == yaml.ScalarNode {
				out = append(out, item)
			}
		}
		return out
	default:
		return nil
	}
}
