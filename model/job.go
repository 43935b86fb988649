// SPDX-License-Identifier: MIT

package model

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// RunnerShell is the shell GitHub Actions runs a step's `run:` block
// under when the step does not set its own `shell:`.
type RunnerShell int

const (
	ShellUnknown RunnerShell = iota
	ShellBash
	ShellPwsh
)

// Job is a single entry of a workflow's `jobs:` mapping. A Job is
// either a normal job (Reusable == false) or a reusable-workflow-call
// job (Reusable == true); callers branch on Reusable rather than on a
// type assertion, favoring a flat struct over a small-interface
// hierarchy.
type Job struct {
	ID       string
	Name     string
	Route    Route
	Workflow *Workflow

	Reusable bool

	// Normal job fields.
	RunsOn      *yaml.Node
	Steps       []*Step
	Matrix      *Matrix
	Env         map[string]string
	Permissions Permissions
	If          string

	// Reusable-workflow-call job fields.
	Uses          *Uses
	SecretsInherit bool
}

func parseJob(id string, n *yaml.Node, route Route, wf *Workflow) *Job {
	j := &Job{ID: id, Route: route, Workflow: wf}
	j.Name = scalarString(mapGet(n, "name"))
	j.If = scalarString(mapGet(n, "if"))

	if usesNode := mapGet(n, "uses"); usesNode != nil {
		j.Reusable = true
		u := ParseUses(usesNode.Value)
		j.Uses = &u
		j.Permissions = ParsePermissions(mapGet(n, "permissions"), route.Child("permissions"))
		if secretsNode := mapGet(n, "secrets"); secretsNode != nil && secretsNode.Kind == yaml.ScalarNode {
			j.SecretsInherit = secretsNode.Value == "inherit"
		}
		return j
	}

	j.RunsOn = mapGet(n, "runs-on")
	j.Steps = parseSteps(mapGet(n, "steps"), route.Child("steps"))
	for _, s := range j.Steps {
		s.Job = j
	}
	if strategy := mapGet(n, "strategy"); strategy != nil {
		j.Matrix = BuildMatrix(mapGet(strategy, "matrix"))
	}
	j.Env = stringMap(mapGet(n, "env"))
	j.Permissions = ParsePermissions(mapGet(n, "permissions"), route.Child("permissions"))
	return j
}

// RunnerDefaultShell infers the shell a bare `run:` step on this job
// runs under: literal `ubuntu-*`/`macos-*`/`linux`/`macOS` targets map
// to bash; `windows`/`windows-*` maps to pwsh; an expression or a
// runner-group target is unknown.
func (j *Job) RunnerDefaultShell() RunnerShell {
	if j.RunsOn == nil {
		return ShellUnknown
	}
	labels := runsOnLabels(j.RunsOn)
	if labels == nil {
		return ShellUnknown
	}
	for _, label := range labels {
		lower := strings.ToLower(label)
		switch {
		case lower == "windows" || strings.HasPrefix(lower, "windows-"):
			return ShellPwsh
		case lower == "linux" || lower == "macos" || strings.HasPrefix(lower, "ubuntu-") || strings.HasPrefix(lower, "macos-"):
			return ShellBash
		}
	}
	return ShellUnknown
}

// runsOnLabels returns the literal labels of a `runs-on:` node, or nil
// when the node is an expression or a runner-group mapping (`{group:
// ...}`).
func runsOnLabels(n *yaml.Node) []string {
	switch n.Kind {
	case yaml.ScalarNode:
		if ContainsExpression(n.Value) {
			return nil
		}
		return []string{n.Value}
	case yaml.SequenceNode:
		var out []string
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode || ContainsExpression(item.Value) {
				return nil
			}
			out = append(out, item.Value)
		}
		return out
	default:
		return nil
	}
}
