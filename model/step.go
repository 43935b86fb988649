// SPDX-License-Identifier: MIT

package model

import "gopkg.in/yaml.v3"

// StepKind discriminates the two shapes a step body can take.
type StepKind int

const (
	StepUses StepKind = iota
	StepRun
)

// Step is a single entry of a job's or composite action's step list.
type Step struct {
	Index int
	Job   *Job // nil for composite-action steps; see CompositeStep
	Route Route

	Kind StepKind
	Uses *Uses // non-nil when Kind == StepUses
	With map[string]string

	Run              string
	WorkingDirectory string
	Shell            string

	Env map[string]string
	If  string
	ID  string
	Name string
}

// parseStep parses a single step mapping node at the given index and
// route.
func parseStep(n *yaml.Node, index int, route Route) *Step {
	s := &Step{Index: index, Route: route, Env: stringMap(mapGet(n, "env"))}
	s.If = scalarString(mapGet(n, "if"))
	s.ID = scalarString(mapGet(n, "id"))
	s.Name = scalarString(mapGet(n, "name"))

	if usesNode := mapGet(n, "uses"); usesNode != nil {
		s.Kind = StepUses
		u := ParseUses(usesNode.Value)
		s.Uses = &u
		s.With = stringMap(mapGet(n, "with"))
		return s
	}

	s.Kind = StepRun
	s.Run = scalarString(mapGet(n, "run"))
	s.WorkingDirectory = scalarString(mapGet(n, "working-directory"))
	s.Shell = scalarString(mapGet(n, "shell"))
	return s
}

// parseSteps parses a `steps:` sequence node into a Step slice, in
// document order.
func parseSteps(n *yaml.Node, baseRoute Route) []*Step {
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]*Step, 0, len(n.Content))
	for i, item := range n.Content {
		out = append(out, parseStep(item, i, baseRoute.At(i)))
	}
	return out
}

// EnvIsStatic reports whether name, looked up across step, job, and
// workflow env blocks (step shadows job shadows workflow), has no
// `${{ ... }}` sub-expression in its value. A name with no value
// anywhere is vacuously static.
func (s *Step) EnvIsStatic(name string) bool {
	if v, ok := s.Env[name]; ok {
		return !ContainsExpression(v)
	}
	if s.Job != nil {
		if v, ok := s.Job.Env[name]; ok {
			return !ContainsExpression(v)
		}
		if s.Job.Workflow != nil {
			if v, ok := s.Job.Workflow.Env[name]; ok {
				return !ContainsExpression(v)
			}
		}
	}
	return true
}
