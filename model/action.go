// SPDX-License-Identifier: MIT

package model

import (
	"github.com/esacteksab/gh-audit/yamlpath"
)

// RunsKind discriminates the three `runs:` shapes an action.yml may
// declare. Only composite actions are introspected for steps.
type RunsKind int

const (
	RunsComposite RunsKind = iota
	RunsJavaScript
	RunsDocker
)

// Action is a typed view over a parsed `action.yml`/`action.yaml`
// document.
type Action struct {
	Doc  *yamlpath.Document
	Name string

	RunsKind       RunsKind
	CompositeSteps []*Step
}

// ParseAction builds an Action from an already-parsed Document.
func ParseAction(doc *yamlpath.Document) (*Action, error) {
	top, err := topNode(doc)
	if err != nil {
		return nil, err
	}

	a := &Action{Doc: doc}
	a.Name = scalarString(mapGet(top, "name"))

	runs := mapGet(top, "runs")
	using := scalarString(mapGet(runs, "using"))
	switch using {
	case "composite":
		a.RunsKind = RunsComposite
		stepsRoute := yamlpath.Root().Child("runs").Child("steps")
		a.CompositeSteps = parseSteps(mapGet(runs, "steps"), stepsRoute)
	case "docker":
		a.RunsKind = RunsDocker
	default:
		a.RunsKind = RunsJavaScript
	}
	return a, nil
}
