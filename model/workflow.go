// SPDX-License-Identifier: MIT

package model

import (
	"fmt"

	"github.com/esacteksab/gh-audit/yamlpath"
	"gopkg.in/yaml.v3"
)

// Workflow is a typed view over a parsed `.github/workflows/*.yml` or
// `.yaml` document.
type Workflow struct {
	Doc *yamlpath.Document

	Jobs     []*Job
	JobOrder []string

	On          TriggerSet
	Permissions Permissions
	Env         map[string]string
	Name        string
}

// ParseWorkflow builds a Workflow from an already-parsed Document.
func ParseWorkflow(doc *yamlpath.Document) (*Workflow, error) {
	top, err := topNode(doc)
	if err != nil {
		return nil, err
	}
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("model: workflow document root is not a mapping")
	}

	wf := &Workflow{Doc: doc}
	wf.Name = scalarString(mapGet(top, "name"))
	wf.Env = stringMap(mapGet(top, "env"))
	wf.Permissions = ParsePermissions(mapGet(top, "permissions"), yamlpath.Root().Child("permissions"))

	onKey := "on"
	onNode := mapGet(top, onKey)
	wf.On = ParseTriggers(onNode, yamlpath.Root().Child(onKey))

	jobsNode := mapGet(top, "jobs")
	if jobsNode != nil && jobsNode.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(jobsNode.Content); i += 2 {
			id := jobsNode.Content[i].Value
			route := yamlpath.Root().Child("jobs").Child(id)
			j := parseJob(id, jobsNode.Content[i+1], route, wf)
			wf.Jobs = append(wf.Jobs, j)
			wf.JobOrder = append(wf.JobOrder, id)
		}
	}
	return wf, nil
}

// topNode returns the document's top mapping/sequence node via the
// Document's public Root field (Root.Content[0] is the value the
// document wraps, per yamlpath.Document's doc comment).
func topNode(doc *yamlpath.Document) (*yaml.Node, error) {
	if doc.Root == nil || len(doc.Root.Content) == 0 {
		return nil, fmt.Errorf("model: empty document")
	}
	return doc.Root.Content[0], nil
}

// HasPullRequestTarget reports whether the workflow listens for
// `pull_request_target`.
func (w *Workflow) HasPullRequestTarget() bool { return w.On.Has("pull_request_target") }

// HasWorkflowRun reports whether the workflow listens for `workflow_run`.
func (w *Workflow) HasWorkflowRun() bool { return w.On.Has("workflow_run") }

// HasWorkflowCall reports whether the workflow is reusable via
// `workflow_call`.
func (w *Workflow) HasWorkflowCall() bool { return w.On.Has("workflow_call") }

// HasSingleTrigger reports whether the workflow responds to exactly
// one event.
func (w *Workflow) HasSingleTrigger() bool { return w.On.Count() == 1 }

// JobByID returns the job with the given id, or nil.
func (w *Workflow) JobByID(id string) *Job {
	for _, j := range w.Jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}
