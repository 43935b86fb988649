// SPDX-License-Identifier: MIT

// Package audit implements the catalog of stateless checks over a
// parsed Workflow or Action that each produce zero or
// more findings. An Audit declares which entry points it cares about
// by implementing the corresponding optional interface (WorkflowAuditor,
// NormalJobAuditor, StepAuditor, …) — the same pattern io.ReaderFrom
// or http.Flusher use to let a type opt into extra behaviour without
// forcing every implementation to carry empty stub methods.
package audit

import (
	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/model"
	"github.com/esacteksab/gh-audit/remotemeta"
	"github.com/esacteksab/gh-audit/yamlpath"
)

// Input bundles everything an audit's entry points can see about the
// document currently being audited.
type Input struct {
	Key      string
	Doc      *yamlpath.Document
	Workflow *model.Workflow // nil for an action.yml input
	Action   *model.Action   // nil for a workflow input
	Remote   remotemeta.Interface
}

// Audit is the minimal identity every check in the catalog carries.
// Everything else — which levels it inspects — comes from the
// optional interfaces below.
type Audit interface {
	Ident() string
	Description() string
	URL() string
}

// WorkflowAuditor inspects a whole workflow (triggers, workflow-level
// permissions/env, job graph shape).
type WorkflowAuditor interface {
	AuditWorkflow(in *Input, wf *model.Workflow) ([]finding.Finding, error)
}

// NormalJobAuditor inspects a single non-reusable job. Implementing
// this shadows the driver's default behaviour of iterating the job's
// steps on the audit's behalf: an audit that needs both job-level and
// step-level inspection calls into its own step logic explicitly.
type NormalJobAuditor interface {
	AuditNormalJob(in *Input, job *model.Job) ([]finding.Finding, error)
}

// ReusableJobAuditor inspects a reusable-workflow-call job.
type ReusableJobAuditor interface {
	AuditReusableJob(in *Input, job *model.Job) ([]finding.Finding, error)
}

// StepAuditor inspects a single step of a normal job. When a
// NormalJobAuditor is not implemented, the driver iterates every job's
// steps and calls this for each.
type StepAuditor interface {
	AuditStep(in *Input, step *model.Step) ([]finding.Finding, error)
}

// ActionAuditor inspects a whole action.yml. Implementing this
// shadows the driver's default behaviour of iterating composite steps.
type ActionAuditor interface {
	AuditAction(in *Input, action *model.Action) ([]finding.Finding, error)
}

// CompositeStepAuditor inspects a single step of a composite action,
// when ActionAuditor is not implemented.
type CompositeStepAuditor interface {
	AuditCompositeStep(in *Input, step *model.Step) ([]finding.Finding, error)
}

// RawAuditor gets the raw input bytes for whole-document scans (e.g.
// expression extraction that does not follow the object model), run
// unconditionally alongside whichever of the above apply.
type RawAuditor interface {
	AuditRaw(in *Input) ([]finding.Finding, error)
}
