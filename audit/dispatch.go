// SPDX-License-Identifier: MIT

package audit

import (
	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/model"
)

// Run dispatches a single audit against a single input, implementing
// the "most specific entry point shadows the more general ones" rule
// the catalog follows. The driver (registry.Driver) calls this once
// per (audit, input) pair after consulting config.Disables; Run itself
// has no notion of configuration.
func Run(a Audit, in *Input) ([]finding.Finding, error) {
	var out []finding.Finding

	if in.Workflow != nil {
		if wa, ok := a.(WorkflowAuditor); ok {
			fs, err := wa.AuditWorkflow(in, in.Workflow)
			if err != nil {
				return nil, err
			}
			out = append(out, fs...)
		}

		for _, job := range in.Workflow.Jobs {
			fs, err := runJob(a, in, job)
			if err != nil {
				return nil, err
			}
			out = append(out, fs...)
		}
	}

	if in.Action != nil {
		fs, err := runAction(a, in, in.Action)
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
	}

	if ra, ok := a.(RawAuditor); ok {
		fs, err := ra.AuditRaw(in)
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
	}

	return out, nil
}

func runJob(a Audit, in *Input, job *model.Job) ([]finding.Finding, error) {
	if job.Reusable {
		if ja, ok := a.(ReusableJobAuditor); ok {
			return ja.AuditReusableJob(in, job)
		}
		return nil, nil
	}

	if ja, ok := a.(NormalJobAuditor); ok {
		return ja.AuditNormalJob(in, job)
	}

	sa, ok := a.(StepAuditor)
	if !ok {
		return nil, nil
	}
	var out []finding.Finding
	for _, step := range job.Steps {
		fs, err := sa.AuditStep(in, step)
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
	}
	return out, nil
}

func runAction(a Audit, in *Input, action *model.Action) ([]finding.Finding, error) {
	if aa, ok := a.(ActionAuditor); ok {
		return aa.AuditAction(in, action)
	}

	if action.RunsKind != model.RunsComposite {
		return nil, nil
	}
	csa, ok := a.(CompositeStepAuditor)
	if !ok {
		return nil, nil
	}
	var out []finding.Finding
	for _, step := range action.CompositeSteps {
		fs, err := csa.AuditCompositeStep(in, step)
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
	}
	return out, nil
}
