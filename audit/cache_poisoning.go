// SPDX-License-Identifier: MIT

package audit

import (
	"github.com/esacteksab/gh-audit/coordinates"
	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/model"
)

const cachePoisoningIdent = "cache-poisoning"

// CachePoisoning flags jobs that both publish a release artifact and
// restore from a persistent cache: an attacker who can land a cache
// entry on a branch (e.g. via a pull_request workflow
// that also caches) can have that poisoned cache restored into a later
// run that publishes, smuggling its payload into the published
// artifact without ever touching the publishing workflow directly.
type CachePoisoning struct{}

func NewCachePoisoning() *CachePoisoning { return &CachePoisoning{} }

func (a *CachePoisoning) Ident() string { return cachePoisoningIdent }
func (a *CachePoisoning) Description() string {
	return "a publishing job also restores from a persistent cache"
}
func (a *CachePoisoning) URL() string {
	return "https://blog.yossarian.net/2024/06/17/cache-poisoning-in-github-actions"
}

var _ NormalJobAuditor = (*CachePoisoning)(nil)

func (a *CachePoisoning) AuditNormalJob(in *Input, job *model.Job) ([]finding.Finding, error) {
	if !isPublisherJob(job) {
		return nil, nil
	}

	var out []finding.Finding
	for _, step := range job.Steps {
		for _, coord := range coordinates.KnownCachingActions {
			usage := coord.Usage(step)
			if usage == coordinates.None {
				continue
			}
			conf := finding.ConfidenceHigh
			if usage == coordinates.ConditionalOptIn {
				conf = finding.ConfidenceLow
			}
			if usage == coordinates.DefaultActionBehaviour {
				conf = finding.ConfidenceMedium
			}

			f, err := finding.NewBuilder(a.Ident(), a.Description()).
				URL(a.URL()).
				Severity(finding.SeverityMedium).
				Confidence(conf).
				Location(finding.SymbolicLocation{
					InputKey:    in.Key,
					Route:       step.Route.Child("uses"),
					FeatureKind: finding.FeatureNormal,
					Kind:        finding.LocationPrimary,
				}).
				Build(in.Doc)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
			break
		}
	}
	return out, nil
}

// isPublisherJob reports whether job is reachable by a publish-shaped
// trigger (release, or a push that tags or targets a release branch)
// or runs a step matching one of the known release-publishing actions.
func isPublisherJob(job *model.Job) bool {
	if job.Workflow != nil && job.Workflow.On.Publishes() {
		return true
	}
	for _, step := range job.Steps {
		if step.Uses == nil {
			continue
		}
		for _, pat := range coordinates.KnownPublisherActions {
			if pat.Matches(*step.Uses) {
				return true
			}
		}
	}
	return false
}
