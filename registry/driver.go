// SPDX-License-Identifier: MIT

package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/esacteksab/gh-audit/audit"
	"github.com/esacteksab/gh-audit/config"
	"github.com/esacteksab/gh-audit/finding"
)

// Driver runs every audit in its Catalog against every registered
// input, bounding the amount of (input × audit) work running at once
// the way a worker pool would.
type Driver struct {
	Config      *config.Config
	Catalog     []audit.Audit
	Concurrency int
}

// NewDriver builds a Driver from cfg, defaulting concurrency to a
// modest fixed width: audits are CPU-bound tree walks, not I/O waits,
// so there is little to gain from a large pool.
func NewDriver(cfg *config.Config) *Driver {
	return &Driver{Config: cfg, Catalog: Catalog(cfg), Concurrency: 8}
}

// Task pairs one loaded input with its key, the unit of work the pool
// schedules.
type Task struct {
	Key   InputKey
	Input *audit.Input
}

// Run fans every task out against every audit in the catalog using a
// bounded conc pool, collects all findings through a FindingRegistry,
// and returns the gated, sorted result. A per-(input, audit) error is
// recorded but does not abort the rest of the run.
func (d *Driver) Run(tasks []Task) (*FindingRegistry, []error) {
	reg := NewFindingRegistry(d.Config)
	var (
		mu   sync.Mutex
		errs []error
	)

	p := pool.New().WithMaxGoroutines(d.Concurrency)
	for _, t := range tasks {
		for _, a := range d.Catalog {
			t, a := t, a
			p.Go(func() {
				findings, err := audit.Run(a, t.Input)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %s: %w", t.Key, a.Ident(), err))
					return
				}
				reg.Add(findings...)
			})
		}
	}
	p.Wait()

	reg.Finalize()
	return reg, errs
}

// FindingRegistry accumulates findings across a run, applies config
// gating and ignore-comment suppression, and tracks the single
// highest severity seen for exit-code purposes: the process exits
// nonzero if any surfaced finding is at or above the configured floor.
type FindingRegistry struct {
	cfg      *config.Config
	mu       sync.Mutex
	all      []finding.Finding
	Findings []finding.Finding
	Highest  finding.Severity
}

func NewFindingRegistry(cfg *config.Config) *FindingRegistry {
	return &FindingRegistry{cfg: cfg, Highest: finding.SeverityUnknown}
}

// Add records findings, applying the ignore-comment and
// per-ident-per-input disables immediately; persona/severity/confidence
// floor gating and sorting happen in Finalize, once every audit has
// reported.
func (r *FindingRegistry) Add(findings ...finding.Finding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range findings {
		if f.Ignored {
			continue
		}
		inputKey := ""
		if len(f.Locations) > 0 {
			inputKey = f.Locations[0].InputKey
		}
		if r.cfg.Disables(f.Ident, inputKey) {
			continue
		}
		r.all = append(r.all, f)
	}
}

// Finalize applies the persona/severity/confidence floor, sorts the
// surviving findings by input key, then document order, then audit
// identifier, and computes Highest.
func (r *FindingRegistry) Finalize() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var kept []finding.Finding
	for _, f := range r.all {
		if !r.cfg.Passes(f.Persona, f.Severity, f.Confidence) {
			continue
		}
		kept = append(kept, f)
		if f.Severity > r.Highest {
			r.Highest = f.Severity
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		ki, kj := findingInputKey(kept[i]), findingInputKey(kept[j])
		if ki != kj {
			return ki < kj
		}
		ri, rj := findingRow(kept[i]), findingRow(kept[j])
		if ri != rj {
			return ri < rj
		}
		return kept[i].Ident < kept[j].Ident
	})

	r.Findings = kept
}

func findingInputKey(f finding.Finding) string {
	if len(f.Locations) == 0 {
		return ""
	}
	return f.Locations[0].InputKey
}

func findingRow(f finding.Finding) int {
	for _, loc := range f.Locations {
		if loc.Kind == finding.LocationPrimary {
			return loc.Feature.StartPoint.Row
		}
	}
	if len(f.Locations) > 0 {
		return f.Locations[0].Feature.StartPoint.Row
	}
	return 0
}
