// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/patch"
	"github.com/esacteksab/gh-audit/registry"
	"github.com/esacteksab/gh-audit/utils"
)

func init() {
	rootCmd.AddCommand(fixCmd)
}

// fixCmd applies every safe-disposition fix the audit catalog
// attaches to a finding. Unsafe and manual fixes are skipped; this
// command does not list them.
var fixCmd = &cobra.Command{
	Use:          "fix [path]",
	Short:        "Apply safe fixes to local workflows and actions",
	SilenceUsage: true,
	Args:         cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks, reg, err := loadRegistry(pathArg(args))
		if err != nil {
			return err
		}
		return applyFixes(tasks, reg)
	},
}

// applyFixes gathers every safe-disposition fix attached to a
// surviving finding and patches each affected file in place.
// Two audits can each emit a fix touching the same route of the same
// file (e.g. both an unpinned-uses fix and a permissions fix rewriting
// neighboring keys); ops are deduplicated per file by (route, kind) so
// a route is never patched twice, which would otherwise trip the
// overlap check in patch.Apply and drop every fix for that file.
func applyFixes(tasks []registry.Task, reg *registry.FindingRegistry) error {
	bySource := make(map[string][]byte, len(tasks))
	byTask := make(map[string]*registry.Task, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		key := t.Key.String()
		bySource[key] = t.Input.Doc.Source
		byTask[key] = t
	}

	ops := make(map[string][]finding.PatchOp)
	seen := make(map[string]map[string]bool)
	applied := 0
	for _, f := range reg.Findings {
		for _, fx := range f.Fixes {
			if fx.Disposition != finding.DispositionSafe {
				continue
			}
			dup, ok := seen[fx.InputKey]
			if !ok {
				dup = make(map[string]bool)
				seen[fx.InputKey] = dup
			}
			for _, op := range fx.Ops {
				opKey := op.Route.String() + "|" + strconv.Itoa(int(op.Kind))
				if dup[opKey] {
					continue
				}
				dup[opKey] = true
				ops[fx.InputKey] = append(ops[fx.InputKey], op)
			}
			applied++
		}
	}

	for key, fileOps := range ops {
		t, ok := byTask[key]
		if !ok {
			continue
		}
		patched, err := patch.Apply(bySource[key], fileOps)
		if err != nil {
			utils.Logger.Errorf("applying fixes to %s: %v", key, err)
			continue
		}
		if err := os.WriteFile(t.Key.Path, patched, 0o640); err != nil { //nolint:gosec
			return fmt.Errorf("writing fixed file %s: %w", key, err)
		}
		utils.Logger.Infof("applied %d fix(es) to %s", len(fileOps), key)
	}

	if applied == 0 {
		utils.Logger.Info("no safe fixes to apply")
	}
	return nil
}
