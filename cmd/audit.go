// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/esacteksab/gh-audit/finding"
	"github.com/esacteksab/gh-audit/utils"
)

// auditCmd is the explicit spelling of the root command's default
// action: scan and print findings without touching
// any file.
var auditCmd = &cobra.Command{
	Use:          "audit [path]",
	Short:        "Scan workflows and actions, printing findings",
	SilenceUsage: true,
	Args:         cobra.MaximumNArgs(1),
	RunE:         runAudit,
}

func runAudit(cmd *cobra.Command, args []string) error {
	_, reg, err := loadRegistry(pathArg(args))
	if err != nil {
		return err
	}

	renderFindings(reg.Findings)

	if reg.Highest >= finding.SeverityMedium {
		os.Exit(1)
	}
	return nil
}

// renderFindings prints each surviving finding the way a terminal
// audit report reads: location, severity/confidence, identifier, then
// description.
func renderFindings(findings []finding.Finding) {
	if len(findings) == 0 {
		utils.Logger.Info("no findings")
		return
	}
	for _, f := range findings {
		loc := ""
		if len(f.Locations) > 0 {
			p := f.Locations[0]
			loc = fmt.Sprintf("%s:%d", p.InputKey, p.Feature.StartPoint.Row+1)
		}
		switch f.Severity {
		case finding.SeverityHigh:
			utils.Logger.Errorf("[%s] %s (%s, %s confidence) %s", f.Ident, loc, f.Severity, f.Confidence, f.Description)
		case finding.SeverityMedium:
			utils.Logger.Warnf("[%s] %s (%s, %s confidence) %s", f.Ident, loc, f.Severity, f.Confidence, f.Description)
		default:
			utils.Logger.Infof("[%s] %s (%s, %s confidence) %s", f.Ident, loc, f.Severity, f.Confidence, f.Description)
		}
	}
	utils.Logger.Infof("%d finding(s)", len(findings))
}
