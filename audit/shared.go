// SPDX-License-Identifier: MIT

package audit

// attackerControllableTriggers names the `on:` trigger keys whose
// payload contains attacker-influenced fields before any maintainer
// review has happened.
var attackerControllableTriggers = map[string]bool{
	"pull_request_target": true,
	"issue_comment":       true,
	"issues":              true,
	"discussion":          true,
	"discussion_comment":  true,
	"fork":                true,
	"watch":               true,
}

// hasAttackerControllableTrigger reports whether any of names is a
// trigger whose event payload an outside contributor can shape.
func hasAttackerControllableTrigger(names map[string]bool) bool {
	for n := range names {
		if attackerControllableTriggers[n] {
			return true
		}
	}
	return false
}

// dangerousTriggers names the two `on:` keys the dangerous-triggers
// audit flags outright: pull_request_target runs
// with write-scoped secrets against attacker-supplied code, and
// workflow_run can be abused to run a modified workflow with the
// privileges of the default branch.
var dangerousTriggers = []string{"pull_request_target", "workflow_run"}
