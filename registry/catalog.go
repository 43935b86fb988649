// SPDX-License-Identifier: MIT

package registry

import (
	"github.com/esacteksab/gh-audit/audit"
	"github.com/esacteksab/gh-audit/config"
)

// Catalog returns one instance of every audit in the module, wired
// with cfg where an audit needs configuration (unpinned-uses,
// forbidden-uses). Order here is cosmetic only: audit.Run fans
// each input out to every audit independently, and the
// FindingRegistry re-sorts the results afterward.
func Catalog(cfg *config.Config) []audit.Audit {
	return []audit.Audit{
		audit.NewCachePoisoning(),
		audit.NewConditions(),
		audit.NewForbiddenUses(cfg),
		audit.NewGitHubEnv(),
		audit.NewImpostorCommit(),
		audit.NewInsecureCommands(),
		audit.NewKnownVulnerableActions(),
		audit.NewObfuscation(),
		audit.NewExcessivePermissions(),
		audit.NewRefConfusion(),
		audit.NewRunners(),
		audit.NewSecretsInherit(),
		audit.NewTemplateInjection(),
		audit.NewDangerousTriggers(),
		audit.NewUndocumentedPermissions(),
		audit.NewUnpinnedUses(cfg),
		audit.NewUnredactedSecrets(),
	}
}
