// SPDX-License-Identifier: MIT

package registry

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultIgnorePatterns are skipped during local discovery even with
// no .gitignore present, the same directories git itself never
// descends into.
var defaultIgnorePatterns = []string{
	".git/**",
	"node_modules/**",
}

// DiscoverLocal walks root looking for workflow and action definitions
// under .github/workflows and any action.yml/action.yaml. It honors a
// .gitignore at root using doublestar's gitignore-style glob matching,
// so generated or vendored workflow-shaped files don't get audited by
// accident.
func DiscoverLocal(root string) ([]InputKey, error) {
	ignore, err := loadGitignore(root)
	if err != nil {
		return nil, err
	}

	var keys []InputKey
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		slashRel := filepath.ToSlash(rel)

		if matchesAny(defaultIgnorePatterns, slashRel) || matchesAny(ignore, slashRel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !isWorkflowPath(slashRel) && DetectKind(path) != KindAction {
			return nil
		}
		keys = append(keys, InputKey{Path: path, Prefix: root})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// isWorkflowPath reports whether rel sits under .github/workflows and
// has a YAML extension.
func isWorkflowPath(rel string) bool {
	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir != ".github/workflows" {
		return false
	}
	return strings.HasSuffix(rel, ".yml") || strings.HasSuffix(rel, ".yaml")
}

// matchesAny reports whether rel matches any of patterns under
// doublestar's gitignore-flavored semantics (a bare directory name
// matches at any depth because of the leading **/ we prepend).
func matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match("**/"+p, rel); ok {
			return true
		}
	}
	return false
}

// loadGitignore reads root/.gitignore, if present, and returns its
// non-comment, non-blank lines as doublestar patterns.
func loadGitignore(root string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, strings.TrimPrefix(line, "/"))
	}
	return patterns, nil
}
