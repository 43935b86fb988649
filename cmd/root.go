// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/esacteksab/gh-audit/config"
	"github.com/esacteksab/gh-audit/githubclient"
	"github.com/esacteksab/gh-audit/registry"
	"github.com/esacteksab/gh-audit/remotemeta"
	"github.com/esacteksab/gh-audit/utils"
)

// Variables to hold build information, populated at build time.
var (
	Version string // Application version
	Date    string // Build date
	Commit  string // Git commit hash
	BuiltBy string // Builder identifier
)

// Persistent flags shared by the audit and fix subcommands.
var (
	ConfigPath string // Path to a user config file
	Verbose    bool   // Whether to enable debug logging
	NoRemote   bool   // Whether to skip audits that need GitHub API access
	StrictMode bool   // Whether to schema-validate every input before auditing
)

// init is automatically run before the main function.
// It sets the version information for the root command using build-time variables.
func init() {
	rootCmd.Version = utils.BuildVersion(Version, Commit, Date, BuiltBy)
	rootCmd.SetVersionTemplate(`{{printf "Version %s" .Version}}`)
	rootCmd.PersistentFlags().
		StringVarP(&ConfigPath, "config", "c", "", "path to a gh-audit config file")
	rootCmd.PersistentFlags().
		BoolVarP(&Verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().
		BoolVar(&NoRemote, "no-remote", false, "skip audits that require GitHub API access")
	rootCmd.PersistentFlags().
		BoolVar(&StrictMode, "strict", false, "reject malformed workflow/action documents before auditing")
	rootCmd.AddCommand(auditCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootCmd represents the base command: auditing the current
// repository's GitHub Actions workflows and action definitions for
// the hazards the audit catalog covers. Running `ghaudit` with no
// subcommand is shorthand for `ghaudit audit`.
var rootCmd = &cobra.Command{
	Use:          "ghaudit [path]",
	Short:        "ghaudit finds security hazards in GitHub Actions workflows and actions.",
	SilenceUsage: true,
	Args:         cobra.MaximumNArgs(1),
	RunE:         runAudit,
}

// loadRegistry discovers and loads every input under root, builds a
// remote-metadata client unless NoRemote is set, and runs the full
// audit catalog against the loaded tasks. Shared by the `audit` and
// `fix` subcommands so both see identical findings.
func loadRegistry(root string) ([]registry.Task, *registry.FindingRegistry, error) {
	utils.CreateLogger(Verbose)

	cfg := config.Default()
	if ConfigPath != "" {
		loaded, err := config.Load(ConfigPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}

	keys, err := registry.DiscoverLocal(root)
	if err != nil {
		return nil, nil, fmt.Errorf("discovering workflow and action files under %s: %w", root, err)
	}
	if len(keys) == 0 {
		utils.Logger.Infof("no workflow or action files found under %s", root)
		return nil, registry.NewFindingRegistry(cfg), nil
	}
	utils.Logger.Infof("found %d workflow/action file(s) under %s", len(keys), root)

	ctx := context.Background()
	var remote remotemeta.Interface
	if !NoRemote {
		client, err := githubclient.NewClient(ctx)
		if err != nil {
			utils.Logger.Warnf("GitHub client unavailable, remote-aware audits will be skipped: %v", err)
		} else {
			githubclient.CheckRateLimit(ctx, client)
			remote = githubclient.NewRemote(client)
		}
	}

	tasks, loadErrs := loadTasks(keys, remote, StrictMode)
	for _, err := range loadErrs {
		utils.Logger.Errorf("%v", err)
	}

	driver := registry.NewDriver(cfg)
	reg, runErrs := driver.Run(tasks)
	for _, err := range runErrs {
		utils.Logger.Errorf("%v", err)
	}
	return tasks, reg, nil
}

// loadTasks reads and parses every discovered input into a registry
// Task, collecting per-file errors instead of aborting the whole run.
func loadTasks(keys []registry.InputKey, remote remotemeta.Interface, strict bool) ([]registry.Task, []error) {
	var (
		tasks []registry.Task
		errs  []error
	)
	for _, key := range keys {
		source, err := os.ReadFile(key.Path) //nolint:gosec
		if err != nil {
			errs = append(errs, fmt.Errorf("reading %s: %w", key, err))
			continue
		}
		if len(source) == 0 {
			continue
		}
		kind := registry.DetectKind(key.Path)
		in, err := registry.BuildInput(key, source, kind, remote, strict)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tasks = append(tasks, registry.Task{Key: key, Input: in})
	}
	return tasks, errs
}

func pathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
