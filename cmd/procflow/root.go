package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/procflow-tools/procflow/internal/loader"
	"github.com/procflow-tools/procflow/internal/logger"
	"github.com/procflow-tools/procflow/internal/model"
	"github.com/procflow-tools/procflow/internal/scope"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "procflow",
		Short: "Engineering network development tools",
		Long: `Procflow works on directories of TOML node files describing an
engineering network: branches carrying component blocks, groups,
geographic markers and the edges connecting them.

A network directory holds one TOML file per node plus an optional
config.toml with global properties and scope inheritance rules.`,
		SilenceUsage: true,
	}
	return cmd
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// networkDir returns the positional network directory argument, defaulting
// to the current directory.
func networkDir(args []string, idx int) string {
	if len(args) > idx {
		return args[idx]
	}
	return "."
}

// loadNetwork loads a network directory, logging every loader issue. File
// level errors abort the command.
func loadNetwork(dir string) (*model.Network, error) {
	network, report, err := loader.Load(dir)
	if err != nil {
		return nil, err
	}
	for _, issue := range report.Issues {
		logger.Println(issue.String())
	}
	if report.HasErrors() {
		return nil, errors.New("network contains invalid node files")
	}
	return network, nil
}

// loadScopeConfig reads the network's config.toml. A missing file yields an
// empty configuration.
func loadScopeConfig(dir string) (scope.Config, error) {
	path := filepath.Join(dir, loader.ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		return scope.Empty(), nil
	}
	return scope.LoadConfig(path)
}
