// Package main provides the entry point for the ivtree CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/ivtree/cmd/ivtree/commands"
	"github.com/Sumatoshi-tech/ivtree/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "ivtree",
		Short: "ivtree - augmented AVL interval tree workbench",
		Long: `ivtree runs scripted workloads against a self-balancing interval tree
and reports every step's outcome, change events and invariant checks.

Commands:
  run       Execute a YAML workload script
  version   Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ivtree %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
