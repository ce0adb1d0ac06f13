package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reviewcrew",
	Short: "Multi-agent code review crew",
	Long: `Reviewcrew runs a crew of specialist review agents over a piece of code
and produces a single merge decision.

The default crew has five agents: a code review engineer, a security
analyst, a frontend review engineer, and an infrastructure analyst review
the code independently and in parallel; a technical lead then synthesizes
their findings into APPROVE, REQUEST CHANGES, or REJECT.

Custom crews with their own agents and task dependency graphs can be
defined in a YAML file and passed with --crew.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
