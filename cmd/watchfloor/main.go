// Command watchfloor scores news articles for intelligence relevance.
//
// Usage:
//
//	watchfloor analyze [file|-]   Assess a JSON array of articles
//	watchfloor fetch              Run one fetch and analysis cycle
//	watchfloor watch              Run cycles on the configured schedule
//	watchfloor report             Browse stored assessments
//	watchfloor version            Print version information
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abelbrown/watchfloor/internal/logging"
)

const (
	Version = "0.1.0"
	appName = "watchfloor"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Multi-factor intelligence scoring for news feeds",
		Long: `watchfloor ingests news articles and assesses each one: a 0-100
relevance score, a priority tier, a confidence, extracted entities, a
threat classification and a duplicate verdict against recent coverage.`,
		SilenceUsage: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Close()
		},
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		analyzeCmd(g),
		fetchCmd(g),
		watchCmd(g),
		reportCmd(g),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}
