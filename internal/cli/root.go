// Package cli wires the load-testing engine into the surge command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.1.0"

var (
	flagNoColor bool
	flagVerbose bool
)

// RootCmd is the base command when surge is called without subcommands.
var RootCmd = &cobra.Command{
	Use:     "surge",
	Short:   "Concurrent load-testing harness for trading and market-data systems",
	Version: version,
	Long: `Surge runs bounded-concurrency synthetic workloads against a target
system, collects per-operation latency samples, and aggregates them into
statistical reports with pass/fail recommendations.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	RootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")

	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(inspectCmd)
}

// newLogger builds the CLI logger: human-readable when verbose, otherwise
// errors only.
func newLogger() (*zap.Logger, error) {
	if flagVerbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	return cfg.Build()
}
