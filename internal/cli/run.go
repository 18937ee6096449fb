package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quantfold/surge/internal/config"
	"github.com/quantfold/surge/internal/loadtest"
	"github.com/quantfold/surge/internal/output"
)

var (
	flagOut  string
	flagSeed int64
)

// runCmd executes a suite file against the synthetic workload generator.
// Real targets are exercised programmatically through the loadtest package;
// the CLI exists for demonstration and harness validation.
var runCmd = &cobra.Command{
	Use:   "run <suite.yaml>",
	Short: "Run a load-test suite and print the per-scenario summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		defer logger.Sync()

		suite, scenarios, err := config.LoadSuite(args[0])
		if err != nil {
			return err
		}

		workload := loadtest.NewSyntheticWorkload(flagSeed).Workload()
		orch := loadtest.NewOrchestrator(logger)
		reports := orch.RunAll(cmd.Context(), scenarios, workload)

		fmt.Fprintf(os.Stdout, "suite %q: %d/%d scenarios completed\n\n",
			suite.Name, len(reports), len(scenarios))
		output.NewPrinter(os.Stdout, flagNoColor).PrintSuite(reports)

		if flagOut != "" {
			artifact := loadtest.BuildArtifact(reports)
			if err := artifact.WriteFile(flagOut); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "results written to %s\n", flagOut)
		}

		if len(reports) < len(scenarios) {
			return fmt.Errorf("%d scenario(s) failed to run", len(scenarios)-len(reports))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&flagOut, "out", "o", "", "write the JSON results artifact to this path")
	runCmd.Flags().Int64Var(&flagSeed, "seed", 1, "seed for the synthetic workload generator")
}
