package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var flagQuery string

// inspectCmd queries a previously exported results artifact, e.g.
//
//	surge inspect results.json -q 'scenarios.order-flow.results.p95LatencyMillis'
var inspectCmd = &cobra.Command{
	Use:   "inspect <results.json>",
	Short: "Query a saved results artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading artifact: %w", err)
		}
		if !gjson.ValidBytes(data) {
			return fmt.Errorf("%s is not valid JSON", args[0])
		}

		if flagQuery == "" {
			fmt.Fprintln(os.Stdout, string(data))
			return nil
		}

		result := gjson.GetBytes(data, flagQuery)
		if !result.Exists() {
			return fmt.Errorf("no value at %q", flagQuery)
		}
		fmt.Fprintln(os.Stdout, result.String())
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "gjson path to extract from the artifact")
}
