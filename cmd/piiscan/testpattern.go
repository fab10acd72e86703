package piiscan

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redactyl/piiscan/internal/engine"
	"github.com/redactyl/piiscan/internal/policy"
	"github.com/redactyl/piiscan/internal/report"
	"github.com/redactyl/piiscan/internal/types"
)

func init() {
	cmd := &cobra.Command{
		Use:   "test-pattern <label>",
		Short: "Run one label's pattern against text read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, ok := types.ParseLabel(args[0])
			if !ok {
				return &unknownLabelError{name: args[0]}
			}
			det := engine.NewDetector(engine.Config{EnableLabels: []types.Label{l}})
			fs, err := det.ScanReader(cmd.InOrStdin(), 0)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			res := policy.Result(fs, policy.Default(policy.DefaultThreshold))
			return report.WriteTable(cmd.OutOrStdout(), res, report.Options{NoColor: true})
		},
	}
	rootCmd.AddCommand(cmd)
}
