package piiscan

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redactyl/piiscan/internal/engine"
)

func init() {
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "List the labels piiscan can report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			det := engine.DefaultDetector()
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%-14s %-6s %s\n", "LABEL", "WEIGHT", "CHECK")
			for _, d := range det.Library.Definitions() {
				check := "-"
				if _, ok := det.Scorer.Validators[d.Label]; ok {
					check = "validated"
					if det.Scorer.Boosted[d.Label] {
						check = "validated, boosted"
					}
				}
				_, _ = fmt.Fprintf(out, "%-14s %-6.2f %s\n", d.Label, d.Weight, check)
			}
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}
