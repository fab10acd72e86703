package piiscan

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/redactyl/piiscan/internal/policy"
)

var (
	policyOutput string
	policyForce  bool
)

func init() {
	pc := &cobra.Command{Use: "policy", Short: "Policy document helpers"}
	rootCmd.AddCommand(pc)

	validateCmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a policy document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := policy.LoadFile(args[0])
			if err != nil {
				return err
			}
			if err := doc.CheckVersion(version); err != nil {
				return err
			}
			p, err := doc.Profile(policy.DefaultThreshold)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d blocked labels, %d thresholds, default threshold %.2f)\n",
				args[0], len(p.BlockedLabels), len(p.Thresholds), p.DefaultThreshold)
			return nil
		},
	}
	pc.AddCommand(validateCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the built-in policy as a starting document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc := policy.DocumentFor(policy.Default(policy.DefaultThreshold))
			doc.Requires = ">=" + version
			b, err := yaml.Marshal(&doc)
			if err != nil {
				return err
			}
			return writeNew(cmd, policyOutput, b, policyForce)
		},
	}
	initCmd.Flags().StringVarP(&policyOutput, "output", "o", "piiscan-policy.yml", "output file path")
	initCmd.Flags().BoolVar(&policyForce, "force", false, "overwrite an existing file")
	pc.AddCommand(initCmd)
}

// writeNew writes b to path, refusing to replace an existing file unless
// force is set.
func writeNew(cmd *cobra.Command, path string, b []byte, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
	return nil
}
