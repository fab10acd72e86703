package piiscan

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redactyl/piiscan/internal/config"
)

var (
	cfgOutput string
	cfgForce  bool
	cfgGlobal bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a commented .piiscan.yml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := cfgOutput
			if cfgGlobal {
				p, err := config.GlobalPath()
				if err != nil {
					return err
				}
				path = p
				if err := mkdirFor(path); err != nil {
					return err
				}
			}
			return writeNew(cmd, path, []byte(config.Starter), cfgForce)
		},
	}
	cfgCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&cfgOutput, "output", "o", ".piiscan.yml", "output file path")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
	initCmd.Flags().BoolVar(&cfgGlobal, "global", false, "write the global config instead")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the global config file location",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := config.GlobalPath()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}
	cfgCmd.AddCommand(pathCmd)
}
