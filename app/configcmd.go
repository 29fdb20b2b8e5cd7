package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sparti-cms/sparti-settings/internal/config"
)

func newConfigCmd(opts *options) *cobra.Command {
	var asJSON bool

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help() //nolint:wrapcheck
		},
	}

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration",
		Args:  cobra.ArbitraryArgs,
		RunE: helpOnArgs(opts.withConfig(func(cmd *cobra.Command) error {
			dump := config.DumpConfig
			if asJSON {
				dump = config.DumpConfigJSON
			}

			out, err := dump(&opts.cfg)
			if err != nil {
				return err //nolint:wrapcheck
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), out)

			return err //nolint:wrapcheck
		})),
	}

	dumpCmd.Flags().BoolVar(&asJSON, "json", false, "print json instead of toml")
	configCmd.AddCommand(dumpCmd)

	return configCmd
}
