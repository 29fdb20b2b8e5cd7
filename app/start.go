package app

import (
	"github.com/spf13/cobra"

	"github.com/sparti-cms/sparti-settings/internal/daemon"
)

func newStartCmd(opts *options) *cobra.Command {
	var devMode bool

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the settings api",
		Args:  cobra.ArbitraryArgs,
		RunE: helpOnArgs(opts.withConfig(func(_ *cobra.Command) error {
			if devMode {
				opts.cfg.DevMode = true
			}

			d, err := daemon.New(&opts.cfg)
			if err != nil {
				return err //nolint:wrapcheck
			}

			return d.Start() //nolint:wrapcheck
		})),
	}

	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode")

	return startCmd
}
