// Package app implements the command line interface of sparti-settings.
package app

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sparti-cms/sparti-settings/internal/config"
	"github.com/sparti-cms/sparti-settings/internal/logger"
)

// ArgumentError reports a missing required positional argument.
type ArgumentError struct {
	Name string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("missing required argument <%s>", e.Name)
}

// options are shared by all commands of one invocation.
type options struct {
	configPath string
	envFile    string
	cfg        config.Config
}

// load reads .env, the configuration and initializes the logger.
func (o *options) load() error {
	if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", o.envFile, err)
	}

	cfg, err := config.ReadConfig(o.configPath)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if err = logger.Init(cfg.Log); err != nil {
		return err //nolint:wrapcheck
	}

	o.cfg = cfg

	return nil
}

// withConfig loads the configuration before run.
func (o *options) withConfig(run func(cmd *cobra.Command) error) func(cmd *cobra.Command) error {
	return func(cmd *cobra.Command) error {
		if err := o.load(); err != nil {
			return err
		}

		return run(cmd)
	}
}

// helpOnArgs builds the RunE of a command without arguments: unexpected
// arguments print the help and succeed.
func helpOnArgs(run func(cmd *cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return cmd.Help() //nolint:wrapcheck
		}

		return run(cmd)
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "sparti-settings",
		Short: "sparti-settings keeps tenant branding settings complete and in sync",
		Long: `sparti-settings manages the branding settings of every tenant of a
multi-tenant CMS: it fills missing keys with schema defaults, copies settings
from a master tenant or the global scope, and reports completeness.`,
		Args:          cobra.OnlyValidArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "./etc/", "directory containing main.toml")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the configuration")

	rootCmd.AddCommand(
		newStartCmd(opts),
		newInitSchemasCmd(opts),
		newSyncBrandingCmd(opts),
		newSchemaCmd(),
		newConfigCmd(opts),
		newTokenCmd(),
	)

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute() //nolint:wrapcheck
}
