package app

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sparti-cms/sparti-settings/internal/daemon"
	database "github.com/sparti-cms/sparti-settings/internal/db"
	"github.com/sparti-cms/sparti-settings/internal/db/controller/schemadoc"
	"github.com/sparti-cms/sparti-settings/internal/settings"
)

// closeDB releases the connection a command opened.
func closeDB(db *gorm.DB) {
	if err := database.Close(db); err != nil {
		log.Warn().Err(err).Msg("failed to close database")
	}
}

func newInitSchemasCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "init-schemas",
		Short: "Create or update the branding schema document of every tenant and the global scope",
		Args:  cobra.ArbitraryArgs,
		RunE: helpOnArgs(opts.withConfig(func(cmd *cobra.Command) error {
			db, engine, err := daemon.Bootstrap(&opts.cfg)
			if err != nil {
				return err //nolint:wrapcheck
			}
			defer closeDB(db)

			schema := engine.Schema()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Initializing schema %s %s\n", schema.Key, schema.Version)

			report, err := schemadoc.InitAll(cmd.Context(), db, schema, opts.cfg.Sync.Languages)
			if err != nil {
				return err //nolint:wrapcheck
			}

			fmt.Fprintf(out, "✓ %d scopes: %d created, %d updated, %d unchanged\n",
				report.Scopes, report.Created, report.Updated, report.Unchanged)

			return nil
		})),
	}
}

func newSchemaCmd() *cobra.Command {
	var format string

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect the branding schema",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help() //nolint:wrapcheck
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Print the branding schema document",
		Args:  cobra.ArbitraryArgs,
		RunE: helpOnArgs(func(cmd *cobra.Command) error {
			var (
				data []byte
				err  error
			)

			switch format {
			case "json":
				data, err = settings.EncodeDocumentIndent(settings.Branding())
			case "yaml":
				data, err = settings.EncodeDocumentYAML(settings.Branding())
			default:
				return fmt.Errorf("unsupported format %q, use json or yaml", format) //nolint:err113
			}

			if err != nil {
				return err //nolint:wrapcheck
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))

			return err //nolint:wrapcheck
		}),
	}

	exportCmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	schemaCmd.AddCommand(exportCmd)

	return schemaCmd
}
