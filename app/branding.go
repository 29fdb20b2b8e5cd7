package app

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sparti-cms/sparti-settings/internal/daemon"
	"github.com/sparti-cms/sparti-settings/internal/reconcile"
	"github.com/sparti-cms/sparti-settings/internal/settings"
)

const (
	okMark   = "✓"
	failMark = "✗"
)

func newSyncBrandingCmd(opts *options) *cobra.Command {
	brandingCmd := &cobra.Command{
		Use:   "sync-branding",
		Short: "Report, fill and sync tenant branding settings",
		Long: `sync-branding works on the branding settings of every tenant.

  status                      completeness of every tenant
  ensure-defaults             fill missing keys with schema defaults
  sync-all <master|global>    copy missing keys from a master tenant or the global scope`,
		Args: cobra.ArbitraryArgs,
		// no or unknown sub-command: show what is available
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help() //nolint:wrapcheck
		},
	}

	brandingCmd.AddCommand(
		newBrandingStatusCmd(opts),
		newEnsureDefaultsCmd(opts),
		newSyncAllCmd(opts),
	)

	return brandingCmd
}

func newBrandingStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the completeness of every tenant",
		Args:  cobra.ArbitraryArgs,
		RunE: helpOnArgs(opts.withConfig(func(cmd *cobra.Command) error {
			db, engine, err := daemon.Bootstrap(&opts.cfg)
			if err != nil {
				return err //nolint:wrapcheck
			}
			defer closeDB(db)

			summary, err := engine.GetAllTenantsSyncStatus(cmd.Context())
			if err != nil {
				return err //nolint:wrapcheck
			}

			return printStatus(cmd.OutOrStdout(), summary)
		})),
	}
}

func newEnsureDefaultsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-defaults",
		Short: "Fill the missing keys of every tenant with schema defaults",
		Args:  cobra.ArbitraryArgs,
		RunE: helpOnArgs(opts.withConfig(func(cmd *cobra.Command) error {
			db, engine, err := daemon.Bootstrap(&opts.cfg)
			if err != nil {
				return err //nolint:wrapcheck
			}
			defer closeDB(db)

			result, err := engine.EnsureAllTenantsHaveDefaults(cmd.Context())
			if err != nil {
				return err //nolint:wrapcheck
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Ensuring branding defaults for %d tenants\n", result.TenantsProcessed)

			for _, r := range result.Results {
				if !r.Success {
					fmt.Fprintf(out, "  %s %s: %s\n", failMark, tenantLabel(r.TenantID, r.TenantName), r.Error)
					continue
				}

				fmt.Fprintf(out, "  %s %s: added %d keys%s\n",
					okMark, tenantLabel(r.TenantID, r.TenantName), len(r.Inserted), keyList(r.Inserted))
			}

			printBatchFooter(out, result)

			return nil
		})),
	}
}

func newSyncAllCmd(opts *options) *cobra.Command {
	var exclude []string

	syncAllCmd := &cobra.Command{
		Use:   "sync-all <master|global>",
		Short: "Copy missing keys from a master tenant or the global scope to every tenant",
		Long: `sync-all copies the branding settings of the master to every other tenant.
Only keys missing at a tenant are written; existing values are never overwritten.
Pass the literal "global" to use the global scope as master.`,
		Args: cobra.ArbitraryArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				_ = cmd.Usage()

				return &ArgumentError{Name: "master|global"}
			}

			return opts.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			master, err := settings.ParseScope(args[0])
			if err != nil {
				return err //nolint:wrapcheck
			}

			db, engine, err := daemon.Bootstrap(&opts.cfg)
			if err != nil {
				return err //nolint:wrapcheck
			}
			defer closeDB(db)

			result, err := engine.SyncAllTenantsFromMaster(cmd.Context(), master, reconcile.SyncOptions{
				Policy:      reconcile.PolicyFromFlags(false, true),
				ExcludeKeys: mergeKeys(opts.cfg.Sync.ExcludeKeys, exclude),
			})
			if err != nil {
				return err //nolint:wrapcheck
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Syncing branding from %s to %d tenants\n", master, result.TenantsProcessed)

			for _, r := range result.Results {
				if !r.Success {
					fmt.Fprintf(out, "  %s %s: %s\n", failMark, tenantLabel(r.TenantID, r.TenantName), r.Error)
					continue
				}

				fmt.Fprintf(out, "  %s %s: %d inserted, %d updated, %d skipped\n",
					okMark, tenantLabel(r.TenantID, r.TenantName), len(r.Inserted), len(r.Updated), len(r.Skipped))
			}

			printBatchFooter(out, result)

			return nil
		},
	}

	syncAllCmd.Flags().StringSliceVar(&exclude, "exclude", nil, "keys never copied, in addition to Sync.ExcludeKeys")

	return syncAllCmd
}

func printStatus(out io.Writer, summary reconcile.StatusSummary) error {
	fmt.Fprintf(out, "Branding status: %d/%d tenants complete\n\n", summary.CompleteCount, summary.TotalTenants)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "\tTENANT\tNAME\tKEYS\tMISSING")

	for _, s := range summary.Tenants {
		mark := okMark
		if !s.Complete {
			mark = failMark
		}

		missing := strings.Join(s.MissingKeys, ", ")
		if s.Error != "" {
			missing = "error: " + s.Error
		}

		if missing == "" {
			missing = "-"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\n", mark, s.TenantID, dash(s.TenantName), s.Existing, s.Total, missing)
	}

	return w.Flush() //nolint:wrapcheck
}

func printBatchFooter(out io.Writer, result reconcile.BatchResult) {
	fmt.Fprintf(out, "Done: %d succeeded, %d failed (run %s)\n", result.Succeeded, result.Failed, result.RunID)
}

func tenantLabel(id, name string) string {
	if name == "" {
		return id
	}

	return fmt.Sprintf("%s (%s)", name, id)
}

func keyList(keys []string) string {
	if len(keys) == 0 {
		return ""
	}

	return " [" + strings.Join(keys, ", ") + "]"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}

// mergeKeys joins both lists without duplicates, keeping first occurrences.
func mergeKeys(a, b []string) []string {
	merged := make([]string, 0, len(a)+len(b))

	for _, k := range slices.Concat(a, b) {
		k = strings.TrimSpace(k)
		if k != "" && !slices.Contains(merged, k) {
			merged = append(merged, k)
		}
	}

	return merged
}
