package app

import (
	"fmt"

	"github.com/alexedwards/argon2id"
	"github.com/spf13/cobra"

	"github.com/sparti-cms/sparti-settings/internal/uniuri"
)

func newTokenCmd() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the api bearer token",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help() //nolint:wrapcheck
		},
	}

	tokenCmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Print a new api token and the hash to put into Webserver.APITokenHash",
		Args:  cobra.ArbitraryArgs,
		RunE: helpOnArgs(func(cmd *cobra.Command) error {
			token, err := uniuri.Token()
			if err != nil {
				return err //nolint:wrapcheck
			}

			hash, err := argon2id.CreateHash(token, argon2id.DefaultParams)
			if err != nil {
				return fmt.Errorf("failed to hash token: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "token: %s\n", token)
			fmt.Fprintf(out, "hash:  %s\n", hash)

			return nil
		}),
	})

	return tokenCmd
}
