package main

import (
	"fmt"

	"cardvault/internal/app/bootstrap"

	"github.com/spf13/cobra"
)

func tokenCmd(load loader) *cobra.Command {
	var (
		subject string
		roles   []string
	)

	issue := &cobra.Command{
		Use:   "issue",
		Short: "Sign a bearer token for local testing",
		Long: `Sign an HS256 bearer token with auth.jwt_secret.

Examples:
  cardvault token issue --subject 42 --roles ROLE_USER
  cardvault token issue --subject 1 --roles ROLE_ADMIN`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load()
			if err != nil {
				return err
			}
			issuer, err := bootstrap.NewTokenIssuer(cfg.Auth)
			if err != nil {
				return err
			}
			token, err := issuer.Issue(subject, roles)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().StringVar(&subject, "subject", "", "numeric user id (may be empty for ROLE_SERVICE)")
	issue.Flags().StringSliceVar(&roles, "roles", []string{"ROLE_USER"}, "granted roles")

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Bearer token helpers",
	}
	cmd.AddCommand(issue)
	return cmd
}
