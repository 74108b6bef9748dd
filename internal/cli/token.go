package cli

import (
	"fmt"

	"freight-broker-be/internal/config"
	"freight-broker-be/internal/entity"
	"freight-broker-be/internal/pkg/serverutils"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		accountId int64
		role      string
		clientId  int64
		secret    string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := entity.ParseRole(role); err != nil {
				return err
			}
			if secret == "" {
				secret = config.Load().App.JwtSecret
			}
			if secret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}

			var client *int64
			if clientId > 0 {
				client = &clientId
			}
			tok, err := serverutils.SignToken(secret, accountId, role, client)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().Int64Var(&accountId, "account", 0, "account id (required)")
	cmd.Flags().StringVar(&role, "role", "client", "admin, client, agent or driver")
	cmd.Flags().Int64Var(&clientId, "client", 0, "client id")
	cmd.Flags().StringVar(&secret, "secret", "", "signing secret (defaults to JWT_SECRET)")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}
