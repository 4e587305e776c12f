package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"biblioaccess/internal/client"
	"biblioaccess/internal/session"
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List accounts (librarian only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(apiClient *client.Client, _ *session.Store) error {
				accounts, err := apiClient.Users(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(accounts))
				for _, account := range accounts {
					rows = append(rows, []string{
						formatID(account.ID),
						account.Name,
						account.Email,
						account.Role,
					})
				}
				table := renderTable(
					[]string{"ID", "Name", "Email", "Role"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}
