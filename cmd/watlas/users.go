package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts (admin)",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List accounts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDeps(cmd, func(d *Deps) error {
					users, err := d.App.Auth.HandleListUsers(cmd.Context(), d.Session)
					if err != nil {
						return err
					}
					fmt.Printf("%-38s %-32s %s\n", "ID", "EMAIL", "ROLE")
					fmt.Printf("%-38s %-32s %s\n", "--", "-----", "----")
					for _, u := range users {
						fmt.Printf("%-38s %-32s %s\n", u.ID, u.Email, u.Role)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "role <user-id-or-email> <viewer|editor|admin>",
			Short: "Change the role of an account",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDeps(cmd, func(d *Deps) error {
					userID := args[0]
					if strings.Contains(userID, "@") {
						users, err := d.App.Auth.HandleListUsers(cmd.Context(), d.Session)
						if err != nil {
							return err
						}
						for _, u := range users {
							if strings.EqualFold(u.Email, args[0]) {
								userID = u.ID
								break
							}
						}
					}

					profile, err := d.App.Auth.HandleSetRole(cmd.Context(), d.Session, userID, args[1])
					if err != nil {
						return err
					}
					fmt.Printf("%s is now %s\n", profile.Email, profile.Role)
					return nil
				})
			},
		},
	)

	return cmd
}
