package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/watlas/internal/domain/services"
	"github.com/ersonp/watlas/internal/infrastructure/config"
)

type credentialFlags struct {
	email    string
	password string
}

func (f *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&f.password, "password", "p", "", "Account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
}

func (f *credentialFlags) credentials(cmd *cobra.Command) (services.Credentials, error) {
	password := f.password
	if password == "" {
		p, err := promptLine(cmd.InOrStdin(), "Password: ")
		if err != nil {
			return services.Credentials{}, err
		}
		password = p
	}
	return services.Credentials{Email: f.email, Password: password}, nil
}

func newSignUpCmd() *cobra.Command {
	var flags credentialFlags

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Long:  "Creates an account. The first account of a wiki becomes its admin; later ones start as viewers.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignIn(cmd, flags, true)
		},
	}
	flags.register(cmd)

	return cmd
}

func newLoginCmd() *cobra.Command {
	var flags credentialFlags

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignIn(cmd, flags, false)
		},
	}
	flags.register(cmd)

	return cmd
}

func runSignIn(cmd *cobra.Command, flags credentialFlags, signUp bool) error {
	ctx := cmd.Context()

	creds, err := flags.credentials(cmd)
	if err != nil {
		return err
	}

	return withDeps(cmd, func(d *Deps) error {
		var result *services.SignInResult
		if signUp {
			result, err = d.App.Auth.HandleSignUp(ctx, creds)
		} else {
			result, err = d.App.Auth.HandleSignIn(ctx, creds)
		}
		if err != nil {
			return err
		}

		stored := &config.SessionFile{
			Token:     result.Token,
			Email:     result.Session.Email,
			ExpiresAt: result.ExpiresAt,
		}
		if err := stored.Save(d.BasePath); err != nil {
			return err
		}

		if signUp {
			fmt.Printf("Account created for %s (role: %s)\n", result.Session.Email, result.Session.Role)
		}
		fmt.Printf("Signed in as %s until %s\n", result.Session.Email, result.ExpiresAt.Local().Format("2006-01-02 15:04"))
		return nil
	})
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(d *Deps) error {
				if d.Session != nil {
					if err := d.App.Auth.HandleSignOut(cmd.Context(), d.Session); err != nil {
						return err
					}
				}
				if err := config.ClearSession(d.BasePath); err != nil {
					return err
				}
				fmt.Println("Signed out.")
				return nil
			})
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account and the current view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(d *Deps) error {
				if d.Session == nil {
					fmt.Println("Not signed in.")
				} else {
					fmt.Printf("%s (role: %s)\n", d.Session.Email, d.Session.Role)
				}
				fmt.Printf("View: %s\n", d.View.Describe())
				if d.Config.Qdrant.Enabled {
					fmt.Println("Semantic search: enabled")
				}
				return nil
			})
		},
	}
}
