package cmd

import (
	"fmt"
	"os"

	"github.com/example/holidaze/internal/holidaze"
	"github.com/spf13/cobra"
)

func newLoginCmd(f *rootFlags) *cobra.Command {
	var email, password string
	c := &cobra.Command{
		Use:   "login",
		Short: "Log in to the venue service and remember the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := f.openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if password == "" {
				password = os.Getenv("HOLIDAZE_PASSWORD")
			}
			sess, err := a.Auth.Login(ctx, cliSession, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s)\n", sess.Profile.Name, sess.Profile.Email)
			return nil
		},
	}
	c.Flags().StringVar(&email, "email", "", "account email")
	c.Flags().StringVar(&password, "password", "", "account password (or $HOLIDAZE_PASSWORD)")
	_ = c.MarkFlagRequired("email")
	return c
}

func newRegisterCmd(f *rootFlags) *cobra.Command {
	var in holidaze.RegisterInput
	c := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := f.openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.Auth.Register(ctx, cliSession, in)
			if err != nil {
				return err
			}
			role := "customer"
			if sess.Profile.VenueManager {
				role = "venue manager"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s as %s\n", sess.Profile.Name, role)
			return nil
		},
	}
	c.Flags().StringVar(&in.Name, "name", "", "profile name (letters, numbers, underscore)")
	c.Flags().StringVar(&in.Email, "email", "", "stud.noroff.no email")
	c.Flags().StringVar(&in.Password, "password", "", "at least 8 characters")
	c.Flags().BoolVar(&in.VenueManager, "venue-manager", false, "register as a venue manager")
	_ = c.MarkFlagRequired("name")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	return c
}

func newLogoutCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token and profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := f.openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Auth.Logout(ctx, cliSession); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newWhoamiCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := f.openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := session(ctx, a)
			if err != nil {
				return err
			}
			p := sess.Profile
			fmt.Fprintf(cmd.OutOrStdout(), "name=%s email=%s venue_manager=%t\n", p.Name, p.Email, p.VenueManager)
			return nil
		},
	}
}
