package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to devark through your browser",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if a.auth.IsAuthenticated(ctx) {
			fmt.Println(successStyle.Render("Already logged in."))
			return nil
		}

		sess, err := a.auth.StartLogin(ctx)
		if err != nil {
			return err
		}
		offerURL(a.cfg, sess.AuthURL)

		fmt.Println(dimStyle.Render("Waiting for login to complete..."))
		if err := a.auth.WaitForCompletion(ctx, sess.ID); err != nil {
			return err
		}

		fmt.Println(successStyle.Render("Logged in."))
		if user := a.auth.GetCurrentUser(ctx); user != nil &&
			user.Username != "" {
			fmt.Printf("Welcome, %s!\n", user.Username)
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored devark token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.auth.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in devark account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		user := a.auth.GetCurrentUser(cmd.Context())
		if user == nil {
			fmt.Println(warnStyle.Render(
				"Not logged in — run 'devark login'.",
			))
			return nil
		}
		if user.Username != "" {
			fmt.Println(user.Username)
		} else {
			fmt.Println(user.ID)
		}
		return nil
	},
}
