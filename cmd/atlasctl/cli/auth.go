package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/atlas-erp/atlas-console/internal/session"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")

		c, err := newConsole(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.manager.Login(cmd.Context(), username, password); err != nil {
			var loginErr *session.LoginError
			if errors.As(err, &loginErr) {
				return fmt.Errorf("login failed: %s", loginErr.Message)
			}
			return fmt.Errorf("login failed: %w", err)
		}

		snap := c.manager.Snapshot()
		fmt.Printf("Logged in as %s\n", snap.Principal.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout and remove stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole(cmd.Context())
		if err != nil {
			return err
		}
		if !c.manager.Authenticated() {
			fmt.Println("Not logged in.")
			return nil
		}
		c.manager.Logout(cmd.Context())
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current principal and permission set",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.require(""); err != nil {
			return err
		}

		snap := c.manager.Snapshot()
		fmt.Printf("Username:  %s\n", snap.Principal.Username)
		fmt.Printf("Email:     %s\n", snap.Principal.Email)
		fmt.Printf("Superuser: %t\n", snap.Principal.IsSuperuser)
		if snap.Principal.Company != nil {
			fmt.Printf("Company:   %s\n", snap.Principal.Company.Name)
		}
		fmt.Println("Permissions:")
		if snap.Principal.IsSuperuser {
			fmt.Println("  (superuser: all permissions)")
			return nil
		}
		for _, name := range snap.Permissions.Names() {
			fmt.Printf("  %s\n", name)
		}
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the session open and report permission changes",
	Long: `Keep the session open, polling the backend for permission changes
until interrupted. A change made by an administrator shows up here without
a re-login.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.require(""); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		refresher := session.NewRefresher(c.manager, c.cfg.RefreshInterval, c.logger, func(perms session.PermissionSet) {
			fmt.Println("Your permissions have been updated:")
			for _, name := range perms.Names() {
				fmt.Printf("  %s\n", name)
			}
		})

		fmt.Printf("Watching for permission changes every %s. Ctrl-C to stop.\n", c.cfg.RefreshInterval)
		refresher.Run(ctx)

		if !c.manager.Authenticated() {
			fmt.Println("Session ended.")
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().String("username", "", "Username (required)")
	loginCmd.Flags().String("password", "", "Password (required)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(watchCmd)
}
