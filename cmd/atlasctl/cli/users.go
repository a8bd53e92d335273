package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atlas-erp/atlas-console/internal/rbac"
	"github.com/atlas-erp/atlas-console/internal/users"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.require(rbac.ViewUsers); err != nil {
			return err
		}
		list, err := c.users.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, user := range list {
			status := "active"
			if !user.IsActive {
				status = "inactive"
			}
			company := "-"
			if user.Company != nil {
				company = user.Company.Name
			}
			fmt.Printf("%-4d %-16s %-28s %-8s %-16s %s\n",
				user.ID, user.Username, user.Email, status, company, strings.Join(user.Roles, ","))
		}
		return nil
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if username == "" || email == "" || password == "" {
			return fmt.Errorf("--username, --email, and --password are required")
		}
		c, err := newConsole(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.require(rbac.CreateUser); err != nil {
			return err
		}
		user, err := c.users.Create(cmd.Context(), users.CreateRequest{
			Username: username,
			Email:    email,
			Password: password,
			IsActive: true,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created user %d (%s)\n", user.ID, user.Username)
		return nil
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		email, _ := cmd.Flags().GetString("email")
		active, _ := cmd.Flags().GetBool("active")
		c, err := newConsole(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.require(rbac.EditUser); err != nil {
			return err
		}
		user, err := c.users.Update(cmd.Context(), id, users.UpdateRequest{Email: email, IsActive: active})
		if err != nil {
			return err
		}
		fmt.Printf("Updated user %d (%s)\n", user.ID, user.Username)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := newConsole(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.require(rbac.DeleteUser); err != nil {
			return err
		}
		if err := c.users.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted user %d\n", id)
		return nil
	},
}

var usersAssignRoleCmd = &cobra.Command{
	Use:   "assign-role <user-id> <role-id>",
	Short: "Grant a role to a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID(args[0])
		if err != nil {
			return err
		}
		roleID, err := parseID(args[1])
		if err != nil {
			return err
		}
		c, err := newConsole(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.require(rbac.ManageUserRoles); err != nil {
			return err
		}
		if err := c.users.AssignRole(cmd.Context(), userID, roleID); err != nil {
			return err
		}
		fmt.Printf("Assigned role %d to user %d\n", roleID, userID)
		return nil
	},
}

var usersRemoveRoleCmd = &cobra.Command{
	Use:   "remove-role <user-id> <role-id>",
	Short: "Revoke a role from a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID(args[0])
		if err != nil {
			return err
		}
		roleID, err := parseID(args[1])
		if err != nil {
			return err
		}
		c, err := newConsole(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.require(rbac.ManageUserRoles); err != nil {
			return err
		}
		if err := c.users.RemoveRole(cmd.Context(), userID, roleID); err != nil {
			return err
		}
		fmt.Printf("Removed role %d from user %d\n", roleID, userID)
		return nil
	},
}

var usersAssignCompanyCmd = &cobra.Command{
	Use:   "assign-company <user-id> <company-id>",
	Short: "Move a user into a tenant",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID(args[0])
		if err != nil {
			return err
		}
		companyID, err := parseID(args[1])
		if err != nil {
			return err
		}
		c, err := newConsole(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.require(rbac.EditUser); err != nil {
			return err
		}
		if err := c.users.AssignCompany(cmd.Context(), userID, companyID); err != nil {
			return err
		}
		fmt.Printf("Assigned user %d to company %d\n", userID, companyID)
		return nil
	},
}

func init() {
	usersCreateCmd.Flags().String("username", "", "Username (required)")
	usersCreateCmd.Flags().String("email", "", "Email (required)")
	usersCreateCmd.Flags().String("password", "", "Password (required)")
	usersUpdateCmd.Flags().String("email", "", "Email")
	usersUpdateCmd.Flags().Bool("active", true, "Account enabled")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersCreateCmd)
	usersCmd.AddCommand(usersUpdateCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	usersCmd.AddCommand(usersAssignRoleCmd)
	usersCmd.AddCommand(usersRemoveRoleCmd)
	usersCmd.AddCommand(usersAssignCompanyCmd)
	rootCmd.AddCommand(usersCmd)
}
