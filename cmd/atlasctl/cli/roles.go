package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atlas-erp/atlas-console/internal/rbac"
	"github.com/atlas-erp/atlas-console/internal/roles"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Manage roles",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var rolesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List roles",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.require(rbac.ViewRoles); err != nil {
			return err
		}
		list, err := c.roles.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, role := range list {
			fmt.Printf("%-4d %-24s %s\n", role.ID, role.Name, strings.Join(role.Permissions, ","))
		}
		return nil
	},
}

var rolesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a role",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		description, _ := cmd.Flags().GetString("description")
		if name == "" {
			return fmt.Errorf("--name is required")
		}
		c, err := newConsole(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.require(rbac.CreateRole); err != nil {
			return err
		}
		role, err := c.roles.Create(cmd.Context(), roles.UpsertRequest{Name: name, Description: description})
		if err != nil {
			return err
		}
		fmt.Printf("Created role %d (%s)\n", role.ID, role.Name)
		return nil
	},
}

var rolesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		description, _ := cmd.Flags().GetString("description")
		c, err := newConsole(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.require(rbac.EditRole); err != nil {
			return err
		}
		role, err := c.roles.Update(cmd.Context(), id, roles.UpsertRequest{Name: name, Description: description})
		if err != nil {
			return err
		}
		fmt.Printf("Updated role %d (%s)\n", role.ID, role.Name)
		return nil
	},
}

var rolesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a role",
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
		if err := c.require(rbac.DeleteRole); err != nil {
			return err
		}
		if err := c.roles.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted role %d\n", id)
		return nil
	},
}

var rolesAssignPermissionsCmd = &cobra.Command{
	Use:   "assign-permissions <role-id>",
	Short: "Replace a role's permission set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		roleID, err := parseID(args[0])
		if err != nil {
			return err
		}
		rawIDs, _ := cmd.Flags().GetString("permission-ids")
		permissionIDs, err := parseIDList(rawIDs)
		if err != nil {
			return err
		}
		c, err := newConsole(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.require(rbac.ManageRolePermissions); err != nil {
			return err
		}
		if err := c.roles.AssignPermissions(cmd.Context(), roleID, permissionIDs); err != nil {
			return err
		}
		fmt.Printf("Assigned %d permissions to role %d\n", len(permissionIDs), roleID)
		return nil
	},
}

func init() {
	rolesCreateCmd.Flags().String("name", "", "Role name (required)")
	rolesCreateCmd.Flags().String("description", "", "Description")
	rolesUpdateCmd.Flags().String("name", "", "Role name")
	rolesUpdateCmd.Flags().String("description", "", "Description")
	rolesAssignPermissionsCmd.Flags().String("permission-ids", "", "Comma-separated permission IDs")

	rolesCmd.AddCommand(rolesListCmd)
	rolesCmd.AddCommand(rolesCreateCmd)
	rolesCmd.AddCommand(rolesUpdateCmd)
	rolesCmd.AddCommand(rolesDeleteCmd)
	rolesCmd.AddCommand(rolesAssignPermissionsCmd)
	rootCmd.AddCommand(rolesCmd)
}
