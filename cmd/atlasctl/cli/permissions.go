package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atlas-erp/atlas-console/internal/rbac"
)

var permissionsCmd = &cobra.Command{
	Use:   "permissions",
	Short: "List the permission catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.require(rbac.ViewPermissions); err != nil {
			return err
		}
		list, err := c.permissions.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, perm := range list {
			fmt.Printf("%-4d %-28s %s\n", perm.ID, perm.Name, perm.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(permissionsCmd)
}
