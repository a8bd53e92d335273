package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/atlas-erp/atlas-console/internal/audit"
	"github.com/atlas-erp/atlas-console/internal/rbac"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List audit log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		action, _ := cmd.Flags().GetString("action")
		actor, _ := cmd.Flags().GetString("actor")
		page, _ := cmd.Flags().GetInt("page")

		c, err := newConsole(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.require(rbac.ViewAuditLogs); err != nil {
			return err
		}
		entries, err := c.audit.List(cmd.Context(), audit.Filters{Action: action, Actor: actor, Page: page})
		if err != nil {
			return err
		}
		for _, entry := range entries {
			fmt.Printf("%s %-12s %-20s %s/%s\n",
				entry.Timestamp.Format(time.RFC3339), entry.Action, entry.Actor, entry.Entity, entry.EntityID)
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().String("action", "", "Filter by action")
	auditCmd.Flags().String("actor", "", "Filter by actor username")
	auditCmd.Flags().Int("page", 0, "Page number")
	rootCmd.AddCommand(auditCmd)
}
