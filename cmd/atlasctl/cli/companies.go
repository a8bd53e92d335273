package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atlas-erp/atlas-console/internal/companies"
	"github.com/atlas-erp/atlas-console/internal/rbac"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Manage tenants",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var companiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List companies",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.require(rbac.ViewCompanies); err != nil {
			return err
		}
		list, err := c.companies.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, company := range list {
			fmt.Printf("%-4d %-24s %s\n", company.ID, company.Name, company.Description)
		}
		return nil
	},
}

var companiesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a company",
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
		if err := c.require(rbac.CreateCompany); err != nil {
			return err
		}
		company, err := c.companies.Create(cmd.Context(), companies.UpsertRequest{Name: name, Description: description})
		if err != nil {
			return err
		}
		fmt.Printf("Created company %d (%s)\n", company.ID, company.Name)
		return nil
	},
}

var companiesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a company",
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
		if err := c.require(rbac.EditCompany); err != nil {
			return err
		}
		company, err := c.companies.Update(cmd.Context(), id, companies.UpsertRequest{Name: name, Description: description})
		if err != nil {
			return err
		}
		fmt.Printf("Updated company %d (%s)\n", company.ID, company.Name)
		return nil
	},
}

var companiesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a company",
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
		if err := c.require(rbac.DeleteCompany); err != nil {
			return err
		}
		if err := c.companies.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted company %d\n", id)
		return nil
	},
}

func init() {
	companiesCreateCmd.Flags().String("name", "", "Company name (required)")
	companiesCreateCmd.Flags().String("description", "", "Description")
	companiesUpdateCmd.Flags().String("name", "", "Company name")
	companiesUpdateCmd.Flags().String("description", "", "Description")

	companiesCmd.AddCommand(companiesListCmd)
	companiesCmd.AddCommand(companiesCreateCmd)
	companiesCmd.AddCommand(companiesUpdateCmd)
	companiesCmd.AddCommand(companiesDeleteCmd)
	rootCmd.AddCommand(companiesCmd)
}
