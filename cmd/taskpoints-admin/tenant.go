package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/juniperhall/taskpoints/internal/store"
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenants",
}

var tenantCreateCmd = &cobra.Command{
	Use:   "create [name] [password]",
	Short: "Create a tenant",
	Args:  cobra.ExactArgs(2),
	RunE:  runTenantCreate,
}

var tenantListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tenants",
	RunE:  runTenantList,
}

var tenantSetPasswordCmd = &cobra.Command{
	Use:   "set-password [name] [password]",
	Short: "Reset a tenant's password without knowing the current one",
	Args:  cobra.ExactArgs(2),
	RunE:  runTenantSetPassword,
}

func init() {
	rootCmd.AddCommand(tenantCmd)
	tenantCmd.AddCommand(tenantCreateCmd)
	tenantCmd.AddCommand(tenantListCmd)
	tenantCmd.AddCommand(tenantSetPasswordCmd)
}

func runTenantCreate(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	tenant, err := store.NewTenantStore(db).Create(args[0], args[1])
	if err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}

	fmt.Printf("Created tenant %q (id %d)\n", tenant.Name, tenant.ID)
	return nil
}

func runTenantList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	tenants, err := store.NewTenantStore(db).List()
	if err != nil {
		return fmt.Errorf("list tenants: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED")
	for _, t := range tenants {
		fmt.Fprintf(w, "%d\t%s\t%s\n", t.ID, t.Name, t.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func runTenantSetPassword(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ts := store.NewTenantStore(db)
	tenant, err := ts.GetByName(args[0])
	if err != nil {
		return fmt.Errorf("look up tenant: %w", err)
	}
	if tenant == nil {
		return fmt.Errorf("tenant %q not found", args[0])
	}

	if err := ts.SetPassword(tenant.ID, args[1]); err != nil {
		return fmt.Errorf("set password: %w", err)
	}

	fmt.Printf("Password updated for tenant %q\n", tenant.Name)
	return nil
}
