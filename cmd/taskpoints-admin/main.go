package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/juniperhall/taskpoints/internal/database"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "taskpoints-admin",
	Short: "Administrative tasks for a taskpoints database",
	Long:  "taskpoints-admin manages tenants and seeds demo data directly against the database, without going through the HTTP API.",
}

func init() {
	defaultPath := os.Getenv("TASKPOINTS_DB_PATH")
	if defaultPath == "" {
		defaultPath = "taskpoints.db"
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultPath, "Path to the sqlite database")
}

// openDB opens the database at the --db path, running migrations.
func openDB() (*sql.DB, error) {
	db, err := database.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}
	return db, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
