package main

import (
	"context"
	"fmt"
	"os"

	"github.com/greenstay/carbon_backend/config"
	"github.com/greenstay/carbon_backend/models"
)

// Rebuilds every cached daily emission total from the consumption ledger.
// Run after hand-edits to the database or after restoring a backup.
func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	models.MigrateTable()

	changed, err := models.RefreshAllDailyEmissions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rebuild failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("daily emission rebuild complete: %d record(s) corrected\n", changed)
}
