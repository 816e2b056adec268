package main

import (
	"context"
	"fmt"
	"os"

	"github.com/greenstay/carbon_backend/config"
	"github.com/greenstay/carbon_backend/models"
	"github.com/shopspring/decimal"
)

// Seeds a demo hotel and a handful of catalog entries so a fresh install has
// something to show. Safe to re-run: duplicates are skipped.
func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	models.MigrateTable()

	hotels := []*models.NewHotel{
		{Code: "GHH", Name: "Grand Harbor Hotel", NameEn: "Grand Harbor Hotel"},
		{Code: "RVR", Name: "Riverview Resort", NameEn: "Riverview Resort"},
	}
	for _, hotel := range hotels {
		if _, err := models.CreateHotel(ctx, hotel); err != nil {
			if models.IsKind(err, models.ErrorKindDuplicate) {
				fmt.Printf("hotel %s already exists, skipping\n", hotel.Code)
				continue
			}
			fmt.Fprintf(os.Stderr, "failed to seed hotel %s: %v\n", hotel.Code, err)
			os.Exit(1)
		}
		fmt.Printf("seeded hotel %s\n", hotel.Code)
	}

	coefficients := []*models.NewEmissionCoefficient{
		{
			Department:         "production",
			CategoryLevel1Name: "Seafood",
			CategoryLevel2Name: "Molluscs, other",
			ProductName:        "Chiton",
			ProductNameEn:      "Chiton",
			Unit:               "KG",
			Coefficient:        decimal.RequireFromString("7.30"),
		},
		{
			Department:         "production",
			CategoryLevel1Name: "Meat",
			CategoryLevel2Name: "Bovine",
			ProductName:        "Ground Beef",
			ProductNameEn:      "Ground Beef",
			Unit:               "KG",
			Coefficient:        decimal.RequireFromString("42.80"),
		},
		{
			Department:         "production",
			CategoryLevel1Name: "Meat",
			CategoryLevel2Name: "Pig meat",
			ProductName:        "Bacon",
			ProductNameEn:      "Bacon",
			Unit:               "KG",
			Coefficient:        decimal.RequireFromString("7.28"),
		},
	}
	for _, input := range coefficients {
		if _, err := models.CreateCoefficient(ctx, input); err != nil {
			if models.IsKind(err, models.ErrorKindDuplicate) {
				fmt.Printf("coefficient %s / %s already exists, skipping\n",
					input.CategoryLevel1Name, input.CategoryLevel2Name)
				continue
			}
			fmt.Fprintf(os.Stderr, "failed to seed coefficient %s / %s: %v\n",
				input.CategoryLevel1Name, input.CategoryLevel2Name, err)
			os.Exit(1)
		}
		fmt.Printf("seeded coefficient %s / %s\n", input.CategoryLevel1Name, input.CategoryLevel2Name)
	}

	fmt.Println("sample data seeding complete")
}
