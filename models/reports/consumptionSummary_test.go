package reports_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/greenstay/carbon_backend/config"
	"github.com/greenstay/carbon_backend/models"
	"github.com/greenstay/carbon_backend/models/reports"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	config.ConnectTestDatabase()
	models.MigrateTable()
	os.Exit(m.Run())
}

func seedCatalogAndLedger(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	pairs := []struct {
		level1, level2, product, value string
	}{
		{"Meat", "Pig meat", "Bacon", "7.28"},
		{"Meat", "Bovine", "Ground Beef", "42.80"},
		{"Seafood", "Molluscs, other", "Chiton", "7.30"},
	}
	for _, p := range pairs {
		_, err := models.CreateCoefficient(ctx, &models.NewEmissionCoefficient{
			Department:         "production",
			CategoryLevel1Name: p.level1,
			CategoryLevel2Name: p.level2,
			ProductName:        p.product,
			Unit:               "KG",
			Coefficient:        decimal.RequireFromString(p.value),
		})
		require.NoError(t, err)
	}

	entries := []struct {
		department, level1, level2, product, date, clock, quantity string
	}{
		// Day 1: bacon 10kg (72.80) + beef 1kg (42.80).
		{"production", "Meat", "Pig meat", "Bacon", "2024-07-01", "08:30", "10"},
		{"production", "Meat", "Bovine", "Ground Beef", "2024-07-01", "11:00", "1"},
		// Day 2, logistics: chiton 2kg (14.60).
		{"logistics", "Seafood", "Molluscs, other", "Chiton", "2024-07-02", "09:00", "2"},
	}
	for _, e := range entries {
		_, err := models.CreateConsumption(ctx, &models.NewMaterialConsumption{
			HotelName:          "Grand Harbor Hotel",
			Department:         e.department,
			CategoryLevel1Name: e.level1,
			CategoryLevel2Name: e.level2,
			ProductName:        e.product,
			ConsumptionDate:    e.date,
			ConsumptionTime:    e.clock,
			Quantity:           decimal.RequireFromString(e.quantity),
		})
		require.NoError(t, err)
	}
}

func TestGetConsumptionSummary(t *testing.T) {
	seedCatalogAndLedger(t)

	from := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)
	summary, err := reports.GetConsumptionSummary(context.Background(), from, to, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalRecords)
	assert.True(t, decimal.RequireFromString("130.20").Equal(summary.TotalEmission),
		"total emission %s", summary.TotalEmission)
	assert.True(t, decimal.RequireFromString("13").Equal(summary.TotalQuantity))

	// Daily series in date order.
	require.Len(t, summary.Daily, 2)
	assert.Equal(t, "2024-07-01", summary.Daily[0].Date)
	assert.True(t, decimal.RequireFromString("115.60").Equal(summary.Daily[0].Emission))
	assert.Equal(t, 2, summary.Daily[0].RecordCount)
	assert.Equal(t, "2024-07-02", summary.Daily[1].Date)
	assert.True(t, decimal.RequireFromString("14.60").Equal(summary.Daily[1].Emission))

	// Departments sorted by emission, descending.
	require.Len(t, summary.Departments, 2)
	assert.Equal(t, models.DepartmentProduction, summary.Departments[0].Department)
	assert.Equal(t, "Production", summary.Departments[0].Label)
	assert.Equal(t, models.DepartmentLogistics, summary.Departments[1].Department)

	// Categories: Meat (115.60) before Seafood (14.60); inside Meat, Bovine
	// ranks below Pig meat.
	require.Len(t, summary.Categories, 2)
	assert.Equal(t, "Meat", summary.Categories[0].Name)
	assert.True(t, decimal.RequireFromString("115.60").Equal(summary.Categories[0].Emission))
	require.Len(t, summary.Categories[0].Children, 2)
	assert.Equal(t, "Pig meat", summary.Categories[0].Children[0].Name)
	assert.Equal(t, "Bovine", summary.Categories[0].Children[1].Name)
	assert.Equal(t, "Seafood", summary.Categories[1].Name)

	// A date filter narrows the series.
	narrow, err := reports.GetConsumptionSummary(context.Background(),
		time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC), to, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, narrow.TotalRecords)
	assert.True(t, decimal.RequireFromString("14.60").Equal(narrow.TotalEmission))
}
