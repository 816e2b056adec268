package models_test

import (
	"context"
	"testing"
	"time"

	"github.com/greenstay/carbon_backend/config"
	"github.com/greenstay/carbon_backend/models"
	"github.com/greenstay/carbon_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedHeadcountRow inserts a ConsumerCount with a preset cached emission,
// bypassing the ledger, so normalization inputs can be controlled exactly.
func seedHeadcountRow(t *testing.T, hotel string, department models.Department, date string, count int, emission string) {
	t.Helper()
	parsed, err := utils.ParseDate(date)
	require.NoError(t, err)
	row := models.ConsumerCount{
		HotelName:           hotel,
		Department:          department,
		ConsumptionDate:     parsed,
		ConsumerCount:       count,
		DailyCarbonEmission: decimal.RequireFromString(emission),
	}
	require.NoError(t, config.GetDB().Create(&row).Error)
}

func TestNormalizeMonthRedistributesByHeadcount(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	// Uneven daily emissions, headcounts 10/20/70. Total emission 300 over 100
	// consumers redistributes to 30/60/210.
	seedHeadcountRow(t, "Grand Harbor Hotel", models.DepartmentProduction, "2024-07-01", 10, "100")
	seedHeadcountRow(t, "Grand Harbor Hotel", models.DepartmentProduction, "2024-07-02", 20, "150")
	seedHeadcountRow(t, "Grand Harbor Hotel", models.DepartmentProduction, "2024-07-03", 70, "50")

	result, err := models.NormalizeMonth(ctx, "Grand Harbor Hotel", models.DepartmentProduction, "2024-07")
	require.NoError(t, err)

	requireDecimalEqual(t, "300", result.TotalEmission)
	assert.EqualValues(t, 100, result.TotalConsumers)
	requireDecimalEqual(t, "3", result.PerCapitaEmission)

	require.Len(t, result.Days, 3)
	requireDecimalEqual(t, "30", result.Days[0].AdjustedEmission)
	requireDecimalEqual(t, "60", result.Days[1].AdjustedEmission)
	requireDecimalEqual(t, "210", result.Days[2].AdjustedEmission)

	// Redistribution conserves the total.
	sum := decimal.Zero
	for _, day := range result.Days {
		sum = sum.Add(day.AdjustedEmission)
	}
	require.True(t, sum.Equal(result.TotalEmission), "mass not conserved: %s", sum)
}

func TestNormalizeMonthZeroConsumers(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	seedHeadcountRow(t, "Grand Harbor Hotel", models.DepartmentProduction, "2024-07-01", 0, "100")

	result, err := models.NormalizeMonth(ctx, "Grand Harbor Hotel", models.DepartmentProduction, "2024-07")
	require.NoError(t, err)
	requireDecimalEqual(t, "100", result.TotalEmission)
	assert.EqualValues(t, 0, result.TotalConsumers)
	requireDecimalEqual(t, "0", result.PerCapitaEmission)
	require.Len(t, result.Days, 1)
	requireDecimalEqual(t, "0", result.Days[0].AdjustedEmission)
}

func TestNormalizeMonthEmptyGroup(t *testing.T) {
	resetTables(t)

	result, err := models.NormalizeMonth(context.Background(), "Grand Harbor Hotel", models.DepartmentProduction, "2024-07")
	require.NoError(t, err)
	requireDecimalEqual(t, "0", result.TotalEmission)
	assert.Empty(t, result.Days)
}

func TestNormalizeMonthInvalidMonth(t *testing.T) {
	_, err := models.NormalizeMonth(context.Background(), "Grand Harbor Hotel", models.DepartmentProduction, "July 2024")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrorKindValidation))
}

func TestNormalizeRangeGroupsIndependently(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	// Two hotels and two months; values must never mix across groups.
	seedHeadcountRow(t, "Grand Harbor Hotel", models.DepartmentProduction, "2024-07-01", 10, "100")
	seedHeadcountRow(t, "Grand Harbor Hotel", models.DepartmentProduction, "2024-08-01", 10, "40")
	seedHeadcountRow(t, "Riverview Resort", models.DepartmentProduction, "2024-07-01", 5, "20")
	seedHeadcountRow(t, "Riverview Resort", models.DepartmentLogistics, "2024-07-01", 5, "10")

	from := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC)
	results, err := models.NormalizeRange(ctx, from, to, nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 4)

	// Sorted by hotel, department, month.
	assert.Equal(t, "Grand Harbor Hotel", results[0].HotelName)
	assert.Equal(t, "2024-07", results[0].Month)
	requireDecimalEqual(t, "100", results[0].TotalEmission)
	assert.Equal(t, "2024-08", results[1].Month)
	requireDecimalEqual(t, "40", results[1].TotalEmission)

	assert.Equal(t, "Riverview Resort", results[2].HotelName)
	assert.Equal(t, models.DepartmentLogistics, results[2].Department)
	requireDecimalEqual(t, "10", results[2].TotalEmission)
	assert.Equal(t, models.DepartmentProduction, results[3].Department)
	requireDecimalEqual(t, "20", results[3].TotalEmission)

	// Filters narrow the scan.
	hotel := "Riverview Resort"
	department := models.DepartmentProduction
	filtered, err := models.NormalizeRange(ctx, from, to, &hotel, &department)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	requireDecimalEqual(t, "20", filtered[0].TotalEmission)
}
