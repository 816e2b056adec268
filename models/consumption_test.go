package models_test

import (
	"context"
	"testing"

	"github.com/greenstay/carbon_backend/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBaconConsumption(quantity string) *models.NewMaterialConsumption {
	return &models.NewMaterialConsumption{
		HotelName:          "Grand Harbor Hotel",
		Department:         "production",
		CategoryLevel1Name: "Meat",
		CategoryLevel2Name: "Pig meat",
		ProductName:        "Bacon",
		ConsumptionDate:    "2024-07-01",
		ConsumptionTime:    "08:30",
		Quantity:           decimal.RequireFromString(quantity),
	}
}

func seedHeadcount(t *testing.T, date string, count int) *models.ConsumerCount {
	t.Helper()
	record, err := models.CreateConsumerCount(context.Background(), &models.NewConsumerCount{
		HotelName:       "Grand Harbor Hotel",
		Department:      "production",
		ConsumptionDate: date,
		ConsumerCount:   count,
	})
	require.NoError(t, err)
	return record
}

func TestCreateConsumptionDerivesEmission(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	seedCoefficient(t, "Meat", "Pig meat", "Bacon", "7.28")
	record, err := models.CreateConsumption(ctx, newBaconConsumption("10"))
	require.NoError(t, err)

	requireDecimalEqual(t, "7.28", record.EmissionCoefficient)
	requireDecimalEqual(t, "72.80", record.CarbonEmission)
	assert.Equal(t, models.UnitKG, record.Unit)
	assert.Equal(t, "08:30:00", record.ConsumptionTime)
	assert.Equal(t, models.DepartmentProduction, record.Department)
}

func TestCreateConsumptionRefreshesDailyCache(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	seedCoefficient(t, "Meat", "Pig meat", "Bacon", "7.28")
	headcount := seedHeadcount(t, "2024-07-01", 120)
	requireDecimalEqual(t, "0", headcount.DailyCarbonEmission)

	_, err := models.CreateConsumption(ctx, newBaconConsumption("10"))
	require.NoError(t, err)

	refreshed, err := models.GetConsumerCount(ctx, headcount.ID)
	require.NoError(t, err)
	requireDecimalEqual(t, "72.80", refreshed.DailyCarbonEmission)

	second := newBaconConsumption("5")
	second.ConsumptionTime = "12:15"
	_, err = models.CreateConsumption(ctx, second)
	require.NoError(t, err)

	refreshed, err = models.GetConsumerCount(ctx, headcount.ID)
	require.NoError(t, err)
	requireDecimalEqual(t, "109.20", refreshed.DailyCarbonEmission)
}

func TestCreateConsumptionValidation(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	seedCoefficient(t, "Meat", "Pig meat", "Bacon", "7.28")

	input := newBaconConsumption("0")
	_, err := models.CreateConsumption(ctx, input)
	assert.True(t, models.IsKind(err, models.ErrorKindValidation), "zero quantity")

	input = newBaconConsumption("10")
	input.Department = "housekeeping"
	_, err = models.CreateConsumption(ctx, input)
	assert.True(t, models.IsKind(err, models.ErrorKindValidation), "unknown department")

	input = newBaconConsumption("10")
	input.CategoryLevel2Name = "Poultry"
	_, err = models.CreateConsumption(ctx, input)
	assert.True(t, models.IsKind(err, models.ErrorKindReference), "unknown category pair")

	input = newBaconConsumption("10")
	input.ConsumptionDate = "July 1st"
	_, err = models.CreateConsumption(ctx, input)
	assert.True(t, models.IsKind(err, models.ErrorKindValidation), "bad date")
}

func TestUpdateConsumptionRefreshesBothKeys(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	seedCoefficient(t, "Meat", "Pig meat", "Bacon", "7.28")
	day1 := seedHeadcount(t, "2024-07-01", 100)
	day2 := seedHeadcount(t, "2024-07-02", 100)

	record, err := models.CreateConsumption(ctx, newBaconConsumption("10"))
	require.NoError(t, err)

	moved := newBaconConsumption("10")
	moved.ConsumptionDate = "2024-07-02"
	_, err = models.UpdateConsumption(ctx, record.ID, moved)
	require.NoError(t, err)

	refreshed1, err := models.GetConsumerCount(ctx, day1.ID)
	require.NoError(t, err)
	requireDecimalEqual(t, "0", refreshed1.DailyCarbonEmission)

	refreshed2, err := models.GetConsumerCount(ctx, day2.ID)
	require.NoError(t, err)
	requireDecimalEqual(t, "72.80", refreshed2.DailyCarbonEmission)
}

func TestUpdateConsumptionRequantifies(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	seedCoefficient(t, "Meat", "Pig meat", "Bacon", "7.28")
	record, err := models.CreateConsumption(ctx, newBaconConsumption("10"))
	require.NoError(t, err)

	updated, err := models.UpdateConsumption(ctx, record.ID, newBaconConsumption("5"))
	require.NoError(t, err)
	requireDecimalEqual(t, "36.40", updated.CarbonEmission)
}

func TestDeleteConsumptionRefreshesCache(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	seedCoefficient(t, "Meat", "Pig meat", "Bacon", "7.28")
	headcount := seedHeadcount(t, "2024-07-01", 100)

	record, err := models.CreateConsumption(ctx, newBaconConsumption("10"))
	require.NoError(t, err)

	_, err = models.DeleteConsumption(ctx, record.ID)
	require.NoError(t, err)

	refreshed, err := models.GetConsumerCount(ctx, headcount.ID)
	require.NoError(t, err)
	requireDecimalEqual(t, "0", refreshed.DailyCarbonEmission)
}

func TestListConsumptionsFilter(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	seedCoefficient(t, "Meat", "Pig meat", "Bacon", "7.28")
	seedCoefficient(t, "Seafood", "Molluscs, other", "Chiton", "7.30")

	_, err := models.CreateConsumption(ctx, newBaconConsumption("10"))
	require.NoError(t, err)

	other := &models.NewMaterialConsumption{
		HotelName:          "Riverview Resort",
		Department:         "logistics",
		CategoryLevel1Name: "Seafood",
		CategoryLevel2Name: "Molluscs, other",
		ProductName:        "Chiton",
		ConsumptionDate:    "2024-07-02",
		ConsumptionTime:    "09:00",
		Quantity:           decimal.RequireFromString("3"),
	}
	_, err = models.CreateConsumption(ctx, other)
	require.NoError(t, err)

	all, total, err := models.ListConsumptions(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	hotel := "Riverview Resort"
	filtered, total, err := models.ListConsumptions(ctx, &models.ConsumptionFilter{HotelName: &hotel})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Chiton", filtered[0].ProductName)

	department := models.DepartmentLogistics
	filtered, _, err = models.ListConsumptions(ctx, &models.ConsumptionFilter{Department: &department})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, models.DepartmentLogistics, filtered[0].Department)
}
