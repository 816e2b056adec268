package models_test

import (
	"context"
	"testing"

	"github.com/greenstay/carbon_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCoefficientResolvesCategories(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	coefficient := seedCoefficient(t, "Seafood", "Molluscs, other", "Chiton", "7.30")
	require.NotNil(t, coefficient.CategoryLevel1)
	require.NotNil(t, coefficient.CategoryLevel2)
	assert.Equal(t, "Seafood", coefficient.CategoryLevel1.Name)
	assert.Equal(t, "Molluscs, other", coefficient.CategoryLevel2.Name)
	assert.Equal(t, coefficient.CategoryLevel1.ID, coefficient.CategoryLevel2.ParentId)

	// The same names must resolve to the same category rows, not new ones.
	seedCoefficient(t, "Seafood", "Crustaceans", "Shrimp", "11.80")
	level1s, err := models.GetLevel1Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, level1s, 1)
	level2s, err := models.GetLevel2Categories(ctx, &coefficient.CategoryLevel1.ID)
	require.NoError(t, err)
	assert.Len(t, level2s, 2)
}

func TestCreateCoefficientRejectsDuplicatePair(t *testing.T) {
	resetTables(t)

	seedCoefficient(t, "Meat", "Pig meat", "Bacon", "7.28")
	_, err := models.CreateCoefficient(context.Background(), &models.NewEmissionCoefficient{
		Department:         "production",
		CategoryLevel1Name: "Meat",
		CategoryLevel2Name: "Pig meat",
		ProductName:        "Ham",
		Unit:               "KG",
		Coefficient:        mustDecimal(t, "9.90"),
	})
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrorKindDuplicate))
}

func TestCreateCoefficientValidation(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	_, err := models.CreateCoefficient(ctx, &models.NewEmissionCoefficient{
		Department:         "warehouse",
		CategoryLevel1Name: "Meat",
		CategoryLevel2Name: "Pig meat",
		ProductName:        "Bacon",
		Unit:               "KG",
		Coefficient:        mustDecimal(t, "7.28"),
	})
	assert.True(t, models.IsKind(err, models.ErrorKindValidation), "unknown department")

	_, err = models.CreateCoefficient(ctx, &models.NewEmissionCoefficient{
		Department:         "production",
		CategoryLevel1Name: "Meat",
		CategoryLevel2Name: "Pig meat",
		ProductName:        "Bacon",
		Unit:               "TON",
		Coefficient:        mustDecimal(t, "7.28"),
	})
	assert.True(t, models.IsKind(err, models.ErrorKindValidation), "unknown unit")

	_, err = models.CreateCoefficient(ctx, &models.NewEmissionCoefficient{
		Department:         "production",
		CategoryLevel1Name: "Meat",
		CategoryLevel2Name: "Pig meat",
		ProductName:        "Bacon",
		Unit:               "KG",
		Coefficient:        mustDecimal(t, "-1"),
	})
	assert.True(t, models.IsKind(err, models.ErrorKindValidation), "negative coefficient")
}

func TestFindCoefficient(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	seedCoefficient(t, "Meat", "Pig meat", "Bacon", "7.28")
	seedCoefficient(t, "Seafood", "Molluscs, other", "Chiton", "7.30")

	found, err := models.FindCoefficient(ctx, "Meat", "Pig meat")
	require.NoError(t, err)
	requireDecimalEqual(t, "7.28", found.Coefficient)

	// Unknown pair.
	_, err = models.FindCoefficient(ctx, "Meat", "Poultry")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrorKindReference))

	// Level 2 exists, but under a different level 1.
	_, err = models.FindCoefficient(ctx, "Seafood", "Pig meat")
	require.ErrorIs(t, err, models.ErrCategoryMismatch)
}

func TestUpdateCoefficient(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	coefficient := seedCoefficient(t, "Meat", "Pig meat", "Bacon", "7.28")
	updated, err := models.UpdateCoefficient(ctx, coefficient.ID, &models.NewEmissionCoefficient{
		Department:         "production",
		CategoryLevel1Name: "Meat",
		CategoryLevel2Name: "Pig meat",
		ProductName:        "Bacon",
		Unit:               "KG",
		Coefficient:        mustDecimal(t, "7.50"),
	})
	require.NoError(t, err)
	requireDecimalEqual(t, "7.50", updated.Coefficient)

	// Moving onto another pair's slot is a conflict.
	seedCoefficient(t, "Seafood", "Molluscs, other", "Chiton", "7.30")
	_, err = models.UpdateCoefficient(ctx, coefficient.ID, &models.NewEmissionCoefficient{
		Department:         "production",
		CategoryLevel1Name: "Seafood",
		CategoryLevel2Name: "Molluscs, other",
		ProductName:        "Chiton",
		Unit:               "KG",
		Coefficient:        mustDecimal(t, "7.30"),
	})
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrorKindDuplicate))
}

func TestDeleteCoefficient(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	coefficient := seedCoefficient(t, "Meat", "Pig meat", "Bacon", "7.28")
	_, err := models.DeleteCoefficient(ctx, coefficient.ID)
	require.NoError(t, err)

	_, err = models.GetCoefficient(ctx, coefficient.ID)
	require.Error(t, err)

	// Deleting the coefficient does not cascade to past snapshots; a fresh
	// lookup simply fails.
	_, err = models.FindCoefficient(ctx, "Meat", "Pig meat")
	require.Error(t, err)
}

func TestGetCoefficientsSearch(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	seedCoefficient(t, "Meat", "Pig meat", "Bacon", "7.28")
	seedCoefficient(t, "Seafood", "Molluscs, other", "Chiton", "7.30")

	all, err := models.GetCoefficients(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	query := "chiton"
	matches, err := models.GetCoefficients(ctx, &query)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Chiton", matches[0].ProductName)
}
