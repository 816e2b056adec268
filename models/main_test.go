package models_test

import (
	"context"
	"os"
	"testing"

	"github.com/greenstay/carbon_backend/config"
	"github.com/greenstay/carbon_backend/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	config.ConnectTestDatabase()
	models.MigrateTable()
	os.Exit(m.Run())
}

// resetTables empties every table so tests can run against the shared
// in-memory database in any order.
func resetTables(t *testing.T) {
	t.Helper()
	db := config.GetDB()
	for _, model := range []interface{}{
		&models.MaterialConsumption{},
		&models.ConsumerCount{},
		&models.EmissionCoefficient{},
		&models.Level2Category{},
		&models.Level1Category{},
		&models.Hotel{},
	} {
		err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error
		require.NoError(t, err)
	}
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func requireDecimalEqual(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	require.True(t, mustDecimal(t, expected).Equal(actual),
		"expected %s, got %s", expected, actual.String())
}

func seedCoefficient(t *testing.T, level1, level2, product, value string) *models.EmissionCoefficient {
	t.Helper()
	coefficient, err := models.CreateCoefficient(context.Background(), &models.NewEmissionCoefficient{
		Department:         "production",
		CategoryLevel1Name: level1,
		CategoryLevel2Name: level2,
		ProductName:        product,
		ProductNameEn:      product,
		Unit:               "KG",
		Coefficient:        mustDecimal(t, value),
	})
	require.NoError(t, err)
	return coefficient
}
