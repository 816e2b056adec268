package models

import (
	"context"
	"time"

	"github.com/greenstay/carbon_backend/config"
	"github.com/greenstay/carbon_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaterialConsumption is one material-consumption event. Category names, unit
// and the emission coefficient are snapshots copied from the catalog at write
// time; CarbonEmission is always Quantity * EmissionCoefficient.
type MaterialConsumption struct {
	ID                  int             `gorm:"primary_key" json:"id"`
	HotelName           string          `gorm:"size:200;not null;index:idx_mc_key,priority:1" json:"hotel_name"`
	Department          Department      `gorm:"size:50;not null;index:idx_mc_key,priority:2" json:"department"`
	CategoryLevel1      string          `gorm:"size:200;not null" json:"category_level1"`
	CategoryLevel2      string          `gorm:"size:200;not null" json:"category_level2"`
	ProductName         string          `gorm:"size:200;not null" json:"product_name"`
	Unit                Unit            `gorm:"size:20;not null" json:"unit"`
	EmissionCoefficient decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"emission_coefficient"`
	ConsumptionDate     time.Time       `gorm:"not null;index:idx_mc_key,priority:3" json:"consumption_date"`
	ConsumptionTime     string          `gorm:"size:8;not null" json:"consumption_time"`
	Quantity            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"quantity"`
	CarbonEmission      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"carbon_emission"`
	Notes               string          `gorm:"type:text" json:"notes"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMaterialConsumption struct {
	HotelName          string          `json:"hotel_name" binding:"required"`
	Department         string          `json:"department" binding:"required"`
	CategoryLevel1Name string          `json:"category_level1_name" binding:"required"`
	CategoryLevel2Name string          `json:"category_level2_name" binding:"required"`
	ProductName        string          `json:"product_name" binding:"required"`
	ConsumptionDate    string          `json:"consumption_date" binding:"required"`
	ConsumptionTime    string          `json:"consumption_time" binding:"required"`
	Quantity           decimal.Decimal `json:"quantity"`
	Notes              string          `json:"notes"`
}

// resolve validates the input, snapshots the coefficient and derives the
// emission. No rows are written; the caller owns the transaction.
func (input *NewMaterialConsumption) resolve(tx *gorm.DB) (*MaterialConsumption, error) {
	if input.HotelName == "" {
		return nil, NewValidationError("hotel name is required")
	}
	department, err := ParseDepartment(input.Department)
	if err != nil {
		return nil, err
	}
	date, err := utils.ParseDate(input.ConsumptionDate)
	if err != nil {
		return nil, NewValidationError("%s", err.Error())
	}
	timeOfDay, err := utils.ParseTimeOfDay(input.ConsumptionTime)
	if err != nil {
		return nil, NewValidationError("%s", err.Error())
	}
	if !input.Quantity.IsPositive() {
		return nil, NewValidationError("quantity must be greater than zero")
	}
	if input.ProductName == "" {
		return nil, NewValidationError("product name is required")
	}

	coefficient, err := findCoefficientTx(tx, input.CategoryLevel1Name, input.CategoryLevel2Name)
	if err != nil {
		return nil, err
	}

	return &MaterialConsumption{
		HotelName:           input.HotelName,
		Department:          department,
		CategoryLevel1:      input.CategoryLevel1Name,
		CategoryLevel2:      input.CategoryLevel2Name,
		ProductName:         input.ProductName,
		Unit:                coefficient.Unit,
		EmissionCoefficient: coefficient.Coefficient,
		ConsumptionDate:     date,
		ConsumptionTime:     timeOfDay,
		Quantity:            input.Quantity,
		CarbonEmission:      input.Quantity.Mul(coefficient.Coefficient),
		Notes:               input.Notes,
	}, nil
}

// CreateConsumption records one event and refreshes the cached daily total for
// its (hotel, department, date) key in the same transaction.
func CreateConsumption(ctx context.Context, input *NewMaterialConsumption) (*MaterialConsumption, error) {
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	record, err := input.resolve(tx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Create(record).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if _, err := recomputeDailyEmissionTx(tx, record.HotelName, record.Department, record.ConsumptionDate); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return record, nil
}

// UpdateConsumption rewrites the event. When the (hotel, department, date) key
// moves, the cached totals of both the old and the new key are refreshed.
func UpdateConsumption(ctx context.Context, id int, input *NewMaterialConsumption) (*MaterialConsumption, error) {
	existing, err := utils.FetchModel[MaterialConsumption](ctx, id)
	if err != nil {
		return nil, err
	}
	oldHotel := existing.HotelName
	oldDepartment := existing.Department
	oldDate := existing.ConsumptionDate

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	resolved, err := input.resolve(tx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Model(existing).Updates(map[string]interface{}{
		"hotel_name":           resolved.HotelName,
		"department":           resolved.Department,
		"category_level1":      resolved.CategoryLevel1,
		"category_level2":      resolved.CategoryLevel2,
		"product_name":         resolved.ProductName,
		"unit":                 resolved.Unit,
		"emission_coefficient": resolved.EmissionCoefficient,
		"consumption_date":     resolved.ConsumptionDate,
		"consumption_time":     resolved.ConsumptionTime,
		"quantity":             resolved.Quantity,
		"carbon_emission":      resolved.CarbonEmission,
		"notes":                resolved.Notes,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if _, err := recomputeDailyEmissionTx(tx, oldHotel, oldDepartment, oldDate); err != nil {
		tx.Rollback()
		return nil, err
	}
	keyMoved := resolved.HotelName != oldHotel ||
		resolved.Department != oldDepartment ||
		!resolved.ConsumptionDate.Equal(oldDate)
	if keyMoved {
		if _, err := recomputeDailyEmissionTx(tx, resolved.HotelName, resolved.Department, resolved.ConsumptionDate); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteConsumption removes the event and refreshes the cache for its
// pre-deletion key.
func DeleteConsumption(ctx context.Context, id int) (*MaterialConsumption, error) {
	existing, err := utils.FetchModel[MaterialConsumption](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	if err := tx.Delete(existing).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if _, err := recomputeDailyEmissionTx(tx, existing.HotelName, existing.Department, existing.ConsumptionDate); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return existing, nil
}

func GetConsumption(ctx context.Context, id int) (*MaterialConsumption, error) {
	return utils.FetchModel[MaterialConsumption](ctx, id)
}

type ConsumptionFilter struct {
	From           *time.Time
	To             *time.Time
	HotelName      *string
	Department     *Department
	CategoryLevel1 *string
	CategoryLevel2 *string
	Limit          int
	Offset         int
}

func (f *ConsumptionFilter) apply(dbCtx *gorm.DB) *gorm.DB {
	if f == nil {
		return dbCtx
	}
	if f.From != nil {
		dbCtx = dbCtx.Where("consumption_date >= ?", utils.ToDate(*f.From))
	}
	if f.To != nil {
		dbCtx = dbCtx.Where("consumption_date <= ?", utils.ToDate(*f.To))
	}
	if f.HotelName != nil && *f.HotelName != "" {
		dbCtx = dbCtx.Where("hotel_name = ?", *f.HotelName)
	}
	if f.Department != nil && *f.Department != "" {
		dbCtx = dbCtx.Where("department = ?", *f.Department)
	}
	if f.CategoryLevel1 != nil && *f.CategoryLevel1 != "" {
		dbCtx = dbCtx.Where("category_level1 = ?", *f.CategoryLevel1)
	}
	if f.CategoryLevel2 != nil && *f.CategoryLevel2 != "" {
		dbCtx = dbCtx.Where("category_level2 = ?", *f.CategoryLevel2)
	}
	return dbCtx
}

func ListConsumptions(ctx context.Context, filter *ConsumptionFilter) ([]*MaterialConsumption, int64, error) {
	db := config.GetDB()
	var records []*MaterialConsumption

	dbCtx := filter.apply(db.WithContext(ctx).Model(&MaterialConsumption{}))
	var total int64
	if err := dbCtx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	dbCtx = dbCtx.Order("consumption_date DESC, consumption_time DESC, id DESC")
	if filter != nil && filter.Limit > 0 {
		dbCtx = dbCtx.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := dbCtx.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// consumptionExists backs the importer's duplicate rejection: an identical
// (hotel, department, category pair, product, date, time) row.
func consumptionExists(tx *gorm.DB, record *MaterialConsumption) (bool, error) {
	var count int64
	err := tx.Model(&MaterialConsumption{}).
		Where("hotel_name = ? AND department = ? AND category_level1 = ? AND category_level2 = ? AND product_name = ? AND consumption_date = ? AND consumption_time = ?",
			record.HotelName, record.Department, record.CategoryLevel1, record.CategoryLevel2,
			record.ProductName, record.ConsumptionDate, record.ConsumptionTime).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
