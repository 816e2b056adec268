package models

import (
	"context"
	"time"

	"github.com/greenstay/carbon_backend/config"
	"github.com/greenstay/carbon_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ConsumerCount holds the headcount for one (hotel, department, date) and a
// cached DailyCarbonEmission: the sum of carbon_emission over all consumption
// events sharing the key. The cache is derived data; every consumption
// mutation refreshes it synchronously and RefreshAllDailyEmissions can rebuild
// it from scratch.
type ConsumerCount struct {
	ID                  int             `gorm:"primary_key" json:"id"`
	HotelName           string          `gorm:"size:200;not null;uniqueIndex:idx_cc_key,priority:1" json:"hotel_name"`
	Department          Department      `gorm:"size:50;not null;uniqueIndex:idx_cc_key,priority:2" json:"department"`
	ConsumptionDate     time.Time       `gorm:"not null;uniqueIndex:idx_cc_key,priority:3" json:"consumption_date"`
	ConsumerCount       int             `gorm:"not null" json:"consumer_count"`
	DailyCarbonEmission decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"daily_carbon_emission"`
	Notes               string          `gorm:"type:text" json:"notes"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewConsumerCount struct {
	HotelName       string `json:"hotel_name" binding:"required"`
	Department      string `json:"department" binding:"required"`
	ConsumptionDate string `json:"consumption_date" binding:"required"`
	ConsumerCount   int    `json:"consumer_count"`
	Notes           string `json:"notes"`
}

func (input *NewConsumerCount) resolve() (Department, time.Time, error) {
	if input.HotelName == "" {
		return "", time.Time{}, NewValidationError("hotel name is required")
	}
	department, err := ParseDepartment(input.Department)
	if err != nil {
		return "", time.Time{}, err
	}
	date, err := utils.ParseDate(input.ConsumptionDate)
	if err != nil {
		return "", time.Time{}, NewValidationError("%s", err.Error())
	}
	if input.ConsumerCount < 0 {
		return "", time.Time{}, NewValidationError("consumer count must not be negative")
	}
	return department, date, nil
}

// CreateConsumerCount inserts the headcount record and seeds its cached total
// from the consumption ledger in the same transaction.
func CreateConsumerCount(ctx context.Context, input *NewConsumerCount) (*ConsumerCount, error) {
	department, date, err := input.resolve()
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	record, err := createConsumerCountTx(tx, input, department, date)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return record, nil
}

func createConsumerCountTx(tx *gorm.DB, input *NewConsumerCount, department Department, date time.Time) (*ConsumerCount, error) {
	var count int64
	if err := tx.Model(&ConsumerCount{}).
		Where("hotel_name = ? AND department = ? AND consumption_date = ?", input.HotelName, department, date).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, NewDuplicateError("a consumer count for %s / %s / %s already exists",
			input.HotelName, department.Label(), date.Format(utils.DateLayout))
	}

	record := ConsumerCount{
		HotelName:           input.HotelName,
		Department:          department,
		ConsumptionDate:     date,
		ConsumerCount:       input.ConsumerCount,
		DailyCarbonEmission: decimal.Zero,
		Notes:               input.Notes,
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, err
	}
	if _, err := recomputeDailyEmissionTx(tx, record.HotelName, record.Department, record.ConsumptionDate); err != nil {
		return nil, err
	}
	// Re-read the cached value written by the recompute.
	if err := tx.First(&record, record.ID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func UpdateConsumerCount(ctx context.Context, id int, input *NewConsumerCount) (*ConsumerCount, error) {
	department, date, err := input.resolve()
	if err != nil {
		return nil, err
	}

	existing, err := utils.FetchModel[ConsumerCount](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var count int64
	if err := tx.Model(&ConsumerCount{}).
		Where("hotel_name = ? AND department = ? AND consumption_date = ? AND NOT id = ?",
			input.HotelName, department, date, id).
		Count(&count).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if count > 0 {
		tx.Rollback()
		return nil, NewDuplicateError("a consumer count for %s / %s / %s already exists",
			input.HotelName, department.Label(), date.Format(utils.DateLayout))
	}

	if err := tx.Model(existing).Updates(map[string]interface{}{
		"hotel_name":       input.HotelName,
		"department":       department,
		"consumption_date": date,
		"consumer_count":   input.ConsumerCount,
		"notes":            input.Notes,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	// The record may now sit on a different key; its cache must reflect the
	// consumption ledger for the new key.
	if _, err := recomputeDailyEmissionTx(tx, input.HotelName, department, date); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.First(existing, id).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return existing, nil
}

func DeleteConsumerCount(ctx context.Context, id int) (*ConsumerCount, error) {
	existing, err := utils.FetchModel[ConsumerCount](ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

func GetConsumerCount(ctx context.Context, id int) (*ConsumerCount, error) {
	return utils.FetchModel[ConsumerCount](ctx, id)
}

type ConsumerCountFilter struct {
	From       *time.Time
	To         *time.Time
	HotelName  *string
	Department *Department
	Limit      int
	Offset     int
}

func ListConsumerCounts(ctx context.Context, filter *ConsumerCountFilter) ([]*ConsumerCount, int64, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&ConsumerCount{})
	if filter != nil {
		if filter.From != nil {
			dbCtx = dbCtx.Where("consumption_date >= ?", utils.ToDate(*filter.From))
		}
		if filter.To != nil {
			dbCtx = dbCtx.Where("consumption_date <= ?", utils.ToDate(*filter.To))
		}
		if filter.HotelName != nil && *filter.HotelName != "" {
			dbCtx = dbCtx.Where("hotel_name = ?", *filter.HotelName)
		}
		if filter.Department != nil && *filter.Department != "" {
			dbCtx = dbCtx.Where("department = ?", *filter.Department)
		}
	}

	var total int64
	if err := dbCtx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	dbCtx = dbCtx.Order("consumption_date DESC, id DESC")
	if filter != nil && filter.Limit > 0 {
		dbCtx = dbCtx.Limit(filter.Limit).Offset(filter.Offset)
	}
	var records []*ConsumerCount
	if err := dbCtx.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// recomputeDailyEmissionTx re-derives the cached daily total for one
// (hotel, department, date) key from the consumption ledger. When no headcount
// record exists for the key this is a no-op: the cache is only maintained for
// existing rows. Summation happens in decimal space, not in SQL, so the result
// is exact and identical across storage engines. Returns whether the stored
// value changed.
func recomputeDailyEmissionTx(tx *gorm.DB, hotelName string, department Department, date time.Time) (bool, error) {
	var record ConsumerCount
	err := tx.Where("hotel_name = ? AND department = ? AND consumption_date = ?", hotelName, department, date).
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}

	var emissions []decimal.Decimal
	if err := tx.Model(&MaterialConsumption{}).
		Where("hotel_name = ? AND department = ? AND consumption_date = ?", hotelName, department, date).
		Pluck("carbon_emission", &emissions).Error; err != nil {
		return false, err
	}
	total := utils.SumDecimals(emissions)

	if record.DailyCarbonEmission.Equal(total) {
		return false, nil
	}
	if err := tx.Model(&record).Update("daily_carbon_emission", total).Error; err != nil {
		return false, err
	}
	return true, nil
}

// RefreshAllDailyEmissions rebuilds every cached daily total from the
// consumption ledger and reports how many rows changed. This is the
// consistency-repair path; a correct system reports zero on the second run.
func RefreshAllDailyEmissions(ctx context.Context) (int, error) {
	db := config.GetDB()
	changed := 0

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var records []*ConsumerCount
		if err := tx.Find(&records).Error; err != nil {
			return err
		}
		for _, record := range records {
			didChange, err := recomputeDailyEmissionTx(tx, record.HotelName, record.Department, record.ConsumptionDate)
			if err != nil {
				return err
			}
			if didChange {
				changed++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}
