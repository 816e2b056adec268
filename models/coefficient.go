package models

import (
	"context"
	"errors"
	"time"

	"github.com/greenstay/carbon_backend/config"
	"github.com/greenstay/carbon_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EmissionCoefficient maps a (level-1, level-2) category pair to an emission
// factor. At most one coefficient may exist per pair; consumption records copy
// the factor at write time, so later catalog edits never rewrite history.
type EmissionCoefficient struct {
	ID               int             `gorm:"primary_key" json:"id"`
	CategoryLevel1Id int             `gorm:"index:idx_coef_pair;not null" json:"category_level1_id"`
	CategoryLevel2Id int             `gorm:"index:idx_coef_pair;not null" json:"category_level2_id"`
	ProductName      string          `gorm:"size:200;not null" json:"product_name"`
	ProductNameEn    string          `gorm:"size:200" json:"product_name_en"`
	Unit             Unit            `gorm:"size:20;not null" json:"unit"`
	Coefficient      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"coefficient"`
	Department       Department      `gorm:"size:50;not null" json:"department"`
	SpecialNote      string          `gorm:"type:text" json:"special_note"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	CategoryLevel1 *Level1Category `gorm:"foreignKey:CategoryLevel1Id" json:"category_level1,omitempty"`
	CategoryLevel2 *Level2Category `gorm:"foreignKey:CategoryLevel2Id" json:"category_level2,omitempty"`
}

type NewEmissionCoefficient struct {
	CategoryLevel1Name string          `json:"category_level1_name" binding:"required"`
	CategoryLevel2Name string          `json:"category_level2_name" binding:"required"`
	ProductName        string          `json:"product_name" binding:"required"`
	ProductNameEn      string          `json:"product_name_en"`
	Unit               string          `json:"unit" binding:"required"`
	Coefficient        decimal.Decimal `json:"coefficient"`
	Department         string          `json:"department" binding:"required"`
	SpecialNote        string          `json:"special_note"`
}

func (input *NewEmissionCoefficient) validate() (Unit, Department, error) {
	unit, err := ParseUnit(input.Unit)
	if err != nil {
		return "", "", err
	}
	department, err := ParseDepartment(input.Department)
	if err != nil {
		return "", "", err
	}
	if input.Coefficient.IsNegative() {
		return "", "", NewValidationError("coefficient must not be negative")
	}
	return unit, department, nil
}

// CreateCoefficient resolves (creating if needed) both category levels and
// inserts the coefficient. A second coefficient for the same category pair is
// refused: the pair is the lookup key and duplicates would make resolution
// order-dependent.
func CreateCoefficient(ctx context.Context, input *NewEmissionCoefficient) (*EmissionCoefficient, error) {
	unit, department, err := input.validate()
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	coefficient, err := createCoefficientTx(tx, input, unit, department)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	return coefficient, tx.Commit().Error
}

func createCoefficientTx(tx *gorm.DB, input *NewEmissionCoefficient, unit Unit, department Department) (*EmissionCoefficient, error) {
	level1, err := ResolveLevel1Category(tx, input.CategoryLevel1Name)
	if err != nil {
		return nil, err
	}
	level2, err := ResolveLevel2Category(tx, input.CategoryLevel2Name, level1)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := tx.Model(&EmissionCoefficient{}).
		Where("category_level1_id = ? AND category_level2_id = ?", level1.ID, level2.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, NewDuplicateError("a coefficient already exists for %s / %s",
			input.CategoryLevel1Name, input.CategoryLevel2Name)
	}

	coefficient := EmissionCoefficient{
		CategoryLevel1Id: level1.ID,
		CategoryLevel2Id: level2.ID,
		ProductName:      input.ProductName,
		ProductNameEn:    input.ProductNameEn,
		Unit:             unit,
		Coefficient:      input.Coefficient,
		Department:       department,
		SpecialNote:      input.SpecialNote,
	}
	if err := tx.Create(&coefficient).Error; err != nil {
		return nil, err
	}
	coefficient.CategoryLevel1 = level1
	coefficient.CategoryLevel2 = level2
	return &coefficient, nil
}

// upsertCoefficientTx implements the spreadsheet-import semantics: an existing
// coefficient for the pair is updated in place, otherwise a new one is
// created. Used by the importer and the sample-data seeder.
func upsertCoefficientTx(tx *gorm.DB, input *NewEmissionCoefficient, unit Unit, department Department) (*EmissionCoefficient, bool, error) {
	level1, err := ResolveLevel1Category(tx, input.CategoryLevel1Name)
	if err != nil {
		return nil, false, err
	}
	level2, err := ResolveLevel2Category(tx, input.CategoryLevel2Name, level1)
	if err != nil {
		return nil, false, err
	}

	var existing EmissionCoefficient
	err = tx.Where("category_level1_id = ? AND category_level2_id = ?", level1.ID, level2.ID).
		First(&existing).Error
	if err == nil {
		if err := tx.Model(&existing).Updates(map[string]interface{}{
			"product_name":    input.ProductName,
			"product_name_en": input.ProductNameEn,
			"unit":            unit,
			"coefficient":     input.Coefficient,
			"department":      department,
			"special_note":    input.SpecialNote,
		}).Error; err != nil {
			return nil, false, err
		}
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	coefficient := EmissionCoefficient{
		CategoryLevel1Id: level1.ID,
		CategoryLevel2Id: level2.ID,
		ProductName:      input.ProductName,
		ProductNameEn:    input.ProductNameEn,
		Unit:             unit,
		Coefficient:      input.Coefficient,
		Department:       department,
		SpecialNote:      input.SpecialNote,
	}
	if err := tx.Create(&coefficient).Error; err != nil {
		return nil, false, err
	}
	return &coefficient, true, nil
}

func UpdateCoefficient(ctx context.Context, id int, input *NewEmissionCoefficient) (*EmissionCoefficient, error) {
	unit, department, err := input.validate()
	if err != nil {
		return nil, err
	}

	coefficient, err := utils.FetchModel[EmissionCoefficient](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	level1, err := ResolveLevel1Category(tx, input.CategoryLevel1Name)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	level2, err := ResolveLevel2Category(tx, input.CategoryLevel2Name, level1)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var count int64
	if err := tx.Model(&EmissionCoefficient{}).
		Where("category_level1_id = ? AND category_level2_id = ? AND NOT id = ?", level1.ID, level2.ID, id).
		Count(&count).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if count > 0 {
		tx.Rollback()
		return nil, NewDuplicateError("a coefficient already exists for %s / %s",
			input.CategoryLevel1Name, input.CategoryLevel2Name)
	}

	if err := tx.Model(coefficient).Updates(map[string]interface{}{
		"category_level1_id": level1.ID,
		"category_level2_id": level2.ID,
		"product_name":       input.ProductName,
		"product_name_en":    input.ProductNameEn,
		"unit":               unit,
		"coefficient":        input.Coefficient,
		"department":         department,
		"special_note":       input.SpecialNote,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	return coefficient, tx.Commit().Error
}

func DeleteCoefficient(ctx context.Context, id int) (*EmissionCoefficient, error) {
	coefficient, err := utils.FetchModel[EmissionCoefficient](ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(coefficient).Error; err != nil {
		return nil, err
	}
	return coefficient, nil
}

func GetCoefficient(ctx context.Context, id int) (*EmissionCoefficient, error) {
	db := config.GetDB()
	var coefficient EmissionCoefficient
	err := db.WithContext(ctx).
		Preload("CategoryLevel1").Preload("CategoryLevel2").
		First(&coefficient, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &coefficient, nil
}

// GetCoefficients lists the catalog, optionally filtered by a free-text query
// over product and category names.
func GetCoefficients(ctx context.Context, query *string) ([]*EmissionCoefficient, error) {
	db := config.GetDB()
	var coefficients []*EmissionCoefficient

	dbCtx := db.WithContext(ctx).
		Preload("CategoryLevel1").Preload("CategoryLevel2")
	if query != nil && *query != "" {
		pattern := "%" + *query + "%"
		dbCtx = dbCtx.
			Joins("LEFT JOIN level1_categories ON level1_categories.id = emission_coefficients.category_level1_id").
			Joins("LEFT JOIN level2_categories ON level2_categories.id = emission_coefficients.category_level2_id").
			Where("emission_coefficients.product_name LIKE ? OR emission_coefficients.product_name_en LIKE ? OR level1_categories.name LIKE ? OR level2_categories.name LIKE ?",
				pattern, pattern, pattern, pattern)
	}
	if err := dbCtx.Order("emission_coefficients.updated_at DESC").Find(&coefficients).Error; err != nil {
		return nil, err
	}
	return coefficients, nil
}

// FindCoefficient resolves the coefficient for a category pair by name.
// Returns ErrCoefficientNotFound when the pair has no entry; category
// resolution failures surface as reference errors.
func FindCoefficient(ctx context.Context, level1Name, level2Name string) (*EmissionCoefficient, error) {
	db := config.GetDB()
	return findCoefficientTx(db.WithContext(ctx), level1Name, level2Name)
}

func findCoefficientTx(tx *gorm.DB, level1Name, level2Name string) (*EmissionCoefficient, error) {
	level1, level2, err := findCategoryPair(tx, level1Name, level2Name)
	if err != nil {
		return nil, err
	}

	var coefficient EmissionCoefficient
	err = tx.Where("category_level1_id = ? AND category_level2_id = ?", level1.ID, level2.ID).
		Order("id").
		First(&coefficient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCoefficientNotFound
		}
		return nil, err
	}
	return &coefficient, nil
}
