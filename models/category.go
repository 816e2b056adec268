package models

import (
	"context"
	"errors"
	"time"

	"github.com/greenstay/carbon_backend/config"
	"gorm.io/gorm"
)

// The category tree is exactly two levels deep, so it is modeled as two
// distinct entities instead of one self-referential type. A Level2Category
// always hangs off exactly one Level1Category; cycles and deeper nesting are
// unrepresentable.

type Level1Category struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:200;not null" json:"name" binding:"required"`
	NameEn    string    `gorm:"size:200" json:"name_en"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Level2Category struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"uniqueIndex:idx_l2_name_parent;size:200;not null" json:"name" binding:"required"`
	ParentId  int       `gorm:"uniqueIndex:idx_l2_name_parent;not null" json:"parent_id" binding:"required"`
	NameEn    string    `gorm:"size:200" json:"name_en"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ResolveLevel1Category returns the existing category of that name or creates
// it. Idempotent: resolving the same name twice yields the same row.
func ResolveLevel1Category(tx *gorm.DB, name string) (*Level1Category, error) {
	var category Level1Category
	err := tx.Where("name = ?", name).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	category = Level1Category{Name: name}
	if err := tx.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ResolveLevel2Category returns the existing child of parent with that name or
// creates it under parent.
func ResolveLevel2Category(tx *gorm.DB, name string, parent *Level1Category) (*Level2Category, error) {
	var category Level2Category
	err := tx.Where("name = ? AND parent_id = ?", name, parent.ID).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	category = Level2Category{Name: name, ParentId: parent.ID}
	if err := tx.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// findCategoryPair resolves (level1Name, level2Name) without creating
// anything. A level-2 name that exists only under a different parent is a
// mismatch, not a silent reassignment.
func findCategoryPair(tx *gorm.DB, level1Name, level2Name string) (*Level1Category, *Level2Category, error) {
	var level1 Level1Category
	if err := tx.Where("name = ?", level1Name).First(&level1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, NewReferenceError("level 1 category %q not found", level1Name)
		}
		return nil, nil, err
	}

	var level2 Level2Category
	err := tx.Where("name = ? AND parent_id = ?", level2Name, level1.ID).First(&level2).Error
	if err == nil {
		return &level1, &level2, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	// Does the level-2 name exist at all? Distinguish "unknown" from
	// "belongs to another level-1".
	var count int64
	if err := tx.Model(&Level2Category{}).Where("name = ?", level2Name).Count(&count).Error; err != nil {
		return nil, nil, err
	}
	if count > 0 {
		return nil, nil, ErrCategoryMismatch
	}
	return nil, nil, NewReferenceError("level 2 category %q not found", level2Name)
}

func GetLevel1Categories(ctx context.Context) ([]*Level1Category, error) {
	db := config.GetDB()
	var categories []*Level1Category
	if err := db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func GetLevel2Categories(ctx context.Context, parentId *int) ([]*Level2Category, error) {
	db := config.GetDB()
	var categories []*Level2Category
	dbCtx := db.WithContext(ctx)
	if parentId != nil && *parentId > 0 {
		dbCtx = dbCtx.Where("parent_id = ?", *parentId)
	}
	if err := dbCtx.Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
