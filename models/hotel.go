package models

import (
	"context"
	"time"

	"github.com/greenstay/carbon_backend/config"
	"github.com/greenstay/carbon_backend/utils"
)

// Hotel is the admin catalog behind the free-form hotel_name snapshots kept
// on ledger rows.
type Hotel struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Code      string    `gorm:"uniqueIndex;size:50;not null" json:"code" binding:"required"`
	Name      string    `gorm:"size:200;not null" json:"name" binding:"required"`
	NameEn    string    `gorm:"size:200" json:"name_en"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewHotel struct {
	Code   string `json:"code" binding:"required"`
	Name   string `json:"name" binding:"required"`
	NameEn string `json:"name_en"`
}

func CreateHotel(ctx context.Context, input *NewHotel) (*Hotel, error) {
	if err := utils.ValidateUnique[Hotel](ctx, "code", input.Code, 0); err != nil {
		return nil, NewDuplicateError("hotel code %q already exists", input.Code)
	}

	isActive := true
	hotel := Hotel{
		Code:     input.Code,
		Name:     input.Name,
		NameEn:   input.NameEn,
		IsActive: &isActive,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&hotel).Error; err != nil {
		return nil, err
	}
	return &hotel, nil
}

func GetHotel(ctx context.Context, id int) (*Hotel, error) {
	return utils.FetchModel[Hotel](ctx, id)
}

func GetHotels(ctx context.Context, activeOnly bool) ([]*Hotel, error) {
	db := config.GetDB()
	var hotels []*Hotel
	dbCtx := db.WithContext(ctx)
	if activeOnly {
		dbCtx = dbCtx.Where("is_active = ?", true)
	}
	if err := dbCtx.Order("code").Find(&hotels).Error; err != nil {
		return nil, err
	}
	return hotels, nil
}

func ToggleActiveHotel(ctx context.Context, id int, isActive bool) (*Hotel, error) {
	hotel, err := utils.FetchModel[Hotel](ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(hotel).Update("is_active", isActive).Error; err != nil {
		return nil, err
	}
	return hotel, nil
}
