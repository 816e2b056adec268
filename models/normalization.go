package models

import (
	"context"
	"sort"
	"time"

	"github.com/greenstay/carbon_backend/config"
	"github.com/greenstay/carbon_backend/utils"
	"github.com/shopspring/decimal"
)

// The normalization engine redistributes a month's total emission across its
// days in proportion to each day's consumer headcount:
//
//	adjusted(day) = total_emission * consumer_count(day) / total_consumers
//
// computed multiply-first so the only division happens once per day and the
// redistribution stays mass-conserving. Groups are strictly
// (hotel, department, month); no value ever mixes across groups.

type NormalizedDay struct {
	ConsumptionDate     time.Time       `json:"consumption_date"`
	ConsumerCount       int             `json:"consumer_count"`
	DailyCarbonEmission decimal.Decimal `json:"daily_carbon_emission"`
	AdjustedEmission    decimal.Decimal `json:"adjusted_emission"`
}

type MonthlyNormalization struct {
	HotelName         string          `json:"hotel_name"`
	Department        Department      `json:"department"`
	Month             string          `json:"month"`
	TotalEmission     decimal.Decimal `json:"total_emission"`
	TotalConsumers    int64           `json:"total_consumers"`
	PerCapitaEmission decimal.Decimal `json:"per_capita_emission"`
	Days              []*NormalizedDay `json:"days"`
}

// NormalizeMonth computes the adjusted daily series and the monthly per-capita
// emission for one (hotel, department, month) group.
func NormalizeMonth(ctx context.Context, hotelName string, department Department, month string) (*MonthlyNormalization, error) {
	start, end, err := utils.MonthRange(month)
	if err != nil {
		return nil, NewValidationError("%s", err.Error())
	}

	db := config.GetDB()
	var records []*ConsumerCount
	if err := db.WithContext(ctx).
		Where("hotel_name = ? AND department = ? AND consumption_date >= ? AND consumption_date < ?",
			hotelName, department, start, end).
		Order("consumption_date").
		Find(&records).Error; err != nil {
		return nil, err
	}

	result := normalizeGroup(hotelName, department, month, records)
	return result, nil
}

// NormalizeRange groups all headcount records in [from, to] by
// (hotel, department, month) and normalizes every group independently.
// Optional hotel/department filters narrow the scan.
func NormalizeRange(ctx context.Context, from, to time.Time, hotelName *string, department *Department) ([]*MonthlyNormalization, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).
		Where("consumption_date >= ? AND consumption_date <= ?", utils.ToDate(from), utils.ToDate(to))
	if hotelName != nil && *hotelName != "" {
		dbCtx = dbCtx.Where("hotel_name = ?", *hotelName)
	}
	if department != nil && *department != "" {
		dbCtx = dbCtx.Where("department = ?", *department)
	}

	var records []*ConsumerCount
	if err := dbCtx.Order("consumption_date").Find(&records).Error; err != nil {
		return nil, err
	}

	type groupKey struct {
		hotel      string
		department Department
		month      string
	}
	groups := make(map[groupKey][]*ConsumerCount)
	for _, record := range records {
		key := groupKey{record.HotelName, record.Department, utils.MonthKey(record.ConsumptionDate)}
		groups[key] = append(groups[key], record)
	}

	results := make([]*MonthlyNormalization, 0, len(groups))
	for key, groupRecords := range groups {
		results = append(results, normalizeGroup(key.hotel, key.department, key.month, groupRecords))
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].HotelName != results[j].HotelName {
			return results[i].HotelName < results[j].HotelName
		}
		if results[i].Department != results[j].Department {
			return results[i].Department < results[j].Department
		}
		return results[i].Month < results[j].Month
	})
	return results, nil
}

// normalizeGroup is the pure two-stage weighted-average formula. With zero
// total consumers every adjusted value and the per-capita value are zero;
// there is never a division by zero.
func normalizeGroup(hotelName string, department Department, month string, records []*ConsumerCount) *MonthlyNormalization {
	totalEmission := decimal.Zero
	var totalConsumers int64
	for _, record := range records {
		totalEmission = totalEmission.Add(record.DailyCarbonEmission)
		totalConsumers += int64(record.ConsumerCount)
	}

	result := &MonthlyNormalization{
		HotelName:         hotelName,
		Department:        department,
		Month:             month,
		TotalEmission:     totalEmission,
		TotalConsumers:    totalConsumers,
		PerCapitaEmission: decimal.Zero,
		Days:              make([]*NormalizedDay, 0, len(records)),
	}

	consumersDec := decimal.NewFromInt(totalConsumers)
	if totalConsumers > 0 {
		result.PerCapitaEmission = totalEmission.Div(consumersDec)
	}

	for _, record := range records {
		adjusted := decimal.Zero
		if totalConsumers > 0 {
			adjusted = totalEmission.
				Mul(decimal.NewFromInt(int64(record.ConsumerCount))).
				Div(consumersDec)
		}
		result.Days = append(result.Days, &NormalizedDay{
			ConsumptionDate:     record.ConsumptionDate,
			ConsumerCount:       record.ConsumerCount,
			DailyCarbonEmission: record.DailyCarbonEmission,
			AdjustedEmission:    adjusted,
		})
	}
	return result
}
