// Package reports builds the read-only aggregates behind the dashboard
// charts. Grouping happens in one pass over the filtered consumption set;
// all sums are decimal.
package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/greenstay/carbon_backend/config"
	"github.com/greenstay/carbon_backend/models"
	"github.com/greenstay/carbon_backend/utils"
	"github.com/shopspring/decimal"
)

type DailyStat struct {
	Date        string          `json:"date"`
	Quantity    decimal.Decimal `json:"quantity"`
	Emission    decimal.Decimal `json:"emission"`
	RecordCount int             `json:"record_count"`
}

type DepartmentStat struct {
	Department  models.Department `json:"department"`
	Label       string            `json:"label"`
	Emission    decimal.Decimal   `json:"emission"`
	RecordCount int               `json:"record_count"`
}

type CategoryStat struct {
	Name     string          `json:"name"`
	Emission decimal.Decimal `json:"emission"`
	Children []*CategoryStat `json:"children,omitempty"`
}

type ConsumptionSummary struct {
	StartDate     string            `json:"start_date"`
	EndDate       string            `json:"end_date"`
	TotalRecords  int               `json:"total_records"`
	TotalQuantity decimal.Decimal   `json:"total_quantity"`
	TotalEmission decimal.Decimal   `json:"total_emission"`
	Daily         []*DailyStat      `json:"daily"`
	Departments   []*DepartmentStat `json:"departments"`
	Categories    []*CategoryStat   `json:"categories"`
}

const summaryCacheTTL = time.Minute

// GetConsumptionSummary aggregates the filtered consumption set: per-day
// totals in date order, per-department emissions sorted descending, and
// per-category emissions (level 2 nested under level 1) sorted descending.
// Responses are briefly cached in redis when a client is configured.
func GetConsumptionSummary(ctx context.Context, from, to time.Time, filter *models.ConsumptionFilter) (*ConsumptionSummary, error) {
	if filter == nil {
		filter = &models.ConsumptionFilter{}
	}
	fromDate := utils.ToDate(from)
	toDate := utils.ToDate(to)
	filter.From = &fromDate
	filter.To = &toDate
	filter.Limit = 0

	cacheKey := summaryCacheKey(fromDate, toDate, filter)
	var cached ConsumptionSummary
	if hit, err := config.GetRedisObject(cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	records, _, err := models.ListConsumptions(ctx, filter)
	if err != nil {
		return nil, err
	}

	summary := summarize(fromDate, toDate, records)
	if err := config.SetRedisObject(cacheKey, summary, summaryCacheTTL); err != nil {
		config.LogError(config.GetLogger(), "reports", "GetConsumptionSummary", "cache write", cacheKey, err)
	}
	return summary, nil
}

func summaryCacheKey(from, to time.Time, filter *models.ConsumptionFilter) string {
	return fmt.Sprintf("consumptionSummary:%s:%s:%s:%s:%s:%s",
		from.Format(utils.DateLayout),
		to.Format(utils.DateLayout),
		utils.DereferencePtr(filter.HotelName),
		utils.DereferencePtr(filter.Department),
		utils.DereferencePtr(filter.CategoryLevel1),
		utils.DereferencePtr(filter.CategoryLevel2),
	)
}

func summarize(from, to time.Time, records []*models.MaterialConsumption) *ConsumptionSummary {
	summary := &ConsumptionSummary{
		StartDate:     from.Format(utils.DateLayout),
		EndDate:       to.Format(utils.DateLayout),
		TotalRecords:  len(records),
		TotalQuantity: decimal.Zero,
		TotalEmission: decimal.Zero,
		Daily:         []*DailyStat{},
		Departments:   []*DepartmentStat{},
		Categories:    []*CategoryStat{},
	}

	daily := make(map[string]*DailyStat)
	departments := make(map[models.Department]*DepartmentStat)
	level1Totals := make(map[string]*CategoryStat)
	level2Totals := make(map[string]map[string]*CategoryStat)

	for _, record := range records {
		summary.TotalQuantity = summary.TotalQuantity.Add(record.Quantity)
		summary.TotalEmission = summary.TotalEmission.Add(record.CarbonEmission)

		day := record.ConsumptionDate.Format(utils.DateLayout)
		dayStat, ok := daily[day]
		if !ok {
			dayStat = &DailyStat{Date: day, Quantity: decimal.Zero, Emission: decimal.Zero}
			daily[day] = dayStat
		}
		dayStat.Quantity = dayStat.Quantity.Add(record.Quantity)
		dayStat.Emission = dayStat.Emission.Add(record.CarbonEmission)
		dayStat.RecordCount++

		deptStat, ok := departments[record.Department]
		if !ok {
			deptStat = &DepartmentStat{
				Department: record.Department,
				Label:      record.Department.Label(),
				Emission:   decimal.Zero,
			}
			departments[record.Department] = deptStat
		}
		deptStat.Emission = deptStat.Emission.Add(record.CarbonEmission)
		deptStat.RecordCount++

		level1Stat, ok := level1Totals[record.CategoryLevel1]
		if !ok {
			level1Stat = &CategoryStat{Name: record.CategoryLevel1, Emission: decimal.Zero}
			level1Totals[record.CategoryLevel1] = level1Stat
			level2Totals[record.CategoryLevel1] = make(map[string]*CategoryStat)
		}
		level1Stat.Emission = level1Stat.Emission.Add(record.CarbonEmission)

		level2Stat, ok := level2Totals[record.CategoryLevel1][record.CategoryLevel2]
		if !ok {
			level2Stat = &CategoryStat{Name: record.CategoryLevel2, Emission: decimal.Zero}
			level2Totals[record.CategoryLevel1][record.CategoryLevel2] = level2Stat
		}
		level2Stat.Emission = level2Stat.Emission.Add(record.CarbonEmission)
	}

	for _, dayStat := range daily {
		summary.Daily = append(summary.Daily, dayStat)
	}
	sort.Slice(summary.Daily, func(i, j int) bool {
		return summary.Daily[i].Date < summary.Daily[j].Date
	})

	for _, deptStat := range departments {
		summary.Departments = append(summary.Departments, deptStat)
	}
	sort.Slice(summary.Departments, func(i, j int) bool {
		return summary.Departments[i].Emission.GreaterThan(summary.Departments[j].Emission)
	})

	for name, level1Stat := range level1Totals {
		for _, level2Stat := range level2Totals[name] {
			level1Stat.Children = append(level1Stat.Children, level2Stat)
		}
		sort.Slice(level1Stat.Children, func(i, j int) bool {
			return level1Stat.Children[i].Emission.GreaterThan(level1Stat.Children[j].Emission)
		})
		summary.Categories = append(summary.Categories, level1Stat)
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		return summary.Categories[i].Emission.GreaterThan(summary.Categories[j].Emission)
	})

	return summary
}
