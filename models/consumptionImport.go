package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/greenstay/carbon_backend/config"
	"github.com/greenstay/carbon_backend/utils"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// Column contract for consumption sheets. Template downloads emit exactly
// this header row; imports read columns by this position.
var consumptionHeaders = []string{
	"Hotel Name",
	"Department",
	"Category Level 1",
	"Category Level 2",
	"Product Name",
	"Consumption Date",
	"Consumption Time",
	"Quantity",
}

// ImportConsumptionsFromXlsx reads the first sheet, validates every row
// independently and commits all valid rows in one transaction, refreshing
// each affected (hotel, department, date) cache once. Row errors are
// collected, never fatal.
func ImportConsumptionsFromXlsx(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.New("spreadsheet has no data rows")
	}

	result := &ImportResult{}
	batchId := uuid.NewString()

	type dateKey struct {
		hotel      string
		department Department
		date       time.Time
	}
	affectedKeys := make(map[dateKey]bool)
	seenRows := make(map[string]bool)

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	for i, row := range rows[1:] {
		rowNum := i + 2
		result.Total++

		input := &NewMaterialConsumption{
			HotelName:          strings.TrimSpace(cellValue(row, 0)),
			Department:         strings.TrimSpace(cellValue(row, 1)),
			CategoryLevel1Name: strings.TrimSpace(cellValue(row, 2)),
			CategoryLevel2Name: strings.TrimSpace(cellValue(row, 3)),
			ProductName:        strings.TrimSpace(cellValue(row, 4)),
			ConsumptionDate:    strings.TrimSpace(cellValue(row, 5)),
			ConsumptionTime:    strings.TrimSpace(cellValue(row, 6)),
		}
		quantity, qerr := utils.ParseDecimal(cellValue(row, 7))
		if qerr != nil {
			result.addError(rowNum, qerr.Error())
			continue
		}
		input.Quantity = quantity

		record, rerr := input.resolve(tx)
		if rerr != nil {
			result.addError(rowNum, rerr.Error())
			continue
		}

		// Duplicate rejection: against existing rows and within the batch.
		fingerprint := strings.Join([]string{
			record.HotelName, string(record.Department), record.CategoryLevel1,
			record.CategoryLevel2, record.ProductName,
			record.ConsumptionDate.Format(utils.DateLayout), record.ConsumptionTime,
		}, "|")
		if seenRows[fingerprint] {
			result.addError(rowNum, "duplicate of an earlier row in this file")
			continue
		}
		exists, derr := consumptionExists(tx, record)
		if derr != nil {
			tx.Rollback()
			return nil, derr
		}
		if exists {
			result.addError(rowNum, "an identical consumption record already exists")
			continue
		}

		if err := tx.Create(record).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		seenRows[fingerprint] = true
		affectedKeys[dateKey{record.HotelName, record.Department, record.ConsumptionDate}] = true
		result.Succeeded++
	}

	for key := range affectedKeys {
		if _, err := recomputeDailyEmissionTx(tx, key.hotel, key.department, key.date); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	config.GetLogger().WithFields(logrus.Fields{
		"batchId":   batchId,
		"total":     result.Total,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	}).Info("consumption import finished")
	return result, nil
}

// ExportConsumptionsXlsx writes one row per record with the human-readable
// department label and the derived emission.
func ExportConsumptionsXlsx(ctx context.Context, filter *ConsumptionFilter) (*excelize.File, error) {
	records, _, err := ListConsumptions(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := append(append([]string{}, consumptionHeaders...), "Unit", "Coefficient", "Carbon Emission (kgCO2e)")
	writeHeaderRow(f, sheet, headers)

	for i, record := range records {
		rowNum := i + 2
		setRow(f, sheet, rowNum,
			record.HotelName,
			record.Department.Label(),
			record.CategoryLevel1,
			record.CategoryLevel2,
			record.ProductName,
			record.ConsumptionDate.Format(utils.DateLayout),
			record.ConsumptionTime,
			record.Quantity.InexactFloat64(),
			string(record.Unit),
			record.EmissionCoefficient.InexactFloat64(),
			record.CarbonEmission.InexactFloat64(),
		)
	}
	return f, nil
}

// ConsumptionTemplateXlsx is the empty import template: the exact header row
// plus one example row.
func ConsumptionTemplateXlsx() (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	writeHeaderRow(f, sheet, consumptionHeaders)
	setRow(f, sheet, 2,
		"Grand Harbor Hotel", "Production", "Meat", "Pig meat", "Bacon",
		"2024-07-01", "08:30", "10")
	return f, nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string) {
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	// Widen columns to roughly fit the headers.
	for i, header := range headers {
		name, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(len(header) + 4)
		if width > 50 {
			width = 50
		}
		f.SetColWidth(sheet, name, name, width)
	}
}

func setRow(f *excelize.File, sheet string, rowNum int, values ...interface{}) {
	for i, value := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, rowNum)
		f.SetCellValue(sheet, cell, value)
	}
}
