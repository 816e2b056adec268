package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/greenstay/carbon_backend/config"
	"github.com/greenstay/carbon_backend/utils"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

var consumerCountHeaders = []string{
	"Hotel Name",
	"Department",
	"Consumption Date",
	"Consumer Count",
	"Notes",
}

// ImportConsumerCountsFromXlsx loads headcount rows. Rejected per row:
// blank hotel, unrecognized department, unparsable date, non-positive count,
// or an existing record for the same (hotel, department, date).
func ImportConsumerCountsFromXlsx(ctx context.Context, reader io.Reader) (*ImportResult, error) {
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

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	for i, row := range rows[1:] {
		rowNum := i + 2
		result.Total++

		input := &NewConsumerCount{
			HotelName:       strings.TrimSpace(cellValue(row, 0)),
			Department:      strings.TrimSpace(cellValue(row, 1)),
			ConsumptionDate: strings.TrimSpace(cellValue(row, 2)),
			Notes:           strings.TrimSpace(cellValue(row, 4)),
		}

		countCell := strings.TrimSpace(cellValue(row, 3))
		count, cerr := strconv.Atoi(countCell)
		if cerr != nil {
			result.addError(rowNum, fmt.Sprintf("invalid consumer count %q", countCell))
			continue
		}
		if count <= 0 {
			result.addError(rowNum, "consumer count must be greater than zero")
			continue
		}
		input.ConsumerCount = count

		department, date, rerr := input.resolve()
		if rerr != nil {
			result.addError(rowNum, rerr.Error())
			continue
		}

		if _, cerr := createConsumerCountTx(tx, input, department, date); cerr != nil {
			var domainErr *DomainError
			if errors.As(cerr, &domainErr) {
				result.addError(rowNum, domainErr.Message)
				continue
			}
			tx.Rollback()
			return nil, cerr
		}
		result.Succeeded++
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	config.GetLogger().WithFields(logrus.Fields{
		"batchId":   batchId,
		"total":     result.Total,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	}).Info("consumer count import finished")
	return result, nil
}

// ExportConsumerCountsXlsx includes the cached daily emission so a sheet can
// be eyeballed against the dashboard.
func ExportConsumerCountsXlsx(ctx context.Context, filter *ConsumerCountFilter) (*excelize.File, error) {
	records, _, err := ListConsumerCounts(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := append(append([]string{}, consumerCountHeaders...), "Daily Carbon Emission (kgCO2e)")
	writeHeaderRow(f, sheet, headers)

	for i, record := range records {
		setRow(f, sheet, i+2,
			record.HotelName,
			record.Department.Label(),
			record.ConsumptionDate.Format(utils.DateLayout),
			record.ConsumerCount,
			record.Notes,
			record.DailyCarbonEmission.InexactFloat64(),
		)
	}
	return f, nil
}

func ConsumerCountTemplateXlsx() (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	writeHeaderRow(f, sheet, consumerCountHeaders)
	setRow(f, sheet, 2, "Grand Harbor Hotel", "Production", "2024-07-01", 120, "")
	return f, nil
}
