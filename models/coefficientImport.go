package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/greenstay/carbon_backend/config"
	"github.com/greenstay/carbon_backend/utils"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

var coefficientHeaders = []string{
	"Department",
	"Category Level 1",
	"Category Level 2",
	"Product Name",
	"Product Name (EN)",
	"Unit",
	"Coefficient",
	"Special Note",
}

// ImportCoefficientsFromXlsx loads the catalog. Categories are resolved
// get-or-create; the coefficient itself is upserted by category pair, which
// keeps the one-coefficient-per-pair invariant without rejecting re-imports of
// an updated sheet.
func ImportCoefficientsFromXlsx(ctx context.Context, reader io.Reader) (*ImportResult, error) {
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

		input := &NewEmissionCoefficient{
			Department:         strings.TrimSpace(cellValue(row, 0)),
			CategoryLevel1Name: strings.TrimSpace(cellValue(row, 1)),
			CategoryLevel2Name: strings.TrimSpace(cellValue(row, 2)),
			ProductName:        strings.TrimSpace(cellValue(row, 3)),
			ProductNameEn:      strings.TrimSpace(cellValue(row, 4)),
			Unit:               strings.TrimSpace(cellValue(row, 5)),
			SpecialNote:        strings.TrimSpace(cellValue(row, 7)),
		}
		if input.Department == "" || input.CategoryLevel1Name == "" || input.CategoryLevel2Name == "" ||
			input.ProductName == "" || input.Unit == "" {
			result.addError(rowNum, "required field missing")
			continue
		}

		coefficientValue, perr := utils.ParseDecimal(cellValue(row, 6))
		if perr != nil {
			result.addError(rowNum, perr.Error())
			continue
		}
		input.Coefficient = coefficientValue

		unit, department, verr := input.validate()
		if verr != nil {
			result.addError(rowNum, verr.Error())
			continue
		}

		if _, _, uerr := upsertCoefficientTx(tx, input, unit, department); uerr != nil {
			var domainErr *DomainError
			if errors.As(uerr, &domainErr) {
				result.addError(rowNum, domainErr.Message)
				continue
			}
			tx.Rollback()
			return nil, uerr
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
	}).Info("coefficient import finished")
	return result, nil
}

// ExportCoefficientsXlsx dumps the catalog with readable category and
// department labels.
func ExportCoefficientsXlsx(ctx context.Context) (*excelize.File, error) {
	coefficients, err := GetCoefficients(ctx, nil)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := append(append([]string{}, coefficientHeaders...), "Last Updated")
	writeHeaderRow(f, sheet, headers)

	for i, coefficient := range coefficients {
		level1Name := ""
		if coefficient.CategoryLevel1 != nil {
			level1Name = coefficient.CategoryLevel1.Name
		}
		level2Name := ""
		if coefficient.CategoryLevel2 != nil {
			level2Name = coefficient.CategoryLevel2.Name
		}
		setRow(f, sheet, i+2,
			coefficient.Department.Label(),
			level1Name,
			level2Name,
			coefficient.ProductName,
			coefficient.ProductNameEn,
			string(coefficient.Unit),
			coefficient.Coefficient.InexactFloat64(),
			coefficient.SpecialNote,
			coefficient.UpdatedAt.Format("2006/01/02"),
		)
	}
	return f, nil
}

func CoefficientTemplateXlsx() (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	writeHeaderRow(f, sheet, coefficientHeaders)
	setRow(f, sheet, 2,
		"Production", "Seafood", "Molluscs, other", "Chiton", "Chiton", "KG", "7.30", "")
	return f, nil
}
