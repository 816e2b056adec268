package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/greenstay/carbon_backend/models"
	"github.com/greenstay/carbon_backend/utils"
	"github.com/xuri/excelize/v2"
)

const xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// respondError maps domain failures to HTTP statuses: validation and broken
// references are the client's fault, duplicates and consistency clashes are
// conflicts, anything else is a 500.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, utils.ErrorRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}
	var domainErr *models.DomainError
	if errors.As(err, &domainErr) {
		status := http.StatusBadRequest
		switch domainErr.Kind {
		case models.ErrorKindDuplicate, models.ErrorKindConsistency:
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": domainErr.Message, "kind": domainErr.Kind})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// bindJSON binds the request body, answering 400 with per-field validation
// tags when the binding layer rejects it.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "invalid request",
				"fields": utils.ProcessValidationErrors(err),
			})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return false
	}
	return true
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// dateRangeQuery reads ?from=YYYY-MM-DD&to=YYYY-MM-DD, both required.
func dateRangeQuery(c *gin.Context) (time.Time, time.Time, bool) {
	from, err := utils.ParseDate(strings.TrimSpace(c.Query("from")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing from date"})
		return time.Time{}, time.Time{}, false
	}
	to, err := utils.ParseDate(strings.TrimSpace(c.Query("to")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing to date"})
		return time.Time{}, time.Time{}, false
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to date is before from date"})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func optionalDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	parsed, err := utils.ParseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s date", name)})
		return nil, false
	}
	return &parsed, true
}

func optionalStringQuery(c *gin.Context, name string) *string {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	return &raw
}

func optionalDepartmentQuery(c *gin.Context) (*models.Department, bool) {
	raw := strings.TrimSpace(c.Query("department"))
	if raw == "" {
		return nil, true
	}
	department, err := models.ParseDepartment(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return &department, true
}

func paginationQuery(c *gin.Context) (limit, offset int) {
	limit = 50
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 500 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

func sendXlsx(c *gin.Context, file *excelize.File, fileName string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Header("Content-Type", xlsxMimeType)
	c.Status(http.StatusOK)
	if err := file.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
