package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/greenstay/carbon_backend/models"
	"github.com/greenstay/carbon_backend/models/reports"
	"github.com/greenstay/carbon_backend/utils"
)

func consumptionSummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, ok := dateRangeQuery(c)
		if !ok {
			return
		}
		department, ok := optionalDepartmentQuery(c)
		if !ok {
			return
		}
		filter := &models.ConsumptionFilter{
			HotelName:      optionalStringQuery(c, "hotel_name"),
			Department:     department,
			CategoryLevel1: optionalStringQuery(c, "category_level1"),
			CategoryLevel2: optionalStringQuery(c, "category_level2"),
		}
		summary, err := reports.GetConsumptionSummary(c.Request.Context(), from, to, filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": summary})
	}
}

// normalizeMonthHandler returns per-consumer adjusted emissions for one
// (hotel, department, month).
func normalizeMonthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		hotelName := strings.TrimSpace(c.Query("hotel_name"))
		if hotelName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hotel_name is required"})
			return
		}
		department, err := models.ParseDepartment(strings.TrimSpace(c.Query("department")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		month := strings.TrimSpace(c.Query("month"))
		if _, _, merr := utils.MonthRange(month); merr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
			return
		}
		result, err := models.NormalizeMonth(c.Request.Context(), hotelName, department, month)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	}
}

func normalizeRangeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, ok := dateRangeQuery(c)
		if !ok {
			return
		}
		department, ok := optionalDepartmentQuery(c)
		if !ok {
			return
		}
		results, err := models.NormalizeRange(c.Request.Context(), from, to,
			optionalStringQuery(c, "hotel_name"), department)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": results})
	}
}
