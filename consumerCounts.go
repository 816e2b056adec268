package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greenstay/carbon_backend/models"
)

func consumerCountFilterFromQuery(c *gin.Context) (*models.ConsumerCountFilter, bool) {
	from, ok := optionalDateQuery(c, "from")
	if !ok {
		return nil, false
	}
	to, ok := optionalDateQuery(c, "to")
	if !ok {
		return nil, false
	}
	department, ok := optionalDepartmentQuery(c)
	if !ok {
		return nil, false
	}
	limit, offset := paginationQuery(c)
	return &models.ConsumerCountFilter{
		From:       from,
		To:         to,
		HotelName:  optionalStringQuery(c, "hotel_name"),
		Department: department,
		Limit:      limit,
		Offset:     offset,
	}, true
}

func listConsumerCountsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := consumerCountFilterFromQuery(c)
		if !ok {
			return
		}
		records, total, err := models.ListConsumerCounts(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": records, "total": total})
	}
}

func getConsumerCountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		record, err := models.GetConsumerCount(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": record})
	}
}

func createConsumerCountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewConsumerCount
		if !bindJSON(c, &input) {
			return
		}
		record, err := models.CreateConsumerCount(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": record})
	}
}

func updateConsumerCountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewConsumerCount
		if !bindJSON(c, &input) {
			return
		}
		record, err := models.UpdateConsumerCount(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": record})
	}
}

func deleteConsumerCountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		record, err := models.DeleteConsumerCount(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": record})
	}
}

func importConsumerCountsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		file, _, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		defer file.Close()

		result, err := models.ImportConsumerCountsFromXlsx(c.Request.Context(), file)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	}
}

func exportConsumerCountsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := consumerCountFilterFromQuery(c)
		if !ok {
			return
		}
		filter.Limit = 0
		filter.Offset = 0
		f, err := models.ExportConsumerCountsXlsx(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		sendXlsx(c, f, "consumer_counts.xlsx")
	}
}

func consumerCountTemplateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := models.ConsumerCountTemplateXlsx()
		if err != nil {
			respondError(c, err)
			return
		}
		sendXlsx(c, f, "consumer_count_template.xlsx")
	}
}

// refreshDailyEmissionsHandler rebuilds every cached daily total from the
// consumption ledger. Ops tooling for when cached values are suspected stale.
func refreshDailyEmissionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		changed, err := models.RefreshAllDailyEmissions(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"changed": changed}})
	}
}
