package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greenstay/carbon_backend/models"
)

func consumptionFilterFromQuery(c *gin.Context) (*models.ConsumptionFilter, bool) {
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
	return &models.ConsumptionFilter{
		From:           from,
		To:             to,
		HotelName:      optionalStringQuery(c, "hotel_name"),
		Department:     department,
		CategoryLevel1: optionalStringQuery(c, "category_level1"),
		CategoryLevel2: optionalStringQuery(c, "category_level2"),
		Limit:          limit,
		Offset:         offset,
	}, true
}

func listConsumptionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := consumptionFilterFromQuery(c)
		if !ok {
			return
		}
		records, total, err := models.ListConsumptions(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": records, "total": total})
	}
}

func getConsumptionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		record, err := models.GetConsumption(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": record})
	}
}

func createConsumptionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewMaterialConsumption
		if !bindJSON(c, &input) {
			return
		}
		record, err := models.CreateConsumption(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": record})
	}
}

func updateConsumptionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewMaterialConsumption
		if !bindJSON(c, &input) {
			return
		}
		record, err := models.UpdateConsumption(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": record})
	}
}

func deleteConsumptionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		record, err := models.DeleteConsumption(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": record})
	}
}

func importConsumptionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		file, _, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		defer file.Close()

		result, err := models.ImportConsumptionsFromXlsx(c.Request.Context(), file)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	}
}

func exportConsumptionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := consumptionFilterFromQuery(c)
		if !ok {
			return
		}
		// Exports are unpaginated.
		filter.Limit = 0
		filter.Offset = 0
		f, err := models.ExportConsumptionsXlsx(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		sendXlsx(c, f, "consumptions.xlsx")
	}
}

func consumptionTemplateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := models.ConsumptionTemplateXlsx()
		if err != nil {
			respondError(c, err)
			return
		}
		sendXlsx(c, f, "consumption_template.xlsx")
	}
}
