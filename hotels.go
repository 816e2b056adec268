package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/greenstay/carbon_backend/models"
)

func listHotelsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		activeOnly := strings.EqualFold(c.Query("active_only"), "true")
		hotels, err := models.GetHotels(c.Request.Context(), activeOnly)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": hotels})
	}
}

func getHotelHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		hotel, err := models.GetHotel(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": hotel})
	}
}

func createHotelHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewHotel
		if !bindJSON(c, &input) {
			return
		}
		hotel, err := models.CreateHotel(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": hotel})
	}
}

type toggleHotelRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func toggleHotelHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var req toggleHotelRequest
		if !bindJSON(c, &req) {
			return
		}
		hotel, err := models.ToggleActiveHotel(c.Request.Context(), id, *req.IsActive)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": hotel})
	}
}
