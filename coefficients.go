package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/greenstay/carbon_backend/models"
)

func listCoefficientsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := optionalStringQuery(c, "q")
		coefficients, err := models.GetCoefficients(c.Request.Context(), query)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": coefficients})
	}
}

func getCoefficientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		coefficient, err := models.GetCoefficient(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": coefficient})
	}
}

// findCoefficientHandler looks up the catalog entry for a category pair; this
// is what data-entry forms call to preview the factor before saving.
func findCoefficientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		level1 := strings.TrimSpace(c.Query("category_level1"))
		level2 := strings.TrimSpace(c.Query("category_level2"))
		if level1 == "" || level2 == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category_level1 and category_level2 are required"})
			return
		}
		coefficient, err := models.FindCoefficient(c.Request.Context(), level1, level2)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": coefficient})
	}
}

func createCoefficientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewEmissionCoefficient
		if !bindJSON(c, &input) {
			return
		}
		coefficient, err := models.CreateCoefficient(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": coefficient})
	}
}

func updateCoefficientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewEmissionCoefficient
		if !bindJSON(c, &input) {
			return
		}
		coefficient, err := models.UpdateCoefficient(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": coefficient})
	}
}

func deleteCoefficientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		coefficient, err := models.DeleteCoefficient(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": coefficient})
	}
}

func importCoefficientsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		file, _, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		defer file.Close()

		result, err := models.ImportCoefficientsFromXlsx(c.Request.Context(), file)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	}
}

func exportCoefficientsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := models.ExportCoefficientsXlsx(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		sendXlsx(c, f, "coefficients.xlsx")
	}
}

func coefficientTemplateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := models.CoefficientTemplateXlsx()
		if err != nil {
			respondError(c, err)
			return
		}
		sendXlsx(c, f, "coefficient_template.xlsx")
	}
}

func listLevel1CategoriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := models.GetLevel1Categories(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": categories})
	}
}

func listLevel2CategoriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var parentId *int
		if raw := strings.TrimSpace(c.Query("parent_id")); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parent_id"})
				return
			}
			parentId = &v
		}
		categories, err := models.GetLevel2Categories(c.Request.Context(), parentId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": categories})
	}
}
