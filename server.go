package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/greenstay/carbon_backend/config"
	"github.com/greenstay/carbon_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const defaultPort = "8080"

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

// customErrorLogger logs only requests that accumulated errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func registerRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.GET("/hotels", listHotelsHandler())
	api.POST("/hotels", createHotelHandler())
	api.GET("/hotels/:id", getHotelHandler())
	api.PUT("/hotels/:id/active", toggleHotelHandler())

	api.GET("/categories/level1", listLevel1CategoriesHandler())
	api.GET("/categories/level2", listLevel2CategoriesHandler())

	api.GET("/coefficients", listCoefficientsHandler())
	api.POST("/coefficients", createCoefficientHandler())
	api.GET("/coefficients/lookup", findCoefficientHandler())
	api.GET("/coefficients/export", exportCoefficientsHandler())
	api.GET("/coefficients/template", coefficientTemplateHandler())
	api.POST("/coefficients/import", importCoefficientsHandler())
	api.GET("/coefficients/:id", getCoefficientHandler())
	api.PUT("/coefficients/:id", updateCoefficientHandler())
	api.DELETE("/coefficients/:id", deleteCoefficientHandler())

	api.GET("/consumptions", listConsumptionsHandler())
	api.POST("/consumptions", createConsumptionHandler())
	api.GET("/consumptions/export", exportConsumptionsHandler())
	api.GET("/consumptions/template", consumptionTemplateHandler())
	api.POST("/consumptions/import", importConsumptionsHandler())
	api.GET("/consumptions/:id", getConsumptionHandler())
	api.PUT("/consumptions/:id", updateConsumptionHandler())
	api.DELETE("/consumptions/:id", deleteConsumptionHandler())

	api.GET("/consumer-counts", listConsumerCountsHandler())
	api.POST("/consumer-counts", createConsumerCountHandler())
	api.GET("/consumer-counts/export", exportConsumerCountsHandler())
	api.GET("/consumer-counts/template", consumerCountTemplateHandler())
	api.POST("/consumer-counts/import", importConsumerCountsHandler())
	api.GET("/consumer-counts/:id", getConsumerCountHandler())
	api.PUT("/consumer-counts/:id", updateConsumerCountHandler())
	api.DELETE("/consumer-counts/:id", deleteConsumerCountHandler())

	api.GET("/dashboard/summary", consumptionSummaryHandler())
	api.GET("/dashboard/normalize", normalizeMonthHandler())
	api.GET("/dashboard/normalize-range", normalizeRangeHandler())

	// Ops tooling: full cache rebuild of the daily emission totals.
	api.POST("/internal/ops/refresh-daily-emissions", refreshDailyEmissionsHandler())
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so the platform considers the revision
	// healthy. Until the DB is ready, app endpoints return 503.
	r := gin.New()
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Header("x-correlation-id", cid)
		c.Next()
	})
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			// Deny all when not configured in production.
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())
	registerRoutes(r)
	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedis()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables; allow running it as a
	// separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	setReadCommitted(db, logger)

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port, "/")
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

// setReadCommitted keeps the recompute transactions from holding gap locks
// longer than needed. Retries because the DB may still be warming up.
func setReadCommitted(db *gorm.DB, logger *logrus.Logger) {
	for attempt := 1; attempt <= 5; attempt++ {
		err := db.Exec("SET SESSION TRANSACTION ISOLATION LEVEL READ COMMITTED").Error
		if err == nil {
			return
		}
		sleep := time.Second * time.Duration(1<<attempt)
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		logger.WithFields(logrus.Fields{
			"field":   "database",
			"attempt": attempt,
		}).Warn("failed to set isolation level; retrying in " + sleep.String() + ": " + err.Error())
		time.Sleep(sleep)
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
