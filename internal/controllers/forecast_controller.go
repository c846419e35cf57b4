package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/logpulse/backend/internal/logger"
	"github.com/logpulse/backend/internal/services"
	"gorm.io/gorm"
)

type ForecastController struct {
	db       *gorm.DB
	forecast *services.ForecastService
}

func NewForecastController(db *gorm.DB, forecast *services.ForecastService) *ForecastController {
	return &ForecastController{db: db, forecast: forecast}
}

// GetForecast returns the forecast for a project and date (today by
// default), generating and caching it when needed. Actions are
// reordered for the caller's learned preferences.
func (fc *ForecastController) GetForecast(c *gin.Context) {
	project, ok := projectParam(c, fc.db)
	if !ok {
		return
	}

	date := c.Query("date")
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
	}

	forecast, err := fc.forecast.GetOrGenerate(project.ID, date)
	if err != nil {
		logger.Error("Forecast generation failed", map[string]interface{}{
			"projectID": project.ID,
			"date":      date,
			"error":     err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate forecast"})
		return
	}

	if userID, ok := currentUserID(c); ok {
		forecast = fc.forecast.Personalize(forecast, userID)
	}

	c.JSON(http.StatusOK, forecast)
}
