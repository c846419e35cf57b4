package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/logpulse/backend/internal/models"
	"github.com/logpulse/backend/internal/services"
	"gorm.io/gorm"
)

type FeedbackController struct {
	db       *gorm.DB
	learning *services.LearningService
}

func NewFeedbackController(db *gorm.DB, learning *services.LearningService) *FeedbackController {
	return &FeedbackController{db: db, learning: learning}
}

type FeedbackRequest struct {
	Action    string `json:"action" binding:"required"`
	Completed bool   `json:"completed"`
}

// AddFeedback records whether the caller completed a recommended
// action for a project.
func (fc *FeedbackController) AddFeedback(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	project, ok := projectParam(c, fc.db)
	if !ok {
		return
	}

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fb := models.ActionFeedback{
		Action:    req.Action,
		Completed: req.Completed,
	}
	if err := fc.learning.RecordFeedback(userID, project.ID, fb); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Feedback recorded",
	})
}

// GetFeedback returns the bounded feedback log for the caller on a
// project.
func (fc *FeedbackController) GetFeedback(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	project, ok := projectParam(c, fc.db)
	if !ok {
		return
	}

	history := fc.learning.FeedbackHistory(userID, project.ID)
	c.JSON(http.StatusOK, gin.H{
		"feedback": history,
		"count":    len(history),
	})
}

// GetLearnedPatterns returns the action categories the caller reliably
// completes for a project.
func (fc *FeedbackController) GetLearnedPatterns(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	project, ok := projectParam(c, fc.db)
	if !ok {
		return
	}

	patterns := fc.learning.LearnedPatterns(userID, project.ID)
	c.JSON(http.StatusOK, gin.H{"preferredActionTypes": patterns})
}

// GetPreferences returns the caller's stored preferences.
func (fc *FeedbackController) GetPreferences(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	c.JSON(http.StatusOK, fc.learning.GetPreferences(userID))
}

type UpdatePreferencesRequest struct {
	AlertThreshold  *int      `json:"alertThreshold"`
	IgnoredPatterns *[]string `json:"ignoredPatterns"`
}

// UpdatePreferences sets the caller's alert threshold and ignored
// patterns. Learned fields (completion rates, preferred categories)
// stay untouched.
func (fc *FeedbackController) UpdatePreferences(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prefs := fc.learning.GetPreferences(userID)
	if req.AlertThreshold != nil {
		if *req.AlertThreshold < 0 || *req.AlertThreshold > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "alertThreshold must be between 0 and 100"})
			return
		}
		prefs.AlertThreshold = *req.AlertThreshold
	}
	if req.IgnoredPatterns != nil {
		prefs.IgnoredPatterns = *req.IgnoredPatterns
	}

	if err := fc.learning.SavePreferences(userID, prefs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update preferences"})
		return
	}

	c.JSON(http.StatusOK, prefs)
}
