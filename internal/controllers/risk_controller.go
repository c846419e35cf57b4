package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/logpulse/backend/internal/risk"
	"github.com/logpulse/backend/internal/services"
	"gorm.io/gorm"
)

type RiskController struct {
	db      *gorm.DB
	scoring *services.ScoringService
	history *services.HistoryService
}

func NewRiskController(db *gorm.DB, scoring *services.ScoringService, history *services.HistoryService) *RiskController {
	return &RiskController{db: db, scoring: scoring, history: history}
}

// GetLatest returns the most recent risk snapshot for a project. A
// project with no history reads as healthy.
func (rc *RiskController) GetLatest(c *gin.Context) {
	project, ok := projectParam(c, rc.db)
	if !ok {
		return
	}

	snaps := rc.history.Recent(project.ID, 1)
	if len(snaps) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"score":  0,
			"labels": []string{risk.LabelHealthy},
		})
		return
	}
	c.JSON(http.StatusOK, snaps[0])
}

// GetHistory returns up to 50 recent risk snapshots, newest first.
func (rc *RiskController) GetHistory(c *gin.Context) {
	project, ok := projectParam(c, rc.db)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	snaps := rc.history.Recent(project.ID, limit)

	c.JSON(http.StatusOK, gin.H{
		"history": snaps,
		"count":   len(snaps),
	})
}

// GetTrend returns the trend summary over the recent history window.
func (rc *RiskController) GetTrend(c *gin.Context) {
	project, ok := projectParam(c, rc.db)
	if !ok {
		return
	}

	snaps := rc.history.Recent(project.ID, 30)
	c.JSON(http.StatusOK, risk.AnalyzeTrend(snaps))
}

// Rescore recomputes the project risk score over its stored logs.
func (rc *RiskController) Rescore(c *gin.Context) {
	project, ok := projectParam(c, rc.db)
	if !ok {
		return
	}

	score := rc.scoring.Rescore(c.Request.Context(), project.ID)
	c.JSON(http.StatusOK, score)
}
