package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/logpulse/backend/internal/logger"
	"github.com/logpulse/backend/internal/models"
	"github.com/logpulse/backend/internal/services"
	"gorm.io/gorm"
)

type LogController struct {
	db      *gorm.DB
	scoring *services.ScoringService
}

func NewLogController(db *gorm.DB, scoring *services.ScoringService) *LogController {
	return &LogController{db: db, scoring: scoring}
}

type IngestRequest struct {
	Logs json.RawMessage `json:"logs" binding:"required"`
}

// parseIngestPayload accepts the three supported payload shapes: a raw
// text blob (split on newlines), an array of line strings, or an array
// of structured entries. Anything else is rejected here, at the
// ingestion boundary.
func parseIngestPayload(raw json.RawMessage) ([]services.IngestedLine, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		var lines []services.IngestedLine
		for _, l := range strings.Split(text, "\n") {
			if strings.TrimSpace(l) == "" {
				continue
			}
			lines = append(lines, services.IngestedLine{Content: l})
		}
		return lines, nil
	}

	var plain []string
	if err := json.Unmarshal(raw, &plain); err == nil {
		lines := make([]services.IngestedLine, 0, len(plain))
		for _, l := range plain {
			lines = append(lines, services.IngestedLine{Content: l})
		}
		return lines, nil
	}

	var structured []services.IngestedLine
	if err := json.Unmarshal(raw, &structured); err == nil {
		return structured, nil
	}

	return nil, fmt.Errorf("logs must be a string or an array of log lines")
}

// IngestLogs stores submitted log lines for a project and runs a
// scoring pass over the batch.
func (lc *LogController) IngestLogs(c *gin.Context) {
	project, ok := projectParam(c, lc.db)
	if !ok {
		return
	}

	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines, err := parseIngestPayload(req.Logs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	score, err := lc.scoring.Ingest(project.ID, lines)
	if err != nil {
		logger.Error("Log ingestion failed", map[string]interface{}{
			"projectID": project.ID,
			"error":     err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ingest logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"ingested":  len(lines),
		"riskScore": score,
	})
}

// GetLogs lists a project's most recent log entries.
func (lc *LogController) GetLogs(c *gin.Context) {
	project, ok := projectParam(c, lc.db)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	var entries []models.LogEntry
	if err := lc.db.Where("project_id = ?", project.ID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  entries,
		"count": len(entries),
	})
}
