package services

import (
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"github.com/logpulse/backend/internal/logger"
	"github.com/logpulse/backend/internal/metrics"
	"github.com/logpulse/backend/internal/models"
	"github.com/logpulse/backend/internal/risk"
	"github.com/logpulse/backend/internal/storage"
	"gorm.io/gorm"
)

const (
	// maxHistoryFetch caps how many snapshots a single read returns.
	maxHistoryFetch = 50
	// fallbackHistoryWindow bounds the per-project snapshot list kept
	// in the key-value fallback store.
	fallbackHistoryWindow = 50
)

// HistoryService persists risk-score snapshots. Postgres is the primary
// store; when it is unavailable the service degrades to the key-value
// fallback so a scoring pass never fails on persistence.
type HistoryService struct {
	db    *gorm.DB
	store storage.Store
}

func NewHistoryService(db *gorm.DB, store storage.Store) *HistoryService {
	return &HistoryService{db: db, store: store}
}

// Append records a snapshot for a project. Failures degrade to the
// fallback store; the caller always proceeds.
func (hs *HistoryService) Append(projectID uint, score risk.Score) {
	if hs.db != nil {
		entry := models.RiskHistoryEntry{
			ProjectID: projectID,
			Score:     score.Value,
			Labels:    pq.StringArray(score.Labels),
			Factors:   factorsMap(score.Factors),
			Timestamp: score.Timestamp,
		}
		if err := hs.db.Create(&entry).Error; err == nil {
			return
		} else {
			logger.Warn("Risk history insert failed, falling back to key-value store", map[string]interface{}{
				"projectID": projectID,
				"error":     err.Error(),
			})
			metrics.StoreFallbacks.WithLabelValues("history_append").Inc()
		}
	}
	hs.appendFallback(projectID, score)
}

// Recent returns up to limit snapshots for a project, newest first.
// Query failures degrade to the fallback store, then to empty history.
func (hs *HistoryService) Recent(projectID uint, limit int) []risk.Snapshot {
	if limit <= 0 || limit > maxHistoryFetch {
		limit = maxHistoryFetch
	}

	if hs.db != nil {
		var entries []models.RiskHistoryEntry
		err := hs.db.Where("project_id = ?", projectID).
			Order("timestamp DESC").
			Limit(limit).
			Find(&entries).Error
		if err == nil {
			snaps := make([]risk.Snapshot, 0, len(entries))
			for _, e := range entries {
				snaps = append(snaps, risk.Snapshot{
					Score:     e.Score,
					Timestamp: e.Timestamp,
					Labels:    []string(e.Labels),
				})
			}
			return snaps
		}
		logger.Warn("Risk history query failed, falling back to key-value store", map[string]interface{}{
			"projectID": projectID,
			"error":     err.Error(),
		})
		metrics.StoreFallbacks.WithLabelValues("history_query").Inc()
	}

	return hs.recentFallback(projectID, limit)
}

func historyKey(projectID uint) string {
	return fmt.Sprintf("%d", projectID)
}

func (hs *HistoryService) appendFallback(projectID uint, score risk.Score) {
	snaps := hs.recentFallback(projectID, fallbackHistoryWindow)
	snap := risk.Snapshot{Score: score.Value, Timestamp: score.Timestamp, Labels: score.Labels}
	snaps = append([]risk.Snapshot{snap}, snaps...)
	if len(snaps) > fallbackHistoryWindow {
		snaps = snaps[:fallbackHistoryWindow]
	}

	data, err := json.Marshal(snaps)
	if err != nil {
		logger.Error("Failed to encode fallback risk history", map[string]interface{}{
			"projectID": projectID,
			"error":     err.Error(),
		})
		return
	}
	if err := hs.store.Set(storage.NamespaceRiskHistory, historyKey(projectID), data); err != nil {
		logger.Error("Failed to write fallback risk history", map[string]interface{}{
			"projectID": projectID,
			"error":     err.Error(),
		})
	}
}

func (hs *HistoryService) recentFallback(projectID uint, limit int) []risk.Snapshot {
	data, err := hs.store.Get(storage.NamespaceRiskHistory, historyKey(projectID))
	if err != nil {
		return []risk.Snapshot{}
	}
	var snaps []risk.Snapshot
	if err := json.Unmarshal(data, &snaps); err != nil {
		logger.Warn("Corrupt fallback risk history, treating as empty", map[string]interface{}{
			"projectID": projectID,
			"error":     err.Error(),
		})
		return []risk.Snapshot{}
	}
	if len(snaps) > limit {
		snaps = snaps[:limit]
	}
	return snaps
}

func factorsMap(f risk.Factors) models.JSONB {
	data, err := json.Marshal(f)
	if err != nil {
		return nil
	}
	var m models.JSONB
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}
