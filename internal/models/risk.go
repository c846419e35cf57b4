package models

import (
	"time"

	"github.com/lib/pq"
)

// RiskHistoryEntry is a persisted risk-score snapshot for a project.
// History is append-only and read back newest-first.
type RiskHistoryEntry struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ProjectID uint           `json:"projectId" gorm:"not null;index"`
	Score     int            `json:"score" gorm:"not null"`
	Labels    pq.StringArray `json:"labels" gorm:"type:text[]"`
	Factors   JSONB          `json:"factors" gorm:"type:jsonb"`
	Timestamp time.Time      `json:"timestamp" gorm:"index"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (RiskHistoryEntry) TableName() string {
	return "risk_history"
}

// ProjectBaseline is the rolling per-project average of recent risk
// scores. It lives in the key-value store, not in postgres.
type ProjectBaseline struct {
	Scores      []int     `json:"scores"`
	Average     float64   `json:"average"`
	LastUpdated time.Time `json:"lastUpdated"`
}
