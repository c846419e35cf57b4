package models

import (
	"time"

	"gorm.io/gorm"
)

// LogEntry is a single ingested log line for a project. Entries are
// immutable once stored.
type LogEntry struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ProjectID uint           `json:"projectId" gorm:"not null;index"`
	Content   string         `json:"content" gorm:"type:text;not null"`
	Timestamp time.Time      `json:"timestamp" gorm:"index"`
	Metadata  JSONB          `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time      `json:"createdAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (LogEntry) TableName() string {
	return "log_entries"
}
