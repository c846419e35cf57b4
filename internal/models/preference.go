package models

import (
	"time"
)

// ActionFeedback records whether a user completed a recommended action
// for a project. The per-project feedback log is bounded to the most
// recent 50 entries.
type ActionFeedback struct {
	Action    string    `json:"action"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserPreferences tracks which recommended actions a user historically
// completes, used to reorder generated forecast actions.
type UserPreferences struct {
	AlertThreshold       int                `json:"alertThreshold"`
	IgnoredPatterns      []string           `json:"ignoredPatterns"`
	ActionCompletionRate map[string]float64 `json:"actionCompletionRate"`
	PreferredActionTypes []string           `json:"preferredActionTypes"`
	LastUpdated          time.Time          `json:"lastUpdated"`
}

// DefaultUserPreferences returns preferences for a user with no
// recorded feedback.
func DefaultUserPreferences() *UserPreferences {
	return &UserPreferences{
		AlertThreshold:       50,
		IgnoredPatterns:      []string{},
		ActionCompletionRate: map[string]float64{},
		PreferredActionTypes: []string{},
	}
}
