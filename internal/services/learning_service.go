package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/logpulse/backend/internal/logger"
	"github.com/logpulse/backend/internal/models"
	"github.com/logpulse/backend/internal/risk"
	"github.com/logpulse/backend/internal/storage"
)

const (
	// baselineWindow bounds the rolling score list per project.
	baselineWindow = 30
	// feedbackWindow bounds the feedback log per (user, project).
	feedbackWindow = 50

	completionBonus   = 5
	completionPenalty = 2

	// A category counts as preferred once it has at least this many
	// feedback entries with a completion ratio above the threshold.
	preferredMinEntries = 2
	preferredRatio      = 0.6
)

// LearningService maintains the rolling per-project score baseline and
// per-user action preferences learned from feedback.
type LearningService struct {
	store storage.Store
}

func NewLearningService(store storage.Store) *LearningService {
	return &LearningService{store: store}
}

func baselineKey(projectID uint) string {
	return fmt.Sprintf("%d", projectID)
}

func preferencesKey(userID uint) string {
	return fmt.Sprintf("%d", userID)
}

func feedbackKey(userID, projectID uint) string {
	return fmt.Sprintf("%d:%d", userID, projectID)
}

// GetProjectBaseline returns the stored baseline, or an empty default
// when none exists or the store is unavailable.
func (ls *LearningService) GetProjectBaseline(projectID uint) *models.ProjectBaseline {
	data, err := ls.store.Get(storage.NamespaceBaselines, baselineKey(projectID))
	if err != nil {
		return &models.ProjectBaseline{Scores: []int{}}
	}
	var baseline models.ProjectBaseline
	if err := json.Unmarshal(data, &baseline); err != nil {
		logger.Warn("Corrupt project baseline, resetting", map[string]interface{}{
			"projectID": projectID,
			"error":     err.Error(),
		})
		return &models.ProjectBaseline{Scores: []int{}}
	}
	return &baseline
}

// UpdateProjectBaseline folds a new score into the rolling baseline:
// append, truncate to the most recent baselineWindow scores, recompute
// the mean. Called once per scoring pass.
func (ls *LearningService) UpdateProjectBaseline(projectID uint, score int) error {
	baseline := ls.GetProjectBaseline(projectID)
	baseline.Scores = append(baseline.Scores, score)
	if len(baseline.Scores) > baselineWindow {
		baseline.Scores = baseline.Scores[len(baseline.Scores)-baselineWindow:]
	}

	sum := 0
	for _, s := range baseline.Scores {
		sum += s
	}
	baseline.Average = float64(sum) / float64(len(baseline.Scores))
	baseline.LastUpdated = time.Now()

	data, err := json.Marshal(baseline)
	if err != nil {
		return fmt.Errorf("failed to encode baseline: %w", err)
	}
	if err := ls.store.Set(storage.NamespaceBaselines, baselineKey(projectID), data); err != nil {
		return fmt.Errorf("failed to persist baseline for project %d: %w", projectID, err)
	}
	return nil
}

// GetPreferences returns the stored preferences for a user, or the
// defaults when none exist.
func (ls *LearningService) GetPreferences(userID uint) *models.UserPreferences {
	data, err := ls.store.Get(storage.NamespacePreferences, preferencesKey(userID))
	if err != nil {
		return models.DefaultUserPreferences()
	}
	var prefs models.UserPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		logger.Warn("Corrupt user preferences, resetting", map[string]interface{}{
			"userID": userID,
			"error":  err.Error(),
		})
		return models.DefaultUserPreferences()
	}
	if prefs.ActionCompletionRate == nil {
		prefs.ActionCompletionRate = map[string]float64{}
	}
	return &prefs
}

// SavePreferences persists user-edited preference fields.
func (ls *LearningService) SavePreferences(userID uint, prefs *models.UserPreferences) error {
	if prefs.IgnoredPatterns == nil {
		prefs.IgnoredPatterns = []string{}
	}
	if prefs.ActionCompletionRate == nil {
		prefs.ActionCompletionRate = map[string]float64{}
	}
	prefs.LastUpdated = time.Now()

	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := ls.store.Set(storage.NamespacePreferences, preferencesKey(userID), data); err != nil {
		return fmt.Errorf("failed to persist preferences: %w", err)
	}
	return nil
}

// RecordFeedback appends one feedback event to the bounded per-project
// log and updates the user's completion rates: +5 (capped at 100) for
// a completed action, -2 (floored at 0) otherwise.
func (ls *LearningService) RecordFeedback(userID, projectID uint, fb models.ActionFeedback) error {
	if strings.TrimSpace(fb.Action) == "" {
		return fmt.Errorf("feedback action must not be empty")
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now()
	}

	history := ls.feedbackHistory(userID, projectID)
	history = append(history, fb)
	if len(history) > feedbackWindow {
		history = history[len(history)-feedbackWindow:]
	}
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to encode feedback history: %w", err)
	}
	if err := ls.store.Set(storage.NamespaceFeedback, feedbackKey(userID, projectID), data); err != nil {
		return fmt.Errorf("failed to persist feedback: %w", err)
	}

	prefs := ls.GetPreferences(userID)
	action := normalizeAction(fb.Action)
	rate := prefs.ActionCompletionRate[action]
	if fb.Completed {
		rate += completionBonus
		if rate > 100 {
			rate = 100
		}
	} else {
		rate -= completionPenalty
		if rate < 0 {
			rate = 0
		}
	}
	prefs.ActionCompletionRate[action] = rate
	prefs.PreferredActionTypes = ls.LearnedPatterns(userID, projectID)
	prefs.LastUpdated = time.Now()

	data, err = json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := ls.store.Set(storage.NamespacePreferences, preferencesKey(userID), data); err != nil {
		return fmt.Errorf("failed to persist preferences: %w", err)
	}
	return nil
}

// LearnedPatterns buckets the user's feedback history by inferred
// action category and returns the categories the user reliably
// completes.
func (ls *LearningService) LearnedPatterns(userID, projectID uint) []string {
	history := ls.feedbackHistory(userID, projectID)

	type bucket struct {
		total     int
		completed int
	}
	buckets := make(map[string]*bucket)
	var order []string
	for _, fb := range history {
		cat := risk.InferActionCategory(fb.Action)
		b, ok := buckets[cat]
		if !ok {
			b = &bucket{}
			buckets[cat] = b
			order = append(order, cat)
		}
		b.total++
		if fb.Completed {
			b.completed++
		}
	}

	preferred := []string{}
	for _, cat := range order {
		b := buckets[cat]
		if b.total >= preferredMinEntries && float64(b.completed)/float64(b.total) > preferredRatio {
			preferred = append(preferred, cat)
		}
	}
	return preferred
}

// FeedbackHistory returns the bounded feedback log for a (user,
// project) pair, oldest first.
func (ls *LearningService) FeedbackHistory(userID, projectID uint) []models.ActionFeedback {
	return ls.feedbackHistory(userID, projectID)
}

func (ls *LearningService) feedbackHistory(userID, projectID uint) []models.ActionFeedback {
	data, err := ls.store.Get(storage.NamespaceFeedback, feedbackKey(userID, projectID))
	if err != nil {
		return []models.ActionFeedback{}
	}
	var history []models.ActionFeedback
	if err := json.Unmarshal(data, &history); err != nil {
		logger.Warn("Corrupt feedback history, treating as empty", map[string]interface{}{
			"userID":    userID,
			"projectID": projectID,
			"error":     err.Error(),
		})
		return []models.ActionFeedback{}
	}
	return history
}

func normalizeAction(action string) string {
	return strings.ToLower(strings.TrimSpace(action))
}
