package services

import (
	"testing"

	"github.com/logpulse/backend/internal/models"
	"github.com/logpulse/backend/internal/risk"
	"github.com/logpulse/backend/internal/storage"
)

func newTestLearningService() *LearningService {
	return NewLearningService(storage.NewMemoryStore())
}

func TestGetProjectBaselineDefault(t *testing.T) {
	ls := newTestLearningService()
	baseline := ls.GetProjectBaseline(1)

	if len(baseline.Scores) != 0 {
		t.Errorf("Expected empty baseline scores, got %v", baseline.Scores)
	}
	if baseline.Average != 0 {
		t.Errorf("Expected average 0, got %v", baseline.Average)
	}
}

func TestUpdateProjectBaseline(t *testing.T) {
	ls := newTestLearningService()

	for _, score := range []int{10, 20, 30} {
		if err := ls.UpdateProjectBaseline(1, score); err != nil {
			t.Fatalf("UpdateProjectBaseline failed: %v", err)
		}
	}

	baseline := ls.GetProjectBaseline(1)
	if len(baseline.Scores) != 3 {
		t.Fatalf("Expected 3 scores, got %d", len(baseline.Scores))
	}
	if baseline.Average != 20 {
		t.Errorf("Expected average 20, got %v", baseline.Average)
	}
}

func TestUpdateProjectBaselineWindow(t *testing.T) {
	ls := newTestLearningService()

	for score := 1; score <= 31; score++ {
		if err := ls.UpdateProjectBaseline(1, score); err != nil {
			t.Fatalf("UpdateProjectBaseline failed: %v", err)
		}
	}

	baseline := ls.GetProjectBaseline(1)
	if len(baseline.Scores) != 30 {
		t.Fatalf("Expected 30 scores after trimming, got %d", len(baseline.Scores))
	}
	if baseline.Scores[0] != 2 || baseline.Scores[29] != 31 {
		t.Errorf("Expected scores [2..31], got first %d last %d", baseline.Scores[0], baseline.Scores[29])
	}
	if baseline.Average != 16.5 {
		t.Errorf("Expected average 16.5, got %v", baseline.Average)
	}
}

func TestBaselinesAreScopedPerProject(t *testing.T) {
	ls := newTestLearningService()

	if err := ls.UpdateProjectBaseline(1, 90); err != nil {
		t.Fatalf("UpdateProjectBaseline failed: %v", err)
	}

	other := ls.GetProjectBaseline(2)
	if len(other.Scores) != 0 {
		t.Errorf("Expected project 2 baseline to be empty, got %v", other.Scores)
	}
}

func TestGetPreferencesDefault(t *testing.T) {
	ls := newTestLearningService()
	prefs := ls.GetPreferences(7)

	if prefs.AlertThreshold != 50 {
		t.Errorf("Expected default alert threshold 50, got %d", prefs.AlertThreshold)
	}
	if len(prefs.ActionCompletionRate) != 0 {
		t.Errorf("Expected empty completion rates, got %v", prefs.ActionCompletionRate)
	}
}

func TestRecordFeedbackRejectsEmptyAction(t *testing.T) {
	ls := newTestLearningService()

	err := ls.RecordFeedback(1, 1, models.ActionFeedback{Action: "   "})
	if err == nil {
		t.Error("Expected error for empty action")
	}
}

func TestRecordFeedbackCompletionRates(t *testing.T) {
	ls := newTestLearningService()
	action := "Review recent error logs and address recurring failures"

	for i := 0; i < 2; i++ {
		if err := ls.RecordFeedback(1, 1, models.ActionFeedback{Action: action, Completed: true}); err != nil {
			t.Fatalf("RecordFeedback failed: %v", err)
		}
	}

	prefs := ls.GetPreferences(1)
	rate := prefs.ActionCompletionRate[normalizeAction(action)]
	if rate != 10 {
		t.Errorf("Expected rate 10 after two completions, got %v", rate)
	}

	if err := ls.RecordFeedback(1, 1, models.ActionFeedback{Action: action, Completed: false}); err != nil {
		t.Fatalf("RecordFeedback failed: %v", err)
	}
	prefs = ls.GetPreferences(1)
	if got := prefs.ActionCompletionRate[normalizeAction(action)]; got != 8 {
		t.Errorf("Expected rate 8 after a miss, got %v", got)
	}
}

func TestRecordFeedbackRateFloor(t *testing.T) {
	ls := newTestLearningService()

	if err := ls.RecordFeedback(1, 1, models.ActionFeedback{Action: "ignore the alert", Completed: false}); err != nil {
		t.Fatalf("RecordFeedback failed: %v", err)
	}

	prefs := ls.GetPreferences(1)
	if got := prefs.ActionCompletionRate["ignore the alert"]; got != 0 {
		t.Errorf("Expected rate floored at 0, got %v", got)
	}
}

func TestRecordFeedbackRateCap(t *testing.T) {
	ls := newTestLearningService()
	action := "Continue monitoring system health metrics"

	for i := 0; i < 25; i++ {
		if err := ls.RecordFeedback(1, 1, models.ActionFeedback{Action: action, Completed: true}); err != nil {
			t.Fatalf("RecordFeedback failed: %v", err)
		}
	}

	prefs := ls.GetPreferences(1)
	if got := prefs.ActionCompletionRate[normalizeAction(action)]; got != 100 {
		t.Errorf("Expected rate capped at 100, got %v", got)
	}
}

func TestFeedbackHistoryWindow(t *testing.T) {
	ls := newTestLearningService()

	for i := 0; i < 55; i++ {
		if err := ls.RecordFeedback(1, 1, models.ActionFeedback{Action: "Set up alerts for sudden risk score changes", Completed: true}); err != nil {
			t.Fatalf("RecordFeedback failed: %v", err)
		}
	}

	history := ls.FeedbackHistory(1, 1)
	if len(history) != 50 {
		t.Errorf("Expected feedback log bounded at 50, got %d", len(history))
	}
}

func TestLearnedPatterns(t *testing.T) {
	ls := newTestLearningService()
	errorAction := "Review recent error logs and address recurring failures"
	dbAction := "Review database connection pool settings"

	// Two completed error-handling actions: preferred
	for i := 0; i < 2; i++ {
		if err := ls.RecordFeedback(1, 1, models.ActionFeedback{Action: errorAction, Completed: true}); err != nil {
			t.Fatalf("RecordFeedback failed: %v", err)
		}
	}
	// One of two database actions completed: 0.5 ratio, not preferred
	if err := ls.RecordFeedback(1, 1, models.ActionFeedback{Action: dbAction, Completed: true}); err != nil {
		t.Fatalf("RecordFeedback failed: %v", err)
	}
	if err := ls.RecordFeedback(1, 1, models.ActionFeedback{Action: dbAction, Completed: false}); err != nil {
		t.Fatalf("RecordFeedback failed: %v", err)
	}

	patterns := ls.LearnedPatterns(1, 1)
	if len(patterns) != 1 || patterns[0] != risk.ActionCategoryErrorHandling {
		t.Errorf("Expected [error-handling], got %v", patterns)
	}

	// The learned patterns are mirrored into stored preferences
	prefs := ls.GetPreferences(1)
	if len(prefs.PreferredActionTypes) != 1 || prefs.PreferredActionTypes[0] != risk.ActionCategoryErrorHandling {
		t.Errorf("Expected preferences to carry [error-handling], got %v", prefs.PreferredActionTypes)
	}
}

func TestLearnedPatternsNeedsTwoEntries(t *testing.T) {
	ls := newTestLearningService()

	if err := ls.RecordFeedback(1, 1, models.ActionFeedback{
		Action:    "Review recent error logs and address recurring failures",
		Completed: true,
	}); err != nil {
		t.Fatalf("RecordFeedback failed: %v", err)
	}

	if patterns := ls.LearnedPatterns(1, 1); len(patterns) != 0 {
		t.Errorf("Expected no patterns from a single entry, got %v", patterns)
	}
}
