package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/logpulse/backend/internal/logger"
	"github.com/logpulse/backend/internal/metrics"
	"github.com/logpulse/backend/internal/models"
	"github.com/logpulse/backend/internal/risk"
	"github.com/logpulse/backend/internal/storage"
)

const (
	// forecastTTL is how long a cached forecast stays valid. Age of
	// exactly 24h is still fresh; regeneration requires strictly more.
	forecastTTL = 24 * time.Hour
	// historyFetchLimit is how many snapshots feed forecast generation.
	historyFetchLimit = 30
	// baselineDelta is how far the recent average must drift from the
	// long-term baseline before the forecast mentions it.
	baselineDelta = 10
)

// ForecastService produces and caches one forecast per (project, date).
type ForecastService struct {
	store    storage.Store
	history  *HistoryService
	learning *LearningService
	llm      *LLMService
}

func NewForecastService(store storage.Store, history *HistoryService, learning *LearningService, llm *LLMService) *ForecastService {
	return &ForecastService{store: store, history: history, learning: learning, llm: llm}
}

func forecastKey(projectID uint, date string) string {
	return fmt.Sprintf("%d:%s", projectID, date)
}

// GetOrGenerate returns the cached forecast for (project, date), or
// generates and caches a fresh one when none exists or the cached one
// is older than 24 hours.
func (fs *ForecastService) GetOrGenerate(projectID uint, date string) (*models.Forecast, error) {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	if cached, ok := fs.cached(projectID, date); ok {
		metrics.ForecastCacheHits.Inc()
		return cached, nil
	}
	metrics.ForecastCacheMisses.Inc()
	return fs.generate(projectID, date)
}

// Personalize adapts a forecast's actions to a user: actions matching
// the user's ignored patterns are swapped for generic ones, and actions
// in preferred categories are moved to the front. The cached forecast
// is left untouched.
func (fs *ForecastService) Personalize(f *models.Forecast, userID uint) *models.Forecast {
	prefs := fs.learning.GetPreferences(userID)
	if len(prefs.IgnoredPatterns) == 0 && len(prefs.PreferredActionTypes) == 0 {
		return f
	}
	out := *f
	actions := risk.FilterIgnoredActions(f.Actions, prefs.IgnoredPatterns)
	out.Actions = risk.ReorderActions(actions, prefs.PreferredActionTypes)
	return &out
}

func (fs *ForecastService) cached(projectID uint, date string) (*models.Forecast, bool) {
	data, err := fs.store.Get(storage.NamespaceForecasts, forecastKey(projectID, date))
	if err != nil {
		return nil, false
	}
	var f models.Forecast
	if err := json.Unmarshal(data, &f); err != nil {
		logger.Warn("Corrupt cached forecast, regenerating", map[string]interface{}{
			"projectID": projectID,
			"date":      date,
			"error":     err.Error(),
		})
		return nil, false
	}
	if time.Since(f.GeneratedAt) > forecastTTL {
		return nil, false
	}
	return &f, true
}

func (fs *ForecastService) generate(projectID uint, date string) (*models.Forecast, error) {
	history := fs.history.Recent(projectID, historyFetchLimit)
	ctx := risk.AnalyzeTrend(history)

	text := risk.BuildForecastText(ctx)
	if baseline := fs.learning.GetProjectBaseline(projectID); len(baseline.Scores) > 0 {
		diff := float64(ctx.AverageScore) - baseline.Average
		if diff >= baselineDelta {
			text += fmt.Sprintf(" Current risk is running above the long-term baseline of %.1f.", baseline.Average)
		} else if diff <= -baselineDelta {
			text += fmt.Sprintf(" Current risk is running below the long-term baseline of %.1f.", baseline.Average)
		}
	}
	if fs.llm != nil {
		if enhanced, err := fs.llm.EnhanceForecastText(text, ctx); err == nil {
			text = enhanced
		} else {
			logger.Debug("LLM enhancement unavailable, keeping template text", map[string]interface{}{
				"projectID": projectID,
				"error":     err.Error(),
			})
		}
	}

	latest := 0
	if len(history) > 0 {
		latest = history[0].Score
	}

	forecast := &models.Forecast{
		ID:           uuid.NewString(),
		ProjectID:    projectID,
		Date:         date,
		ForecastText: text,
		Actions:      risk.BuildActions(ctx),
		RiskScore:    latest,
		Confidence:   risk.Confidence(len(history), ctx.Trend, len(ctx.TopRiskFactors)),
		GeneratedAt:  time.Now(),
	}

	data, err := json.Marshal(forecast)
	if err != nil {
		return nil, fmt.Errorf("failed to encode forecast: %w", err)
	}
	if err := fs.store.Set(storage.NamespaceForecasts, forecastKey(projectID, date), data); err != nil {
		// Served without durability; the next request regenerates.
		logger.Warn("Failed to cache forecast", map[string]interface{}{
			"projectID": projectID,
			"date":      date,
			"error":     err.Error(),
		})
	}
	return forecast, nil
}
