package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/logpulse/backend/internal/logger"
	"github.com/logpulse/backend/internal/metrics"
	"github.com/logpulse/backend/internal/models"
	"github.com/logpulse/backend/internal/risk"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	// maxScoreFetch caps how many stored log lines feed a recompute.
	maxScoreFetch = 1000
	// fetchChunkSize is the page size for bulk log retrieval.
	fetchChunkSize = 50
	// fetchParallelism bounds concurrent chunk queries.
	fetchParallelism = 8
)

// IngestedLine is one submitted log line before parsing. Timestamp is
// optional; an unparseable value is kept but never counts as recent.
type IngestedLine struct {
	Content   string                 `json:"content"`
	Timestamp string                 `json:"timestamp,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// ScoringService runs risk scoring passes: it converts log batches into
// risk scores and records the resulting snapshot and baseline update.
type ScoringService struct {
	db       *gorm.DB
	scorer   *risk.Scorer
	history  *HistoryService
	learning *LearningService
}

func NewScoringService(db *gorm.DB, scorer *risk.Scorer, history *HistoryService, learning *LearningService) *ScoringService {
	return &ScoringService{db: db, scorer: scorer, history: history, learning: learning}
}

// ScoreLogs computes a risk score over the supplied batch. Pure pass:
// nothing is persisted here.
func (ss *ScoringService) ScoreLogs(entries []models.LogEntry) risk.Score {
	start := time.Now()
	score := ss.scorer.Score(entries)
	metrics.ScoringDuration.Observe(time.Since(start).Seconds())
	metrics.ScoringPasses.WithLabelValues(ss.scorer.Variant().String()).Inc()
	return score
}

// Ingest stores submitted log lines for a project, scores the batch,
// appends the snapshot to history and folds the score into the project
// baseline. Persistence problems after the entries are saved are
// degraded, not surfaced.
func (ss *ScoringService) Ingest(projectID uint, lines []IngestedLine) (risk.Score, error) {
	now := time.Now()
	entries := make([]models.LogEntry, 0, len(lines))
	for _, line := range lines {
		content := strings.TrimSpace(line.Content)
		if content == "" {
			continue
		}
		ts := now
		if line.Timestamp != "" {
			ts = parseTimestamp(line.Timestamp) // zero when malformed
		}
		entries = append(entries, models.LogEntry{
			ProjectID: projectID,
			Content:   content,
			Timestamp: ts,
			Metadata:  models.JSONB(line.Metadata),
		})
	}

	if ss.db != nil && len(entries) > 0 {
		if err := ss.db.CreateInBatches(entries, 100).Error; err != nil {
			return risk.Score{}, fmt.Errorf("failed to save log entries: %w", err)
		}
	}

	score := ss.ScoreLogs(entries)
	ss.recordPass(projectID, score)
	return score, nil
}

// Rescore recomputes the project risk score over its stored recent
// logs. A failed fetch scores an empty batch rather than erroring.
func (ss *ScoringService) Rescore(ctx context.Context, projectID uint) risk.Score {
	entries, err := ss.recentEntries(ctx, projectID)
	if err != nil {
		logger.Warn("Log fetch failed, scoring empty batch", map[string]interface{}{
			"projectID": projectID,
			"error":     err.Error(),
		})
		entries = nil
	}
	score := ss.ScoreLogs(entries)
	ss.recordPass(projectID, score)
	return score
}

func (ss *ScoringService) recordPass(projectID uint, score risk.Score) {
	ss.history.Append(projectID, score)
	if err := ss.learning.UpdateProjectBaseline(projectID, score.Value); err != nil {
		logger.Warn("Baseline update failed", map[string]interface{}{
			"projectID": projectID,
			"error":     err.Error(),
		})
	}
}

// recentEntries fetches up to maxScoreFetch most-recent log lines in
// fixed-size chunks dispatched concurrently and then joined, bounding
// latency without unbounded concurrent connections.
func (ss *ScoringService) recentEntries(ctx context.Context, projectID uint) ([]models.LogEntry, error) {
	if ss.db == nil {
		return nil, nil
	}

	var total int64
	if err := ss.db.Model(&models.LogEntry{}).Where("project_id = ?", projectID).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count log entries: %w", err)
	}
	n := int(total)
	if n > maxScoreFetch {
		n = maxScoreFetch
	}
	if n == 0 {
		return nil, nil
	}

	chunks := (n + fetchChunkSize - 1) / fetchChunkSize
	results := make([][]models.LogEntry, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchParallelism)
	for i := 0; i < chunks; i++ {
		i := i
		g.Go(func() error {
			var batch []models.LogEntry
			err := ss.db.WithContext(gctx).
				Where("project_id = ?", projectID).
				Order("timestamp DESC").
				Limit(fetchChunkSize).
				Offset(i * fetchChunkSize).
				Find(&batch).Error
			if err != nil {
				return fmt.Errorf("failed to fetch log chunk %d: %w", i, err)
			}
			results[i] = batch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]models.LogEntry, 0, n)
	for _, batch := range results {
		entries = append(entries, batch...)
	}
	if len(entries) > maxScoreFetch {
		entries = entries[:maxScoreFetch]
	}
	return entries, nil
}

var timestampFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	time.UnixDate,
	time.RFC822,
	time.RFC850,
}

// parseTimestamp tries the common timestamp layouts and returns the
// zero time when none match, which downstream treats as "not recent".
func parseTimestamp(value string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
