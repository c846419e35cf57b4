package risk

import (
	"testing"
	"time"
)

func snapshots(scores ...int) []Snapshot {
	now := time.Now()
	snaps := make([]Snapshot, 0, len(scores))
	for i, s := range scores {
		snaps = append(snaps, Snapshot{
			Score:     s,
			Timestamp: now.Add(-time.Duration(i) * time.Hour),
		})
	}
	return snaps
}

func TestAnalyzeTrendEmptyHistory(t *testing.T) {
	ctx := AnalyzeTrend(nil)

	if ctx.Trend != TrendStable {
		t.Errorf("Expected stable trend, got %s", ctx.Trend)
	}
	if ctx.AverageScore != 0 {
		t.Errorf("Expected average 0, got %d", ctx.AverageScore)
	}
	if ctx.TopRiskFactors == nil || len(ctx.TopRiskFactors) != 0 {
		t.Errorf("Expected empty factor list, got %v", ctx.TopRiskFactors)
	}
}

func TestAnalyzeTrendWindowCap(t *testing.T) {
	// 7 high scores followed by older zeros; only the window counts
	ctx := AnalyzeTrend(snapshots(70, 70, 70, 70, 70, 70, 70, 0, 0, 0))

	if len(ctx.RecentRiskScores) != 7 {
		t.Errorf("Expected 7 snapshots in window, got %d", len(ctx.RecentRiskScores))
	}
	if ctx.AverageScore != 70 {
		t.Errorf("Expected average 70 over the window, got %d", ctx.AverageScore)
	}
}

func TestAnalyzeTrendDirection(t *testing.T) {
	// History is newest-first, and the halves are compared in slice
	// order: the newer half is "first" and the older half "second".
	tests := []struct {
		name     string
		scores   []int
		expected Trend
	}{
		{"older half higher", []int{10, 10, 10, 40, 40, 40}, TrendIncreasing},
		{"newer half higher", []int{40, 40, 40, 10, 10, 10}, TrendDecreasing},
		{"flat", []int{20, 20, 20, 20}, TrendStable},
		{"difference of exactly 5", []int{20, 20, 15, 15}, TrendStable},
		{"difference just over 5", []int{20, 20, 26, 26}, TrendIncreasing},
		// With one snapshot the newer half is empty (mean 0), so any
		// score above the hysteresis band reads as increasing.
		{"single high snapshot", []int{40}, TrendIncreasing},
		{"single low snapshot", []int{3}, TrendStable},
	}

	for _, tt := range tests {
		ctx := AnalyzeTrend(snapshots(tt.scores...))
		if ctx.Trend != tt.expected {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.expected, ctx.Trend)
		}
	}
}

func TestAnalyzeTrendAverageRounds(t *testing.T) {
	ctx := AnalyzeTrend(snapshots(10, 11))
	if ctx.AverageScore != 11 {
		t.Errorf("Expected rounded average 11, got %d", ctx.AverageScore)
	}
}

func TestTopLabels(t *testing.T) {
	snaps := []Snapshot{
		{Score: 60, Labels: []string{"High", "High Error Rate", "Latency Issues"}},
		{Score: 55, Labels: []string{"High", "High Error Rate"}},
		{Score: 40, Labels: []string{"Moderate", "High Error Rate", "Memory Pressure"}},
	}

	ctx := AnalyzeTrend(snaps)
	expected := []string{"High Error Rate", "High", "Latency Issues"}
	if len(ctx.TopRiskFactors) != 3 {
		t.Fatalf("Expected 3 top factors, got %v", ctx.TopRiskFactors)
	}
	for i, want := range expected {
		if ctx.TopRiskFactors[i] != want {
			t.Errorf("Factor %d: expected %q, got %q", i, want, ctx.TopRiskFactors[i])
		}
	}
}

func TestTopLabelsTieBreaksFirstSeen(t *testing.T) {
	snaps := []Snapshot{
		{Score: 10, Labels: []string{"Low", "Latency Issues"}},
		{Score: 10, Labels: []string{"Memory Pressure"}},
	}

	ctx := AnalyzeTrend(snaps)
	// All counts are 1; first-seen order must survive the sort
	expected := []string{"Low", "Latency Issues", "Memory Pressure"}
	for i, want := range expected {
		if ctx.TopRiskFactors[i] != want {
			t.Errorf("Factor %d: expected %q, got %q", i, want, ctx.TopRiskFactors[i])
		}
	}
}
