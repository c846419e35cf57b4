package risk

import (
	"strings"
	"testing"
	"time"

	"github.com/logpulse/backend/internal/models"
)

func fixedScorer(set KeywordSet, now time.Time) *Scorer {
	s := NewScorer(set)
	s.now = func() time.Time { return now }
	return s
}

func entriesFrom(now time.Time, contents ...string) []models.LogEntry {
	entries := make([]models.LogEntry, 0, len(contents))
	for _, c := range contents {
		entries = append(entries, models.LogEntry{Content: c, Timestamp: now})
	}
	return entries
}

func TestScoreEmptyBatch(t *testing.T) {
	now := time.Now()
	score := fixedScorer(Basic, now).Score(nil)

	if score.Value != 0 {
		t.Errorf("Expected score 0 for empty batch, got %d", score.Value)
	}
	if len(score.Labels) != 1 || score.Labels[0] != LabelHealthy {
		t.Errorf("Expected labels [Healthy], got %v", score.Labels)
	}
	if !score.Timestamp.Equal(now) {
		t.Error("Expected scoring timestamp, not a log timestamp")
	}
}

func TestScoreBasicErrorAndLatency(t *testing.T) {
	now := time.Now()
	entries := entriesFrom(now,
		"ERROR: db failed",
		"WARN: slow response",
		"INFO: ok",
	)

	score := fixedScorer(Basic, now).Score(entries)

	// errorRate 33.3% contributes min(50, 66.7)=50, latencyRate 33.3%
	// contributes min(20, 66.7)=20
	if score.Value != 70 {
		t.Errorf("Expected score 70, got %d", score.Value)
	}

	expected := []string{LabelCritical, "High Error Rate", "Latency Issues"}
	if len(score.Labels) != len(expected) {
		t.Fatalf("Expected labels %v, got %v", expected, score.Labels)
	}
	for i, label := range expected {
		if score.Labels[i] != label {
			t.Errorf("Label %d: expected %q, got %q", i, label, score.Labels[i])
		}
	}

	if score.Factors.ErrorRate != 33.3 {
		t.Errorf("Expected error rate 33.3, got %v", score.Factors.ErrorRate)
	}
	if score.Factors.Latency != 33.3 {
		t.Errorf("Expected latency rate 33.3, got %v", score.Factors.Latency)
	}
	if score.Factors.LogVolume != 3 {
		t.Errorf("Expected log volume 3, got %d", score.Factors.LogVolume)
	}
}

func TestScoreEnhancedLowerCaps(t *testing.T) {
	now := time.Now()
	entries := entriesFrom(now,
		"ERROR: database connection failed",
		"Exception in payment worker",
		"Request timeout after 30s",
	)

	score := fixedScorer(Enhanced, now).Score(entries)

	// Enhanced caps the high error contribution at 40 instead of 50
	if score.Value != 60 {
		t.Errorf("Expected score 60, got %d", score.Value)
	}
	if score.Labels[0] != LabelHigh {
		t.Errorf("Expected High severity, got %q", score.Labels[0])
	}
}

func TestScoreLowErrorTier(t *testing.T) {
	now := time.Now()
	contents := []string{"error during cleanup"}
	for i := 0; i < 24; i++ {
		contents = append(contents, "user request completed")
	}
	entries := entriesFrom(now, contents...)

	// errorRate 4%: scores under Enhanced, ignored under Basic
	enhanced := fixedScorer(Enhanced, now).Score(entries)
	if enhanced.Value != 8 {
		t.Errorf("Expected Enhanced score 8, got %d", enhanced.Value)
	}
	if enhanced.Labels[0] != LabelLow {
		t.Errorf("Expected Low severity, got %q", enhanced.Labels[0])
	}

	basic := fixedScorer(Basic, now).Score(entries)
	if basic.Value != 0 {
		t.Errorf("Expected Basic score 0, got %d", basic.Value)
	}
	if len(basic.Labels) != 1 || basic.Labels[0] != LabelHealthy {
		t.Errorf("Expected labels [Healthy], got %v", basic.Labels)
	}
}

func TestScoreVolumeTiers(t *testing.T) {
	now := time.Now()

	makeClean := func(n int) []models.LogEntry {
		entries := make([]models.LogEntry, n)
		for i := range entries {
			entries[i] = models.LogEntry{Content: "heartbeat ok", Timestamp: now}
		}
		return entries
	}

	tests := []struct {
		name     string
		set      KeywordSet
		count    int
		expected int
		label    string
	}{
		{"basic above 1000", Basic, 1001, 30, "High Log Volume"},
		{"basic at 1000", Basic, 1000, 0, ""},
		{"enhanced above 2000", Enhanced, 2001, 25, "Very High Log Volume"},
		{"enhanced above 1000", Enhanced, 1001, 20, "High Log Volume"},
		{"enhanced above 500", Enhanced, 501, 10, "Elevated Log Volume"},
	}

	for _, tt := range tests {
		score := fixedScorer(tt.set, now).Score(makeClean(tt.count))
		if score.Value != tt.expected {
			t.Errorf("%s: expected score %d, got %d", tt.name, tt.expected, score.Value)
		}
		if tt.label != "" {
			found := false
			for _, l := range score.Labels {
				if l == tt.label {
					found = true
				}
			}
			if !found {
				t.Errorf("%s: expected label %q in %v", tt.name, tt.label, score.Labels)
			}
		}
	}
}

func TestScoreStaleTimestampsExcludedFromVolume(t *testing.T) {
	now := time.Now()
	entries := []models.LogEntry{
		{Content: "heartbeat ok", Timestamp: now},
		{Content: "heartbeat ok", Timestamp: now.Add(-2 * time.Hour)},
		{Content: "heartbeat ok"}, // zero timestamp, e.g. malformed input
	}

	score := fixedScorer(Basic, now).Score(entries)
	if score.Factors.LogVolume != 1 {
		t.Errorf("Expected log volume 1, got %d", score.Factors.LogVolume)
	}
}

func TestScoreEnhancedMemoryAndCPU(t *testing.T) {
	now := time.Now()

	memEntries := entriesFrom(now, "heap usage climbing steadily")
	for i := 0; i < 9; i++ {
		memEntries = append(memEntries, models.LogEntry{Content: "request ok", Timestamp: now})
	}
	memScore := fixedScorer(Enhanced, now).Score(memEntries)
	if memScore.Value != 10 {
		t.Errorf("Expected memory score 10, got %d", memScore.Value)
	}
	if memScore.Labels[0] != LabelLow || memScore.Labels[1] != "Memory Pressure" {
		t.Errorf("Expected [Low, Memory Pressure], got %v", memScore.Labels)
	}

	cpuEntries := entriesFrom(now, "cpu spike detected on worker-3")
	for i := 0; i < 9; i++ {
		cpuEntries = append(cpuEntries, models.LogEntry{Content: "request ok", Timestamp: now})
	}
	cpuScore := fixedScorer(Enhanced, now).Score(cpuEntries)
	if cpuScore.Value != 5 {
		t.Errorf("Expected cpu score 5, got %d", cpuScore.Value)
	}
	if cpuScore.Labels[0] != LabelLow || cpuScore.Labels[1] != "CPU Issues" {
		t.Errorf("Expected [Low, CPU Issues], got %v", cpuScore.Labels)
	}
}

func TestScoreCappedAt100(t *testing.T) {
	now := time.Now()
	entries := make([]models.LogEntry, 2001)
	for i := range entries {
		entries[i] = models.LogEntry{
			Content:   "error: timeout, out of memory, high cpu",
			Timestamp: now,
		}
	}

	score := fixedScorer(Enhanced, now).Score(entries)
	if score.Value != 100 {
		t.Errorf("Expected score capped at 100, got %d", score.Value)
	}
	if score.Labels[0] != LabelCritical {
		t.Errorf("Expected Critical severity, got %q", score.Labels[0])
	}
}

func TestScoreBasicOmitsMemoryFactors(t *testing.T) {
	now := time.Now()
	entries := entriesFrom(now, "heap pressure, out of memory")

	score := fixedScorer(Basic, now).Score(entries)
	if score.Factors.MemoryPressure != 0 || score.Factors.CPUUsage != 0 {
		t.Errorf("Basic scorer should not populate memory/cpu factors, got %+v", score.Factors)
	}
}

func TestScoreLabelsDeduplicated(t *testing.T) {
	now := time.Now()
	entries := entriesFrom(now,
		"ERROR: timeout calling billing",
		"slow response from cache",
	)

	score := fixedScorer(Basic, now).Score(entries)
	seen := map[string]int{}
	for _, l := range score.Labels {
		seen[l]++
		if seen[l] > 1 {
			t.Errorf("Label %q appears more than once in %v", l, score.Labels)
		}
	}
}

func TestSeverityLabel(t *testing.T) {
	tests := []struct {
		score    int
		expected string
	}{
		{100, LabelCritical},
		{70, LabelCritical},
		{69, LabelHigh},
		{50, LabelHigh},
		{49, LabelModerate},
		{30, LabelModerate},
		{29, LabelLow},
		{1, LabelLow},
		{0, ""},
	}

	for _, tt := range tests {
		if got := severityLabel(tt.score); got != tt.expected {
			t.Errorf("severityLabel(%d) = %q, expected %q", tt.score, got, tt.expected)
		}
	}
}

func TestScoreMonotonicInErrorLines(t *testing.T) {
	now := time.Now()
	scorer := fixedScorer(Basic, now)

	// Within the high-error regime, swapping clean lines for error
	// lines never lowers the score.
	prev := -1
	for errs := 3; errs <= 20; errs++ {
		entries := make([]models.LogEntry, 20)
		for i := range entries {
			content := "request ok"
			if i < errs {
				content = "error: request failed"
			}
			entries[i] = models.LogEntry{Content: content, Timestamp: now}
		}
		score := scorer.Score(entries)
		if score.Value < prev {
			t.Errorf("Score dropped from %d to %d at %d error lines", prev, score.Value, errs)
		}
		prev = score.Value
	}
}

func TestScoreLongLine(t *testing.T) {
	now := time.Now()
	line := "error " + strings.Repeat("x", 10000)
	score := fixedScorer(Enhanced, now).Score(entriesFrom(now, line))
	if score.Value == 0 {
		t.Error("Expected a nonzero score for a long error line")
	}
}
