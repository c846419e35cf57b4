package risk

import (
	"math"
	"time"

	"github.com/logpulse/backend/internal/models"
)

// Severity and factor labels attached to risk scores.
const (
	LabelCritical = "Critical"
	LabelHigh     = "High"
	LabelModerate = "Moderate"
	LabelLow      = "Low"
	LabelHealthy  = "Healthy"
)

// recentWindow bounds the log-volume factor: only lines stamped within
// the last hour relative to scoring time count toward volume.
const recentWindow = time.Hour

// Factors holds the named rates and counts derived from a scored batch.
// Rates are percentages rounded to one decimal place.
type Factors struct {
	ErrorRate      float64 `json:"errorRate,omitempty"`
	LogVolume      int     `json:"logVolume,omitempty"`
	Latency        float64 `json:"latency,omitempty"`
	MemoryPressure float64 `json:"memoryPressure,omitempty"`
	CPUUsage       float64 `json:"cpuUsage,omitempty"`
}

// Score is a bounded 0-100 summary of the operational risk detected in
// one log batch. The first label is always the severity label; the rest
// name the contributing factors, de-duplicated in first-seen order.
type Score struct {
	Value     int       `json:"score"`
	Labels    []string  `json:"labels"`
	Timestamp time.Time `json:"timestamp"`
	Factors   Factors   `json:"factors"`
}

type volumeTier struct {
	threshold int
	bonus     float64
	label     string
}

// weightTable parameterizes the score accumulation per keyword set, so
// both variants share a single code path.
type weightTable struct {
	highErrorCap float64 // errorRate > 10
	modErrorCap  float64 // 5 < errorRate <= 10
	lowErrorTier bool    // 0 < errorRate <= 5
	volumeTiers  []volumeTier
	memoryTier   bool
	cpuTier      bool
}

var weightTables = map[KeywordSet]weightTable{
	Basic: {
		highErrorCap: 50,
		modErrorCap:  30,
		volumeTiers: []volumeTier{
			{threshold: 1000, bonus: 30, label: "High Log Volume"},
		},
	},
	Enhanced: {
		highErrorCap: 40,
		modErrorCap:  25,
		lowErrorTier: true,
		volumeTiers: []volumeTier{
			{threshold: 2000, bonus: 25, label: "Very High Log Volume"},
			{threshold: 1000, bonus: 20, label: "High Log Volume"},
			{threshold: 500, bonus: 10, label: "Elevated Log Volume"},
		},
		memoryTier: true,
		cpuTier:    true,
	},
}

// Scorer converts log batches into risk scores using keyword heuristics.
// It is a pure computation: it never fails on well-formed input, and
// malformed timestamps simply don't count toward log volume.
type Scorer struct {
	set KeywordSet
	now func() time.Time
}

func NewScorer(set KeywordSet) *Scorer {
	return &Scorer{set: set, now: time.Now}
}

// Variant returns the keyword set the scorer was built with.
func (s *Scorer) Variant() KeywordSet {
	return s.set
}

// Score computes the risk score for a batch of log entries. The
// returned timestamp is the scoring wall-clock time, not anything
// derived from the log timestamps.
func (s *Scorer) Score(entries []models.LogEntry) Score {
	now := s.now()
	if len(entries) == 0 {
		return Score{Value: 0, Labels: []string{LabelHealthy}, Timestamp: now}
	}

	total := float64(len(entries))
	var errorHits, latencyHits, memoryHits, cpuHits, recent int
	for _, e := range entries {
		hits := Classify(e.Content, s.set)
		if hits[CategoryError] {
			errorHits++
		}
		if hits[CategoryLatency] {
			latencyHits++
		}
		if hits[CategoryMemory] {
			memoryHits++
		}
		if hits[CategoryCPU] {
			cpuHits++
		}
		if !e.Timestamp.IsZero() && e.Timestamp.After(now.Add(-recentWindow)) {
			recent++
		}
	}

	errorRate := 100 * float64(errorHits) / total
	latencyRate := 100 * float64(latencyHits) / total
	memoryRate := 100 * float64(memoryHits) / total
	cpuRate := 100 * float64(cpuHits) / total

	w := weightTables[s.set]
	var sum float64
	var labels []string

	switch {
	case errorRate > 10:
		sum += math.Min(w.highErrorCap, errorRate*2)
		labels = append(labels, "High Error Rate")
	case errorRate > 5:
		sum += math.Min(w.modErrorCap, errorRate*3)
		labels = append(labels, "Moderate Error Rate")
	case w.lowErrorTier && errorRate > 0:
		sum += math.Min(10, errorRate*2)
		labels = append(labels, "Low Error Rate")
	}

	for _, tier := range w.volumeTiers {
		if recent > tier.threshold {
			sum += tier.bonus
			labels = append(labels, tier.label)
			break
		}
	}

	if latencyRate > 5 {
		sum += math.Min(20, latencyRate*2)
		labels = append(labels, "Latency Issues")
	}
	if w.memoryTier && memoryRate > 3 {
		sum += math.Min(10, memoryRate*2)
		labels = append(labels, "Memory Pressure")
	}
	if w.cpuTier && cpuRate > 2 {
		sum += math.Min(5, cpuRate*1.5)
		labels = append(labels, "CPU Issues")
	}

	value := int(math.Round(math.Min(100, sum)))

	if severity := severityLabel(value); severity != "" {
		labels = append([]string{severity}, labels...)
	} else {
		labels = append(labels, LabelHealthy)
	}

	factors := Factors{
		ErrorRate: round1(errorRate),
		LogVolume: recent,
		Latency:   round1(latencyRate),
	}
	if s.set == Enhanced {
		factors.MemoryPressure = round1(memoryRate)
		factors.CPUUsage = round1(cpuRate)
	}

	return Score{
		Value:     value,
		Labels:    dedupe(labels),
		Timestamp: now,
		Factors:   factors,
	}
}

func severityLabel(score int) string {
	switch {
	case score >= 70:
		return LabelCritical
	case score >= 50:
		return LabelHigh
	case score >= 30:
		return LabelModerate
	case score > 0:
		return LabelLow
	}
	return ""
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// dedupe removes repeated strings preserving first-seen order.
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
