package risk

import (
	"math"
	"sort"
	"time"
)

type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// Snapshot is the projection of a stored risk-history entry the trend
// analyzer works with.
type Snapshot struct {
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
	Labels    []string  `json:"labels"`
}

// ForecastContext summarizes recent risk history for forecast
// generation. It is derived on demand and never persisted.
type ForecastContext struct {
	RecentRiskScores []Snapshot `json:"recentRiskScores"`
	Trend            Trend      `json:"trend"`
	AverageScore     int        `json:"averageScore"`
	TopRiskFactors   []string   `json:"topRiskFactors"`
}

// trendWindow caps how many snapshots feed the trend computation, even
// when more history was fetched for display.
const trendWindow = 7

// AnalyzeTrend derives trend direction, average score and the most
// frequent risk labels from history. history must be ordered
// newest-first; only the most recent trendWindow entries are used.
//
// The half-split below runs over the newest-first slice as-is, so the
// "second half" is the chronologically older one. This matches the
// long-standing behavior of the scoring pipeline; see DESIGN.md before
// flipping the comparison.
func AnalyzeTrend(history []Snapshot) ForecastContext {
	if len(history) > trendWindow {
		history = history[:trendWindow]
	}

	ctx := ForecastContext{
		RecentRiskScores: history,
		Trend:            TrendStable,
		TopRiskFactors:   []string{},
	}
	if len(history) == 0 {
		return ctx
	}

	half := len(history) / 2
	firstAvg := meanScore(history[:half])
	secondAvg := meanScore(history[half:])
	switch {
	case secondAvg > firstAvg+5:
		ctx.Trend = TrendIncreasing
	case secondAvg < firstAvg-5:
		ctx.Trend = TrendDecreasing
	}

	ctx.AverageScore = int(math.Round(meanScore(history)))
	ctx.TopRiskFactors = topLabels(history, 3)
	return ctx
}

func meanScore(snaps []Snapshot) float64 {
	if len(snaps) == 0 {
		return 0
	}
	sum := 0
	for _, s := range snaps {
		sum += s.Score
	}
	return float64(sum) / float64(len(snaps))
}

// topLabels frequency-counts every label across the snapshots and
// returns the n most common, ties broken by first-seen order.
func topLabels(snaps []Snapshot, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, s := range snaps {
		for _, label := range s.Labels {
			if counts[label] == 0 {
				order = append(order, label)
			}
			counts[label]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	if order == nil {
		order = []string{}
	}
	return order
}
