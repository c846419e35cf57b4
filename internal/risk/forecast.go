package risk

import (
	"fmt"
	"strings"
)

const healthyForecast = "No significant risk detected in recent activity. Systems appear healthy."

// Action categories used for preference learning.
const (
	ActionCategoryErrorHandling = "error-handling"
	ActionCategoryScaling       = "scaling"
	ActionCategoryDatabase      = "database"
	ActionCategoryMonitoring    = "monitoring"
	ActionCategoryPerformance   = "performance"
	ActionCategoryGeneral       = "general"
)

// BuildForecastText assembles the deterministic forecast sentence for a
// context: opening clause with the average score, a trend clause, the
// top contributing factors, and a closing severity clause.
func BuildForecastText(ctx ForecastContext) string {
	if ctx.AverageScore == 0 {
		return healthyForecast
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Average risk score over the recent window is %d.", ctx.AverageScore)

	switch ctx.Trend {
	case TrendIncreasing:
		b.WriteString(" Risk is trending upward.")
	case TrendDecreasing:
		b.WriteString(" Risk is trending downward.")
	default:
		b.WriteString(" Risk levels are holding steady.")
	}

	if len(ctx.TopRiskFactors) > 0 {
		fmt.Fprintf(&b, " Main contributing factors: %s.", strings.Join(ctx.TopRiskFactors, ", "))
	}

	switch {
	case ctx.AverageScore >= 70:
		b.WriteString(" Immediate attention is recommended.")
	case ctx.AverageScore >= 50:
		b.WriteString(" Close monitoring is advised.")
	case ctx.AverageScore >= 30:
		b.WriteString(" Keep an eye on the contributing factors.")
	default:
		b.WriteString(" No urgent action required.")
	}

	return b.String()
}

var genericActions = []string{
	"Continue monitoring system health metrics",
	"Set up alerts for sudden risk score changes",
	"Review log retention and ingestion coverage",
}

// BuildActions produces exactly three recommended actions: one derived
// from the top risk factor, one from the trend and severity, padded
// with generic monitoring actions as needed.
func BuildActions(ctx ForecastContext) []string {
	actions := make([]string, 0, 3)
	if len(ctx.TopRiskFactors) > 0 {
		actions = append(actions, factorAction(ctx.TopRiskFactors[0]))
	}
	actions = append(actions, trendAction(ctx.Trend, ctx.AverageScore))
	actions = dedupe(actions)

	for _, g := range genericActions {
		if len(actions) >= 3 {
			break
		}
		actions = append(actions, g)
	}
	actions = dedupe(actions)
	return actions[:3]
}

func factorAction(factor string) string {
	f := strings.ToLower(factor)
	switch {
	case strings.Contains(f, "error"):
		return "Review recent error logs and address recurring failures"
	case strings.Contains(f, "latency"), strings.Contains(f, "slow"):
		return "Investigate performance bottlenecks behind slow responses"
	case strings.Contains(f, "memory"):
		return "Check memory usage and investigate potential leaks"
	case strings.Contains(f, "cpu"):
		return "Analyze CPU spikes and consider scaling compute resources"
	case strings.Contains(f, "database"), strings.Contains(f, "connection"):
		return "Review database connection pool settings"
	default:
		return fmt.Sprintf("Address %s", factor)
	}
}

func trendAction(trend Trend, avg int) string {
	switch trend {
	case TrendIncreasing:
		switch {
		case avg >= 70:
			return "Escalate to the on-call team and triage the highest-risk services"
		case avg >= 50:
			return "Schedule a review of recent deployments and configuration changes"
		default:
			return "Watch error and latency rates closely over the next few hours"
		}
	case TrendDecreasing:
		if avg >= 50 {
			return "Verify that recent fixes are holding and keep mitigations in place"
		}
		return "Document what improved recently so it can be repeated"
	default:
		if avg >= 50 {
			return "Plan remediation work for the persistent risk factors"
		}
		return "Maintain the current monitoring cadence"
	}
}

// Confidence scores how much history backs a forecast, on a 30-100
// scale: base 50, stepped bonuses for history depth, a bonus for a
// non-stable trend and for multiple identified factors.
func Confidence(historyCount int, trend Trend, factorCount int) int {
	confidence := 50
	switch {
	case historyCount >= 20:
		confidence += 30
	case historyCount >= 10:
		confidence += 20
	case historyCount >= 5:
		confidence += 10
	case historyCount >= 2:
		confidence += 5
	}
	if trend != TrendStable {
		confidence += 10
	}
	switch {
	case factorCount >= 3:
		confidence += 10
	case factorCount >= 2:
		confidence += 5
	}
	if confidence > 100 {
		confidence = 100
	}
	if confidence < 30 {
		confidence = 30
	}
	return confidence
}

// InferActionCategory buckets an action string by keyword. The same
// bucketing drives action generation and preference learning.
func InferActionCategory(action string) string {
	a := strings.ToLower(action)
	switch {
	case strings.Contains(a, "error") || strings.Contains(a, "failure"):
		return ActionCategoryErrorHandling
	case strings.Contains(a, "scal") || strings.Contains(a, "cpu"):
		return ActionCategoryScaling
	case strings.Contains(a, "database") || strings.Contains(a, "connection"):
		return ActionCategoryDatabase
	case strings.Contains(a, "monitor") || strings.Contains(a, "alert"):
		return ActionCategoryMonitoring
	case strings.Contains(a, "performance") || strings.Contains(a, "slow") ||
		strings.Contains(a, "latency") || strings.Contains(a, "memory"):
		return ActionCategoryPerformance
	default:
		return ActionCategoryGeneral
	}
}

// FilterIgnoredActions replaces actions matching any ignored pattern
// (case-insensitive substring) with generic alternatives, preserving
// the action count. When every alternative is also ignored the
// original actions are kept rather than returning fewer.
func FilterIgnoredActions(actions []string, ignored []string) []string {
	if len(ignored) == 0 {
		return actions
	}
	matches := func(action string) bool {
		a := strings.ToLower(action)
		for _, p := range ignored {
			p = strings.ToLower(strings.TrimSpace(p))
			if p != "" && strings.Contains(a, p) {
				return true
			}
		}
		return false
	}

	kept := make([]string, 0, len(actions))
	for _, a := range actions {
		if !matches(a) {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(actions) {
		return actions
	}

	for _, g := range genericActions {
		if len(kept) >= len(actions) {
			break
		}
		if !matches(g) && !containsString(kept, g) {
			kept = append(kept, g)
		}
	}
	for _, a := range actions {
		if len(kept) >= len(actions) {
			break
		}
		if !containsString(kept, a) {
			kept = append(kept, a)
		}
	}
	return kept
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

// ReorderActions moves actions whose inferred category the user prefers
// to the front. It is a stable partition: relative order is preserved
// within both groups, and nothing is replaced.
func ReorderActions(actions []string, preferred []string) []string {
	if len(preferred) == 0 {
		return actions
	}
	prefSet := make(map[string]bool, len(preferred))
	for _, p := range preferred {
		prefSet[p] = true
	}

	front := make([]string, 0, len(actions))
	rest := make([]string, 0, len(actions))
	for _, a := range actions {
		if prefSet[InferActionCategory(a)] {
			front = append(front, a)
		} else {
			rest = append(rest, a)
		}
	}
	return append(front, rest...)
}
