package models

import (
	"time"
)

// Forecast is a dated, cached risk summary for a project. One forecast
// is valid per (project, date); it lives in the key-value store keyed
// by "<projectID>:<date>" and is regenerated once it is older than 24h.
type Forecast struct {
	ID           string    `json:"id"`
	ProjectID    uint      `json:"projectId"`
	Date         string    `json:"date"` // YYYY-MM-DD
	ForecastText string    `json:"forecastText"`
	Actions      []string  `json:"actions"`
	RiskScore    int       `json:"riskScore"`
	Confidence   int       `json:"confidence"`
	GeneratedAt  time.Time `json:"generatedAt"`
}
