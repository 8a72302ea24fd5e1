package models

type InsightType string

const (
	InsightPerformance InsightType = "performance"
	InsightTrend       InsightType = "trend"
	InsightCorrelation InsightType = "correlation"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
)

// Insight is one generated, human-readable statement about the sales data.
type Insight struct {
	Type        InsightType `json:"type"`
	Severity    Severity    `json:"severity"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
}
