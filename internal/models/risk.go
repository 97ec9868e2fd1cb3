package models

import "time"

// RiskLevel is the coarse bucket derived from a numeric risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskMetrics is the ledger aggregate a risk score is computed from.
// It is recomputed on every call and never persisted.
type RiskMetrics struct {
	TotalDue             float64    `json:"total_due"`
	TotalPaid            float64    `json:"total_paid"`
	Remaining            float64    `json:"remaining"`
	OverdueCount         int        `json:"overdue_count"`
	LongestOverdueDays   int        `json:"longest_overdue_days"`
	RemainingRatio       float64    `json:"remaining_ratio"`
	DaysSinceLastPayment int        `json:"days_since_last_payment"`
	LastPaymentAt        *time.Time `json:"last_payment_at,omitempty"`
}

// RiskFactor explains one metric's contribution to a score.
type RiskFactor struct {
	Key    string  `json:"key"`
	Value  float64 `json:"value"`
	Impact float64 `json:"impact"`
}

// RiskScore is a 0-100 collection-risk score with its factor breakdown.
type RiskScore struct {
	Score   int          `json:"score"`
	Level   RiskLevel    `json:"level"`
	Factors []RiskFactor `json:"factors"`
}
