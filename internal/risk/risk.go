package risk

import (
	"math"
	"time"

	"github.com/zeyidhocam/z-gate-crm-sub001/internal/ledger"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/models"
)

// NoHistoryGapDays is the payment gap assumed for a client that still owes
// money but has no recorded payment at all. Heuristic carried over from the
// previous dashboard; kept as a named constant rather than refined silently.
const NoHistoryGapDays = 90

// Normalization ceilings and weights. Weights sum to 100 so each weighted
// contribution is already in score points.
const (
	overdueCountCeiling = 5
	overdueDaysCeiling  = 60
	paymentGapCeiling   = 60

	weightOverdueCount   = 35
	weightOverdueDays    = 25
	weightRemainingRatio = 20
	weightPaymentGap     = 20

	highThreshold   = 70
	mediumThreshold = 35
)

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daysBetween(from, to time.Time) int {
	d := int(to.Sub(from).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// ComputeMetrics aggregates schedule and payment rows into the ledger
// figures a score is derived from. A zero now means time.Now(); date
// comparisons use start-of-day in now's location.
func ComputeMetrics(schedules []models.Schedule, payments []models.Payment, now time.Time) models.RiskMetrics {
	if now.IsZero() {
		now = time.Now()
	}
	today := startOfDay(now)

	var m models.RiskMetrics
	var totalDue, totalPaid, remaining float64
	for _, row := range schedules {
		due := ledger.AmountDue(row)
		paid := ledger.AmountPaid(row)
		rem := ledger.Remaining(row)
		totalDue += due
		totalPaid += paid
		remaining += rem

		if rem > 0 && !row.DueDate.IsZero() && startOfDay(row.DueDate).Before(today) {
			m.OverdueCount++
			if d := daysBetween(startOfDay(row.DueDate), today); d > m.LongestOverdueDays {
				m.LongestOverdueDays = d
			}
		}
	}
	m.TotalDue = ledger.Round2(totalDue)
	m.TotalPaid = ledger.Round2(totalPaid)
	m.Remaining = ledger.Round2(remaining)
	if m.TotalDue > 0 {
		m.RemainingRatio = m.Remaining / m.TotalDue
	}

	for _, p := range payments {
		if p.PaidAt.IsZero() {
			continue
		}
		if m.LastPaymentAt == nil || p.PaidAt.After(*m.LastPaymentAt) {
			t := p.PaidAt
			m.LastPaymentAt = &t
		}
	}
	switch {
	case m.LastPaymentAt != nil:
		m.DaysSinceLastPayment = daysBetween(startOfDay(*m.LastPaymentAt), today)
	case m.TotalDue > 0 && m.TotalPaid <= 0:
		m.DaysSinceLastPayment = NoHistoryGapDays
	}
	return m
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Score turns ledger metrics into a 0-100 collection-risk score with a
// factor breakdown so every consumer can reconstruct the result.
func Score(m models.RiskMetrics) models.RiskScore {
	if m.TotalDue <= 0 {
		return models.RiskScore{
			Score: 0,
			Level: models.RiskLow,
			Factors: []models.RiskFactor{
				{Key: "overdue_count", Value: float64(m.OverdueCount)},
				{Key: "overdue_days", Value: float64(m.LongestOverdueDays)},
				{Key: "remaining_ratio", Value: m.RemainingRatio},
				{Key: "payment_gap", Value: float64(m.DaysSinceLastPayment)},
			},
		}
	}

	impactCount := clamp01(float64(m.OverdueCount)/overdueCountCeiling) * weightOverdueCount
	impactDays := clamp01(float64(m.LongestOverdueDays)/overdueDaysCeiling) * weightOverdueDays
	impactRatio := clamp01(m.RemainingRatio) * weightRemainingRatio
	impactGap := clamp01(float64(m.DaysSinceLastPayment)/paymentGapCeiling) * weightPaymentGap

	score := int(math.Round(impactCount + impactDays + impactRatio + impactGap))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return models.RiskScore{
		Score: score,
		Level: LevelFor(score),
		Factors: []models.RiskFactor{
			{Key: "overdue_count", Value: float64(m.OverdueCount), Impact: ledger.Round2(impactCount)},
			{Key: "overdue_days", Value: float64(m.LongestOverdueDays), Impact: ledger.Round2(impactDays)},
			{Key: "remaining_ratio", Value: m.RemainingRatio, Impact: ledger.Round2(impactRatio)},
			{Key: "payment_gap", Value: float64(m.DaysSinceLastPayment), Impact: ledger.Round2(impactGap)},
		},
	}
}

// LevelFor maps a numeric score onto the coarse low/medium/high bucket.
func LevelFor(score int) models.RiskLevel {
	switch {
	case score >= highThreshold:
		return models.RiskHigh
	case score >= mediumThreshold:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}
