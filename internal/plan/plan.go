package plan

import (
	"fmt"
	"time"

	"github.com/zeyidhocam/z-gate-crm-sub001/internal/ledger"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/models"
)

// Policy constants. Deposits are fractions of the total; installments are
// spaced one calendar month apart, the deposit (when any) due immediately.
const (
	depositRateStrict  = 0.30
	depositRateRelaxed = 0.20

	// Returning clients (stage >= payLaterMinStage) with low risk may defer
	// the whole amount.
	payLaterMinStage = 2

	// Overdue history thresholds that tighten the proposed mode.
	overdueForceFull = 3
)

// Input carries everything the suggestion policy looks at. A zero Now means
// time.Now().
type Input struct {
	TotalAmount  float64          `json:"total_amount"`
	RiskLevel    models.RiskLevel `json:"risk_level"`
	Stage        int              `json:"stage"`
	OverdueCount int              `json:"overdue_count"`
	Now          time.Time        `json:"now,omitempty"`
}

// Suggest proposes a payment plan for the given total. The policy is
// deterministic: higher risk and more overdue history always produce an
// equally strict or stricter plan.
func Suggest(in Input) models.PaymentSuggestion {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	mode := models.ModeDepositPlan
	count := 2
	depositRate := depositRateStrict
	reasons := []string{}

	switch in.RiskLevel {
	case models.RiskHigh:
		mode = models.ModeFullUpfront
		count = 1
		reasons = append(reasons, "high risk: full payment recommended")
	case models.RiskMedium:
		mode = models.ModeDepositPlan
		count = 2
		depositRate = depositRateStrict
		reasons = append(reasons, "medium risk: deposit plus short plan")
	case models.RiskLow:
		if in.Stage >= payLaterMinStage {
			mode = models.ModePayLater
			count = 3
			reasons = append(reasons, fmt.Sprintf("low risk, stage %d client: pay later allowed", in.Stage))
		} else {
			mode = models.ModeDepositPlan
			count = 2
			depositRate = depositRateRelaxed
			reasons = append(reasons, "low risk, new client: small deposit plus plan")
		}
	default:
		reasons = append(reasons, "risk level unknown: defaulting to deposit plan")
	}

	switch {
	case in.OverdueCount >= overdueForceFull:
		mode = models.ModeFullUpfront
		count = 1
		reasons = append(reasons, fmt.Sprintf("%d overdue installments: full payment required", in.OverdueCount))
	case in.OverdueCount > 0:
		if mode == models.ModePayLater {
			mode = models.ModeDepositPlan
			depositRate = depositRateStrict
		}
		if count > 2 {
			count = 2
		}
		reasons = append(reasons, fmt.Sprintf("%d overdue installments: shorter plan", in.OverdueCount))
	}

	s := models.PaymentSuggestion{
		Mode:             mode,
		InstallmentCount: count,
		Confidence:       confidence(in),
		Reasons:          reasons,
	}

	switch mode {
	case models.ModeFullUpfront:
		s.Installments = []models.PlannedInstallment{
			{Amount: ledger.Round2(in.TotalAmount), DueDate: now},
		}
	case models.ModeDepositPlan:
		s.DepositAmount = ledger.Round2(in.TotalAmount * depositRate)
		dep := now
		s.DepositDueDate = &dep
		s.Installments = installments(in.TotalAmount-s.DepositAmount, count, now)
	case models.ModePayLater:
		s.Installments = installments(in.TotalAmount, count, now)
	}
	return s
}

func installments(total float64, count int, now time.Time) []models.PlannedInstallment {
	amounts := ledger.SplitEvenly(total, count)
	out := make([]models.PlannedInstallment, len(amounts))
	for i, a := range amounts {
		out[i] = models.PlannedInstallment{
			Amount:  a,
			DueDate: now.AddDate(0, i+1, 0),
		}
	}
	return out
}

// confidence reflects how much signal informed the choice, not how strict
// the resulting plan is.
func confidence(in Input) float64 {
	c := 0.4
	switch in.RiskLevel {
	case models.RiskLow, models.RiskMedium, models.RiskHigh:
		c += 0.3
	}
	if in.Stage > 0 {
		c += 0.2
	}
	if in.OverdueCount > 0 {
		c += 0.1
	}
	if c > 1 {
		c = 1
	}
	return ledger.Round2(c)
}
