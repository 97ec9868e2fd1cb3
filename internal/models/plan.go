package models

import "time"

// PaymentMode is how a proposed plan collects the total.
type PaymentMode string

const (
	ModeFullUpfront PaymentMode = "full_upfront"
	ModeDepositPlan PaymentMode = "deposit_plan"
	ModePayLater    PaymentMode = "pay_later"
)

// PlannedInstallment is one proposed future payment.
type PlannedInstallment struct {
	Amount  float64   `json:"amount"`
	DueDate time.Time `json:"due_date"`
}

// PaymentSuggestion is a proposed collection plan for a total amount.
type PaymentSuggestion struct {
	Mode             PaymentMode          `json:"mode"`
	DepositAmount    float64              `json:"deposit_amount,omitempty"`
	DepositDueDate   *time.Time           `json:"deposit_due_date,omitempty"`
	InstallmentCount int                  `json:"installment_count"`
	Installments     []PlannedInstallment `json:"installments"`
	Confidence       float64              `json:"confidence"`
	Reasons          []string             `json:"reasons"`
}
