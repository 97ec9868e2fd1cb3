package models

import "time"

// Schedule represents one installment obligation for a client.
// Amount is the legacy single-amount column; AmountDue supersedes it when
// positive. Missing dates are the zero time.Time.
type Schedule struct {
	ID         int64     `json:"id"`
	ClientID   int64     `json:"client_id"`
	Amount     float64   `json:"amount"`
	AmountDue  float64   `json:"amount_due"`
	AmountPaid float64   `json:"amount_paid"`
	IsPaid     bool      `json:"is_paid"`
	DueDate    time.Time `json:"due_date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
