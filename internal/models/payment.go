package models

import "time"

// Payment represents a recorded payment event
type Payment struct {
	ID         int64     `json:"id"`
	ClientID   int64     `json:"client_id"`
	ScheduleID int64     `json:"schedule_id,omitempty"`
	Amount     float64   `json:"amount"`
	PaidAt     time.Time `json:"paid_at"`
	Method     string    `json:"method,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
