package models

import "time"

// Client stages, kept as small integers the way the dashboard stores them:
// 0 = lead, 1 = first sale, 2+ = returning client.
type Client struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Stage          int       `json:"stage"`
	TelegramChatID int64     `json:"telegram_chat_id,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
