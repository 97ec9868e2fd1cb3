package models

// ReminderItem pairs a due schedule with its client for the reminder run.
type ReminderItem struct {
	Client   Client   `json:"client"`
	Schedule Schedule `json:"schedule"`
}
