package models

import "time"

// Notification frequency preferences, set per owner via the WhatsApp webhook
// commands (STOP/START/WEEKLY).
const (
	FrequencyNone   = "none"
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

type User struct {
	ID              int       `json:"id"`
	Username        string    `json:"username"`
	PasswordHash    string    `json:"-"`
	PhoneNumber     string    `json:"phone_number"`
	Language        string    `json:"language"`
	NotifyFrequency string    `json:"notify_frequency"`
	CreatedAt       time.Time `json:"created_at"`
}
