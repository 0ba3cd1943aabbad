package models

import "time"

// Schedule frequencies. Custom behaves like daily until more fields are
// defined for it.
const (
	FrequencyMonthly = "monthly"
	FrequencyCustom  = "custom"
)

// Schedule is a recurring report delivery rule plus its runtime send state.
// NextSendAt is computed at create/update time and re-computed after every
// claimed occurrence; it is never null while the schedule is active.
type Schedule struct {
	ID       int    `json:"id"`
	OwnerID  int    `json:"owner_id"`
	FarmID   int    `json:"farm_id"`
	FarmName string `json:"farm_name"`
	IsActive bool   `json:"is_active"`

	Frequency  string `json:"frequency"` // daily, weekly, monthly, custom
	SendTime   string `json:"send_time"` // "HH:MM", local to Timezone
	Timezone   string `json:"timezone"`  // IANA name
	DaysOfWeek []int  `json:"days_of_week,omitempty"`
	DayOfMonth int    `json:"day_of_month,omitempty"`

	IncludeAudio  bool   `json:"include_audio"`
	IncludeChart  bool   `json:"include_chart"`
	MessagePrefix string `json:"message_prefix,omitempty"`

	LastSentAt *time.Time `json:"last_sent_at,omitempty"`
	NextSendAt *time.Time `json:"next_send_at,omitempty"`
	SendCount  int        `json:"send_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
