package models

import "time"

// InboundMessage is one received WhatsApp message and the reply we sent,
// kept for auditing the webhook command interpreter.
type InboundMessage struct {
	ID          int       `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	OwnerID     int       `json:"owner_id,omitempty"`
	Body        string    `json:"body"`
	Reply       string    `json:"reply"`
	CreatedAt   time.Time `json:"created_at"`
}
