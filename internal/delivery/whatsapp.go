package delivery

import (
	"context"
	"log/slog"

	"github.com/agripulse/agripulse/internal/models"
)

// Messenger is the provider boundary for outbound WhatsApp messages. It
// returns the provider's message id on success.
type Messenger interface {
	SendMessage(ctx context.Context, to, body string, mediaURLs []string) (string, error)
}

// Outcome is the result of one delivery attempt.
type Outcome struct {
	Success           bool
	ProviderMessageID string
	Error             string
}

// Channel delivers composed reports over WhatsApp.
type Channel struct {
	Messenger Messenger
	Logger    *slog.Logger
}

// Send composes and delivers one report. Failures are reported in the
// Outcome rather than as an error so the caller can record them uniformly.
func (c *Channel) Send(ctx context.Context, to string, rep models.Report, s models.Schedule) Outcome {
	if to == "" {
		return Outcome{Error: "owner has no phone number"}
	}

	body, media := ComposeMessage(rep, s)
	id, err := c.Messenger.SendMessage(ctx, to, body, media)
	if err != nil {
		c.logger().Warn("whatsapp send failed", "schedule_id", s.ID, "owner_id", s.OwnerID, "error", err)
		return Outcome{Error: err.Error()}
	}
	return Outcome{Success: true, ProviderMessageID: id}
}

func (c *Channel) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
