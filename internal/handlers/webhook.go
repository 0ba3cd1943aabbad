package handlers

import (
	"encoding/xml"
	"log/slog"
	"net/http"
	"strings"

	"github.com/agripulse/agripulse/internal/metrics"
	"github.com/agripulse/agripulse/internal/models"
	"github.com/agripulse/agripulse/internal/repo"
)

// WebhookHandler receives inbound WhatsApp messages from Twilio and applies
// the owner's command (STOP, START, WEEKLY, HELP). Replies are TwiML so
// Twilio sends them back on the same conversation.
type WebhookHandler struct {
	Users   *repo.UserRepo
	Inbound *repo.InboundRepo
}

const helpReply = "Commands: STOP to pause reports, START for daily reports, WEEKLY for weekly reports, HELP for this message."

// commands maps a normalized inbound keyword to the command it triggers.
var commands = map[string]string{
	"STOP":        "stop",
	"UNSUBSCRIBE": "stop",
	"CANCEL":      "stop",
	"QUIT":        "stop",
	"START":       "start",
	"SUBSCRIBE":   "start",
	"WEEKLY":      "weekly",
	"HELP":        "help",
	"INFO":        "help",
}

// InboundMessage handles POST /v1/webhooks/whatsapp. Twilio sends
// application/x-www-form-urlencoded with From and Body.
func (h *WebhookHandler) InboundMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		JSONError(w, "invalid form", http.StatusBadRequest)
		return
	}
	from := strings.TrimPrefix(r.PostFormValue("From"), "whatsapp:")
	body := strings.TrimSpace(r.PostFormValue("Body"))
	if from == "" {
		JSONError(w, "missing From", http.StatusBadRequest)
		return
	}

	owner, err := h.Users.GetByPhone(r.Context(), from)
	if err != nil {
		slog.Error("webhook owner lookup failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	command := commands[strings.ToUpper(body)]
	if command == "" {
		command = "unknown"
	}
	metrics.IncWebhookCommand(command)

	reply := h.applyCommand(r, owner, command)

	ownerIDVal := 0
	if owner != nil {
		ownerIDVal = owner.ID
	}
	if err := h.Inbound.Log(r.Context(), from, ownerIDVal, body, reply); err != nil {
		slog.Warn("log inbound message", "error", err)
	}

	writeTwiML(w, reply)
}

// applyCommand mutates the owner's notification preference and returns the
// reply text. Unknown senders get help-style guidance without any change.
func (h *WebhookHandler) applyCommand(r *http.Request, owner *models.User, command string) string {
	if owner == nil {
		return "This number is not linked to an account. " + helpReply
	}

	switch command {
	case "stop":
		if err := h.Users.SetNotifyFrequency(r.Context(), owner.ID, models.FrequencyNone); err != nil {
			slog.Error("set notify frequency", "owner_id", owner.ID, "error", err)
			return "Something went wrong, please try again later."
		}
		return "You will no longer receive reports. Reply START to resume."
	case "start":
		if err := h.Users.SetNotifyFrequency(r.Context(), owner.ID, models.FrequencyDaily); err != nil {
			slog.Error("set notify frequency", "owner_id", owner.ID, "error", err)
			return "Something went wrong, please try again later."
		}
		return "Daily reports are on. Reply STOP to pause or WEEKLY to slow down."
	case "weekly":
		if err := h.Users.SetNotifyFrequency(r.Context(), owner.ID, models.FrequencyWeekly); err != nil {
			slog.Error("set notify frequency", "owner_id", owner.ID, "error", err)
			return "Something went wrong, please try again later."
		}
		return "Weekly reports are on. Reply START for daily or STOP to pause."
	case "help":
		return helpReply
	default:
		return "Sorry, I did not understand that. " + helpReply
	}
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

func writeTwiML(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(xml.Header))
	xml.NewEncoder(w).Encode(twimlResponse{Message: message})
}
