package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/agripulse/agripulse/internal/errs"
)

// TwilioMessenger sends WhatsApp messages through the Twilio REST API.
type TwilioMessenger struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioMessenger builds the messenger. With missing credentials it still
// constructs but every send fails fast with ErrNotConfigured.
func NewTwilioMessenger(accountSID, authToken, from string) *TwilioMessenger {
	if accountSID == "" || authToken == "" || from == "" {
		return &TwilioMessenger{}
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioMessenger{client: client, from: whatsappAddr(from)}
}

// SendMessage delivers one WhatsApp message and returns the provider message
// SID. The Twilio SDK does not take a context; ctx is accepted for interface
// symmetry.
func (m *TwilioMessenger) SendMessage(ctx context.Context, to, body string, mediaURLs []string) (string, error) {
	if m.client == nil {
		return "", fmt.Errorf("%w: twilio credentials are not set", errs.ErrNotConfigured)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(whatsappAddr(to))
	params.SetFrom(m.from)
	params.SetBody(body)
	if len(mediaURLs) > 0 {
		params.SetMediaUrl(mediaURLs)
	}

	msg, err := m.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("%w: twilio send to %s: %v", errs.ErrUpstream, to, err)
	}
	if msg.Sid == nil {
		return "", nil
	}
	return *msg.Sid, nil
}

// whatsappAddr prefixes a number with the whatsapp: scheme Twilio expects.
func whatsappAddr(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
