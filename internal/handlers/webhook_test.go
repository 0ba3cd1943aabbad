package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/agripulse/agripulse/internal/repo"
)

var userCols = []string{"id", "username", "password_hash", "phone_number", "language", "notify_frequency", "created_at"}

func postWebhook(t *testing.T, h *WebhookHandler, from, body string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{}
	form.Set("From", from)
	form.Set("Body", body)
	req := httptest.NewRequest("POST", "/v1/webhooks/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.InboundMessage(rr, req)
	return rr
}

func TestWebhook_StopCommand(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, username, .* FROM users WHERE phone_number`).
		WithArgs("+212600000000").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "fatima", "hash", "+212600000000", "ar", "daily", now))
	mock.ExpectExec(`UPDATE users SET notify_frequency`).
		WithArgs("none", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO inbound_messages`).
		WithArgs("+212600000000", 1, "STOP", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	h := &WebhookHandler{Users: repo.NewUserRepo(db), Inbound: repo.NewInboundRepo(db)}
	rr := postWebhook(t, h, "whatsapp:+212600000000", "STOP")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/xml" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "<Response><Message>") {
		t.Errorf("reply is not TwiML:\n%s", rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "no longer receive") {
		t.Errorf("unexpected reply:\n%s", rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestWebhook_CommandAliases(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{"STOP", "stop"},
		{"unsubscribe", "stop"},
		{"Cancel", "stop"},
		{"QUIT", "stop"},
		{"START", "start"},
		{"subscribe", "start"},
		{"WEEKLY", "weekly"},
		{"help", "help"},
		{"INFO", "help"},
		{"bonjour", "unknown"},
		{"", "unknown"},
	}
	for _, tc := range cases {
		got := commands[strings.ToUpper(tc.body)]
		if got == "" {
			got = "unknown"
		}
		if got != tc.want {
			t.Errorf("command for %q: got %q, want %q", tc.body, got, tc.want)
		}
	}
}

func TestWebhook_UnknownSender(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, .* FROM users WHERE phone_number`).
		WithArgs("+10000000000").
		WillReturnRows(sqlmock.NewRows(userCols))
	mock.ExpectExec(`INSERT INTO inbound_messages`).
		WithArgs("+10000000000", nil, "START", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	h := &WebhookHandler{Users: repo.NewUserRepo(db), Inbound: repo.NewInboundRepo(db)}
	rr := postWebhook(t, h, "whatsapp:+10000000000", "START")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "not linked") {
		t.Errorf("unexpected reply:\n%s", rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestWebhook_UnknownCommandFallback(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, username, .* FROM users WHERE phone_number`).
		WithArgs("+212600000000").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "fatima", "hash", "+212600000000", "ar", "daily", now))
	mock.ExpectExec(`INSERT INTO inbound_messages`).
		WithArgs("+212600000000", 1, "merci beaucoup", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	h := &WebhookHandler{Users: repo.NewUserRepo(db), Inbound: repo.NewInboundRepo(db)}
	rr := postWebhook(t, h, "whatsapp:+212600000000", "merci beaucoup")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "did not understand") {
		t.Errorf("unexpected reply:\n%s", rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestWebhook_MissingFrom(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := &WebhookHandler{Users: repo.NewUserRepo(db), Inbound: repo.NewInboundRepo(db)}
	rr := postWebhook(t, h, "", "STOP")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}
