package repo

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/agripulse/agripulse/internal/models"
	"github.com/lib/pq"
)

var scheduleCols = []string{
	"id", "owner_id", "farm_id", "farm_name", "is_active", "frequency", "send_time", "timezone",
	"days_of_week", "day_of_month", "include_audio", "include_chart", "message_prefix",
	"last_sent_at", "next_send_at", "send_count", "created_at", "updated_at",
}

func scheduleRow(id int, nextSendAt time.Time, now time.Time) []driver.Value {
	return []driver.Value{
		id, 1, 2, "Douar Ouled Said", true, "daily", "09:00", "Africa/Casablanca",
		"{}", 1, true, false, "", nil, nextSendAt, 3, now, now,
	}
}

func TestScheduleRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	next := now.Add(time.Hour)
	mock.ExpectQuery(`INSERT INTO schedules`).
		WithArgs(1, 2, "Douar Ouled Said", true, "daily", "09:00", "Africa/Casablanca",
			pq.Array([]int64{}), 1, true, false, "", next).
		WillReturnRows(sqlmock.NewRows(scheduleCols).AddRow(scheduleRow(7, next, now)...))

	r := NewScheduleRepo(db)
	s, err := r.Create(context.Background(), models.Schedule{
		OwnerID: 1, FarmID: 2, FarmName: "Douar Ouled Said", IsActive: true,
		Frequency: "daily", SendTime: "09:00", Timezone: "Africa/Casablanca",
		DayOfMonth: 1, IncludeAudio: true, NextSendAt: &next,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.ID != 7 || s.Frequency != "daily" || !s.IsActive || s.SendCount != 3 {
		t.Errorf("unexpected schedule: %+v", s)
	}
	if s.NextSendAt == nil || !s.NextSendAt.Equal(next) {
		t.Errorf("next_send_at: got %v, want %v", s.NextSendAt, next)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduleRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, owner_id, farm_id`).
		WithArgs(999).
		WillReturnError(sql.ErrNoRows)

	r := NewScheduleRepo(db)
	s, err := r.GetByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if s != nil {
		t.Errorf("expected nil, got %+v", s)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduleRepo_ListActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, owner_id, farm_id, .* FROM schedules WHERE is_active`).
		WillReturnRows(sqlmock.NewRows(scheduleCols).
			AddRow(scheduleRow(1, now, now)...).
			AddRow(scheduleRow(2, now.Add(time.Hour), now)...))

	r := NewScheduleRepo(db)
	list, err := r.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 items, got %d", len(list))
	}
	if list[0].ID != 1 || list[1].ID != 2 {
		t.Errorf("unexpected ids: %d, %d", list[0].ID, list[1].ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduleRepo_ListByOwner_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, owner_id, farm_id, .* FROM schedules WHERE owner_id`).
		WithArgs(1, 50, 0).
		WillReturnRows(sqlmock.NewRows(scheduleCols))

	r := NewScheduleRepo(db)
	list, err := r.ListByOwner(context.Background(), 1, 50, 0)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got %d", len(list))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduleRepo_AdvanceNextSend_Claimed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	from := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	mock.ExpectExec(`UPDATE schedules SET next_send_at`).
		WithArgs(to, 7, from).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := NewScheduleRepo(db)
	claimed, err := r.AdvanceNextSend(context.Background(), 7, from, to)
	if err != nil {
		t.Fatalf("AdvanceNextSend: %v", err)
	}
	if !claimed {
		t.Error("expected claim to succeed")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduleRepo_AdvanceNextSend_Conflict(t *testing.T) {
	// Another instance already advanced next_send_at: zero rows match the CAS
	// and the caller must treat the occurrence as taken.
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	from := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	mock.ExpectExec(`UPDATE schedules SET next_send_at`).
		WithArgs(to, 7, from).
		WillReturnResult(sqlmock.NewResult(0, 0))

	r := NewScheduleRepo(db)
	claimed, err := r.AdvanceNextSend(context.Background(), 7, from, to)
	if err != nil {
		t.Fatalf("AdvanceNextSend: %v", err)
	}
	if claimed {
		t.Error("expected claim to fail on conflict")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduleRepo_MarkSent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	sentAt := time.Date(2026, 1, 10, 9, 5, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE schedules SET last_sent_at = \$1, send_count = send_count \+ 1`).
		WithArgs(sentAt, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := NewScheduleRepo(db)
	if err := r.MarkSent(context.Background(), 7, sentAt); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduleRepo_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM schedules WHERE id`).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := NewScheduleRepo(db)
	if err := r.Delete(context.Background(), 7); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
