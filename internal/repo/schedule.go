package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/agripulse/agripulse/internal/models"
	"github.com/lib/pq"
)

const scheduleColumns = `id, owner_id, farm_id, farm_name, is_active, frequency, send_time, timezone,
		days_of_week, day_of_month, include_audio, include_chart, message_prefix,
		last_sent_at, next_send_at, send_count, created_at, updated_at`

// ScheduleRepo persists report delivery schedules.
type ScheduleRepo struct {
	DB *sql.DB
}

// NewScheduleRepo returns a new ScheduleRepo.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{DB: db}
}

// Create inserts a schedule and returns it with id and timestamps set.
// next_send_at must already be computed by the caller; a schedule is never
// stored without one.
func (r *ScheduleRepo) Create(ctx context.Context, s models.Schedule) (*models.Schedule, error) {
	query := `
		INSERT INTO schedules (owner_id, farm_id, farm_name, is_active, frequency, send_time, timezone,
			days_of_week, day_of_month, include_audio, include_chart, message_prefix, next_send_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + scheduleColumns
	row := r.DB.QueryRowContext(ctx, query,
		s.OwnerID, s.FarmID, s.FarmName, s.IsActive, s.Frequency, s.SendTime, s.Timezone,
		pq.Array(toInt64(s.DaysOfWeek)), s.DayOfMonth, s.IncludeAudio, s.IncludeChart,
		s.MessagePrefix, s.NextSendAt,
	)
	return scanSchedule(row)
}

// GetByID returns one schedule by id, or nil if not found.
func (r *ScheduleRepo) GetByID(ctx context.Context, id int) (*models.Schedule, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, id)
	s, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// ListByOwner returns the owner's schedules, newest first.
func (r *ScheduleRepo) ListByOwner(ctx context.Context, ownerID, limit, offset int) ([]models.Schedule, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE owner_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectSchedules(rows)
}

// ListActive returns every active schedule across all owners, for the dispatch
// scanner. A single flattened query instead of per-owner enumeration.
func (r *ScheduleRepo) ListActive(ctx context.Context) ([]models.Schedule, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collectSchedules(rows)
}

// Update rewrites the editable fields of a schedule. Callers do a
// read-modify-write from GetByID so a partial edit never clobbers fields the
// client did not send. next_send_at must be recomputed whenever cadence
// fields change.
func (r *ScheduleRepo) Update(ctx context.Context, s models.Schedule) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE schedules
		SET farm_name = $1, is_active = $2, frequency = $3, send_time = $4, timezone = $5,
			days_of_week = $6, day_of_month = $7, include_audio = $8, include_chart = $9,
			message_prefix = $10, next_send_at = $11, updated_at = now()
		WHERE id = $12`,
		s.FarmName, s.IsActive, s.Frequency, s.SendTime, s.Timezone,
		pq.Array(toInt64(s.DaysOfWeek)), s.DayOfMonth, s.IncludeAudio, s.IncludeChart,
		s.MessagePrefix, s.NextSendAt, s.ID,
	)
	return err
}

// AdvanceNextSend claims one due occurrence with a compare-and-swap on
// next_send_at. It returns false when another scanner instance (or an
// overlapping tick) already advanced the schedule, which is the signal to
// skip it. This is what makes delivery at-most-once per period.
func (r *ScheduleRepo) AdvanceNextSend(ctx context.Context, id int, from, to time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE schedules SET next_send_at = $1, updated_at = now() WHERE id = $2 AND next_send_at = $3`,
		to, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkSent records a successful delivery: last_sent_at and an atomic
// send_count increment. Called only after the messaging provider accepted the
// message, so send_count grows by exactly one per delivery.
func (r *ScheduleRepo) MarkSent(ctx context.Context, id int, sentAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE schedules SET last_sent_at = $1, send_count = send_count + 1, updated_at = now() WHERE id = $2`,
		sentAt, id)
	return err
}

// Delete removes a schedule by id. Deletion is immediate and unconditional.
func (r *ScheduleRepo) Delete(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSchedule(row rowScanner) (*models.Schedule, error) {
	var (
		s          models.Schedule
		days       pq.Int64Array
		lastSentAt sql.NullTime
		nextSendAt sql.NullTime
	)
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.FarmID, &s.FarmName, &s.IsActive, &s.Frequency, &s.SendTime, &s.Timezone,
		&days, &s.DayOfMonth, &s.IncludeAudio, &s.IncludeChart, &s.MessagePrefix,
		&lastSentAt, &nextSendAt, &s.SendCount, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.DaysOfWeek = toInt(days)
	if lastSentAt.Valid {
		t := lastSentAt.Time
		s.LastSentAt = &t
	}
	if nextSendAt.Valid {
		t := nextSendAt.Time
		s.NextSendAt = &t
	}
	return &s, nil
}

func collectSchedules(rows *sql.Rows) ([]models.Schedule, error) {
	defer rows.Close()
	var list []models.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

func toInt64(days []int) []int64 {
	out := make([]int64, len(days))
	for i, d := range days {
		out[i] = int64(d)
	}
	return out
}

func toInt(days []int64) []int {
	if len(days) == 0 {
		return nil
	}
	out := make([]int, len(days))
	for i, d := range days {
		out[i] = int(d)
	}
	return out
}
