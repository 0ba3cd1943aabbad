// Package dispatch runs the recurring scanner that finds due schedules,
// claims them, and delivers reports over WhatsApp.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/agripulse/agripulse/internal/delivery"
	"github.com/agripulse/agripulse/internal/errs"
	"github.com/agripulse/agripulse/internal/metrics"
	"github.com/agripulse/agripulse/internal/models"
	"github.com/agripulse/agripulse/internal/recurrence"
)

// ScheduleStore is the slice of the schedule repository the dispatcher needs.
type ScheduleStore interface {
	ListActive(ctx context.Context) ([]models.Schedule, error)
	GetByID(ctx context.Context, id int) (*models.Schedule, error)
	AdvanceNextSend(ctx context.Context, id int, from, to time.Time) (bool, error)
	MarkSent(ctx context.Context, id int, sentAt time.Time) error
}

// ReportSource reads existing reports for the freshness check.
type ReportSource interface {
	LatestByFarm(ctx context.Context, farmID int) (*models.Report, error)
}

// FarmStore reads farms for report generation.
type FarmStore interface {
	GetByID(ctx context.Context, id int) (*models.Farm, error)
}

// UserStore reads owners for phone numbers and delivery preferences.
type UserStore interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// Assembler produces a report for a farm.
type Assembler interface {
	Assemble(ctx context.Context, farm models.Farm, owner models.User) (*models.Report, error)
}

// Sender delivers one report.
type Sender interface {
	Send(ctx context.Context, to string, rep models.Report, s models.Schedule) delivery.Outcome
}

// TickStats summarizes one scanner pass.
type TickStats struct {
	Scanned int
	Due     int
	Sent    int
	Failed  int
	Skipped int
}

// errOccurrenceTaken means another instance claimed the occurrence first.
var errOccurrenceTaken = errors.New("occurrence already claimed")

// errOwnerMuted means the owner opted out of notifications via webhook.
var errOwnerMuted = errors.New("owner opted out of notifications")

// Dispatcher scans active schedules on a fixed interval. The due window is
// half-open, [next_send_at, next_send_at+interval), so an occurrence is
// picked up by exactly one tick. next_send_at is advanced with a
// compare-and-swap before any send, which keeps delivery at-most-once across
// instances and guarantees the schedule moves forward even when a send fails.
type Dispatcher struct {
	Schedules ScheduleStore
	Reports   ReportSource
	Farms     FarmStore
	Users     UserStore
	Assembler Assembler
	Sender    Sender

	// Interval is both the tick period and the width of the due window.
	Interval time.Duration
	// Freshness is how recent a stored report must be to be reused instead
	// of regenerated.
	Freshness time.Duration

	Logger *slog.Logger

	cron *cron.Cron
}

// Start begins ticking in the background. Call Stop to drain.
func (d *Dispatcher) Start() {
	d.cron = cron.New()
	d.cron.Schedule(cron.Every(d.Interval), cron.FuncJob(func() {
		stats := d.Tick(context.Background(), time.Now().UTC())
		d.logger().Info("dispatch tick",
			"scanned", stats.Scanned, "due", stats.Due,
			"sent", stats.Sent, "failed", stats.Failed, "skipped", stats.Skipped)
	}))
	d.cron.Start()
	d.logger().Info("dispatcher started", "interval", d.Interval)
}

// Stop halts ticking and waits for a running tick to finish.
func (d *Dispatcher) Stop() {
	if d.cron != nil {
		<-d.cron.Stop().Done()
	}
}

// Tick runs one scanner pass. A failure on one schedule never blocks the
// rest of the pass.
func (d *Dispatcher) Tick(ctx context.Context, now time.Time) TickStats {
	var stats TickStats
	metrics.IncDispatchTick()

	list, err := d.Schedules.ListActive(ctx)
	if err != nil {
		d.logger().Error("list active schedules", "error", err)
		return stats
	}

	for _, s := range list {
		stats.Scanned++
		if s.NextSendAt == nil || !recurrence.Due(*s.NextSendAt, now, d.Interval) {
			continue
		}
		stats.Due++

		switch err := d.dispatchOne(ctx, s, now); {
		case err == nil:
			stats.Sent++
			metrics.IncDispatchSend("sent")
		case errors.Is(err, errOccurrenceTaken), errors.Is(err, errOwnerMuted):
			stats.Skipped++
			metrics.IncDispatchSend("skipped")
			d.logger().Info("dispatch skipped", "schedule_id", s.ID, "owner_id", s.OwnerID, "reason", err)
		default:
			stats.Failed++
			metrics.IncDispatchSend("failed")
			d.logger().Error("dispatch failed", "schedule_id", s.ID, "owner_id", s.OwnerID, "error", err)
		}
	}
	return stats
}

// dispatchOne handles a single due schedule: claim the occurrence, resolve
// report content, deliver, and record the send.
func (d *Dispatcher) dispatchOne(ctx context.Context, s models.Schedule, now time.Time) error {
	next, err := recurrence.NextSendAt(s, now)
	if err != nil {
		return fmt.Errorf("compute next occurrence: %w", err)
	}

	if err := d.claim(ctx, s, next, now); err != nil {
		return err
	}

	// From here on next_send_at is already advanced: a failure below means
	// this occurrence is lost, not retried, and the schedule stays healthy.
	owner, err := d.Users.GetByID(ctx, s.OwnerID)
	if err != nil {
		return fmt.Errorf("load owner %d: %w", s.OwnerID, err)
	}
	if owner == nil {
		return fmt.Errorf("owner %d not found", s.OwnerID)
	}
	if owner.NotifyFrequency == models.FrequencyNone {
		return errOwnerMuted
	}

	rep, err := d.reportFor(ctx, s, *owner, now)
	if err != nil {
		return err
	}

	outcome := d.Sender.Send(ctx, owner.PhoneNumber, *rep, s)
	if !outcome.Success {
		return fmt.Errorf("%w: deliver report %d: %s", errs.ErrUpstream, rep.ID, outcome.Error)
	}

	if err := d.Schedules.MarkSent(ctx, s.ID, now); err != nil {
		// The message went out; only the bookkeeping failed.
		return fmt.Errorf("record send for schedule %d: %w", s.ID, err)
	}
	return nil
}

// claim advances next_send_at from its current value to next via CAS. On a
// conflict it refetches once: if the schedule is still due the stored value
// was merely stale and the CAS is retried, otherwise another instance owns
// the occurrence.
func (d *Dispatcher) claim(ctx context.Context, s models.Schedule, next, now time.Time) error {
	claimed, err := d.Schedules.AdvanceNextSend(ctx, s.ID, *s.NextSendAt, next)
	if err != nil {
		return fmt.Errorf("claim schedule %d: %w", s.ID, err)
	}
	if claimed {
		return nil
	}

	fresh, err := d.Schedules.GetByID(ctx, s.ID)
	if err != nil {
		return fmt.Errorf("refetch schedule %d: %w", s.ID, err)
	}
	if fresh == nil || !fresh.IsActive || fresh.NextSendAt == nil ||
		!recurrence.Due(*fresh.NextSendAt, now, d.Interval) {
		return errOccurrenceTaken
	}

	claimed, err = d.Schedules.AdvanceNextSend(ctx, s.ID, *fresh.NextSendAt, next)
	if err != nil {
		return fmt.Errorf("claim schedule %d: %w", s.ID, err)
	}
	if !claimed {
		return errOccurrenceTaken
	}
	return nil
}

// reportFor returns a stored report when it is fresh enough, otherwise
// assembles a new one.
func (d *Dispatcher) reportFor(ctx context.Context, s models.Schedule, owner models.User, now time.Time) (*models.Report, error) {
	latest, err := d.Reports.LatestByFarm(ctx, s.FarmID)
	if err != nil {
		d.logger().Warn("load latest report", "farm_id", s.FarmID, "error", err)
	} else if latest != nil && now.Sub(latest.CreatedAt) < d.Freshness {
		return latest, nil
	}

	farm, err := d.Farms.GetByID(ctx, s.FarmID)
	if err != nil {
		return nil, fmt.Errorf("load farm %d: %w", s.FarmID, err)
	}
	if farm == nil {
		return nil, fmt.Errorf("farm %d not found", s.FarmID)
	}
	return d.Assembler.Assemble(ctx, *farm, owner)
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
