// Package recurrence computes when a schedule fires next. Everything here is
// pure: no clocks, no I/O. Callers pass "now" explicitly so creation, edits,
// and the dispatch scanner all agree on the arithmetic.
package recurrence

import (
	"fmt"
	"time"

	"github.com/agripulse/agripulse/internal/errs"
	"github.com/agripulse/agripulse/internal/models"
)

// NextSendAt returns the first occurrence of the schedule strictly after now.
//
// The candidate starts at today's date (in the schedule's timezone) at the
// configured send time. If that instant has already passed, it rolls forward
// by frequency: daily and custom add one day; weekly searches day by day for
// the next allowed weekday; monthly advances to the next month and clamps the
// day-of-month to the month's length (Jan 31 -> Feb 28, never Mar 3).
//
// An empty weekly day set means every day. This is a documented default; the
// alternative (no valid day, schedule never fires) would silently strand the
// schedule.
func NextSendAt(s models.Schedule, now time.Time) (time.Time, error) {
	loc, err := loadLocation(s.Timezone)
	if err != nil {
		return time.Time{}, err
	}
	hour, minute, err := parseSendTime(s.SendTime)
	if err != nil {
		return time.Time{}, err
	}

	local := now.In(loc)
	candidate := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)

	switch s.Frequency {
	case models.FrequencyDaily, models.FrequencyCustom:
		// Custom has no extra fields defined yet and behaves like daily.
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		return candidate, nil

	case models.FrequencyWeekly:
		allowed := weekdaySet(s.DaysOfWeek)
		start := 0
		if !candidate.After(now) {
			// Today's slot already passed: search from tomorrow, even when
			// today's weekday is allowed.
			start = 1
		}
		for off := start; off <= 7; off++ {
			c := candidate.AddDate(0, 0, off)
			if allowed[int(c.Weekday())] {
				return c, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: days_of_week %v matches no weekday", errs.ErrValidation, s.DaysOfWeek)

	case models.FrequencyMonthly:
		c := monthlyAt(local.Year(), local.Month(), s.DayOfMonth, hour, minute, loc)
		if !c.After(now) {
			y, m := local.Year(), local.Month()+1
			c = monthlyAt(y, m, s.DayOfMonth, hour, minute, loc)
		}
		return c, nil

	default:
		return time.Time{}, fmt.Errorf("%w: unknown frequency %q", errs.ErrValidation, s.Frequency)
	}
}

// Due reports whether a schedule with the given next occurrence should fire
// during a scan at now, for a scanner ticking every window. The half-open
// window [next, next+window) makes the schedule due for exactly one tick.
func Due(next, now time.Time, window time.Duration) bool {
	d := now.Sub(next)
	return d >= 0 && d < window
}

// Validate checks the cadence fields a client may set. Wraps errs.ErrValidation.
func Validate(frequency, sendTime, timezone string, daysOfWeek []int, dayOfMonth int) error {
	switch frequency {
	case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyMonthly, models.FrequencyCustom:
	default:
		return fmt.Errorf("%w: frequency must be daily, weekly, monthly, or custom", errs.ErrValidation)
	}
	if _, _, err := parseSendTime(sendTime); err != nil {
		return err
	}
	if _, err := loadLocation(timezone); err != nil {
		return err
	}
	for _, d := range daysOfWeek {
		if d < 0 || d > 6 {
			return fmt.Errorf("%w: days_of_week values must be 0..6, got %d", errs.ErrValidation, d)
		}
	}
	if frequency == models.FrequencyMonthly && (dayOfMonth < 1 || dayOfMonth > 31) {
		return fmt.Errorf("%w: day_of_month must be 1..31, got %d", errs.ErrValidation, dayOfMonth)
	}
	return nil
}

// monthlyAt builds the occurrence for a given month, clamping day to the
// month's length. month may be out of range (e.g. 13); time.Date normalizes it
// before clamping.
func monthlyAt(year int, month time.Month, day, hour, minute int, loc *time.Location) time.Time {
	// Normalize year/month first so daysIn sees the real month.
	norm := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	if n := daysIn(norm.Year(), norm.Month()); day > n {
		day = n
	}
	if day < 1 {
		day = 1
	}
	return time.Date(norm.Year(), norm.Month(), day, hour, minute, 0, 0, loc)
}

// daysIn returns the number of days in the month. Day 0 of the next month
// normalizes to the last day of this one.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func weekdaySet(days []int) map[int]bool {
	set := make(map[int]bool, 7)
	if len(days) == 0 {
		for d := 0; d <= 6; d++ {
			set[d] = true
		}
		return set
	}
	for _, d := range days {
		set[d] = true
	}
	return set
}

func parseSendTime(s string) (hour, minute int, err error) {
	t, perr := time.Parse("15:04", s)
	if perr != nil {
		return 0, 0, fmt.Errorf("%w: send_time must be HH:MM, got %q", errs.ErrValidation, s)
	}
	return t.Hour(), t.Minute(), nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: timezone is required", errs.ErrValidation)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", errs.ErrValidation, name)
	}
	return loc, nil
}
