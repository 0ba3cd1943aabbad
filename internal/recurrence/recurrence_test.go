package recurrence

import (
	"errors"
	"testing"
	"time"

	"github.com/agripulse/agripulse/internal/errs"
	"github.com/agripulse/agripulse/internal/models"
)

func mustParse(t *testing.T, value, tz string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(tz)
	if err != nil {
		t.Fatalf("load location %q: %v", tz, err)
	}
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", value, loc)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return ts
}

func TestNextSendAt_DailyBeforeSendTime(t *testing.T) {
	// Scenario A: created at 08:00, send time 09:00 -> today 09:00.
	s := models.Schedule{Frequency: models.FrequencyDaily, SendTime: "09:00", Timezone: "Africa/Casablanca"}
	now := mustParse(t, "2026-01-10 08:00:00", "Africa/Casablanca")

	next, err := NextSendAt(s, now)
	if err != nil {
		t.Fatalf("NextSendAt: %v", err)
	}
	want := mustParse(t, "2026-01-10 09:00:00", "Africa/Casablanca")
	if !next.Equal(want) {
		t.Errorf("next: got %v, want %v", next, want)
	}
}

func TestNextSendAt_DailyAfterSendTime(t *testing.T) {
	s := models.Schedule{Frequency: models.FrequencyDaily, SendTime: "09:00", Timezone: "Africa/Casablanca"}
	now := mustParse(t, "2026-01-10 09:05:00", "Africa/Casablanca")

	next, err := NextSendAt(s, now)
	if err != nil {
		t.Fatalf("NextSendAt: %v", err)
	}
	want := mustParse(t, "2026-01-11 09:00:00", "Africa/Casablanca")
	if !next.Equal(want) {
		t.Errorf("next: got %v, want %v", next, want)
	}
}

func TestNextSendAt_DailyExactlyAtSendTime(t *testing.T) {
	// A candidate equal to now is already passed: the occurrence belongs to
	// the tick that claimed it, not to the recomputation.
	s := models.Schedule{Frequency: models.FrequencyDaily, SendTime: "09:00", Timezone: "UTC"}
	now := mustParse(t, "2026-01-10 09:00:00", "UTC")

	next, err := NextSendAt(s, now)
	if err != nil {
		t.Fatalf("NextSendAt: %v", err)
	}
	want := mustParse(t, "2026-01-11 09:00:00", "UTC")
	if !next.Equal(want) {
		t.Errorf("next: got %v, want %v", next, want)
	}
}

func TestNextSendAt_WeeklyMondayAfterTime(t *testing.T) {
	// Mon/Wed/Fri schedule, now is Monday after send time -> Wednesday, not
	// next Monday. 2026-01-12 is a Monday.
	s := models.Schedule{
		Frequency:  models.FrequencyWeekly,
		SendTime:   "09:00",
		Timezone:   "UTC",
		DaysOfWeek: []int{1, 3, 5},
	}
	now := mustParse(t, "2026-01-12 10:00:00", "UTC")

	next, err := NextSendAt(s, now)
	if err != nil {
		t.Fatalf("NextSendAt: %v", err)
	}
	want := mustParse(t, "2026-01-14 09:00:00", "UTC")
	if !next.Equal(want) {
		t.Errorf("next: got %v, want %v", next, want)
	}
	if next.Weekday() != time.Wednesday {
		t.Errorf("weekday: got %v, want Wednesday", next.Weekday())
	}
}

func TestNextSendAt_WeeklyTodayBeforeTime(t *testing.T) {
	// Today is Monday and is allowed; time has not passed yet -> today.
	s := models.Schedule{
		Frequency:  models.FrequencyWeekly,
		SendTime:   "18:00",
		Timezone:   "UTC",
		DaysOfWeek: []int{1},
	}
	now := mustParse(t, "2026-01-12 08:00:00", "UTC")

	next, err := NextSendAt(s, now)
	if err != nil {
		t.Fatalf("NextSendAt: %v", err)
	}
	want := mustParse(t, "2026-01-12 18:00:00", "UTC")
	if !next.Equal(want) {
		t.Errorf("next: got %v, want %v", next, want)
	}
}

func TestNextSendAt_WeeklyTodayNotAllowed(t *testing.T) {
	// Tuesday before send time, but only Friday is allowed -> Friday.
	s := models.Schedule{
		Frequency:  models.FrequencyWeekly,
		SendTime:   "09:00",
		Timezone:   "UTC",
		DaysOfWeek: []int{5},
	}
	now := mustParse(t, "2026-01-13 08:00:00", "UTC")

	next, err := NextSendAt(s, now)
	if err != nil {
		t.Fatalf("NextSendAt: %v", err)
	}
	want := mustParse(t, "2026-01-16 09:00:00", "UTC")
	if !next.Equal(want) {
		t.Errorf("next: got %v, want %v", next, want)
	}
}

func TestNextSendAt_WeeklyEmptyDaysMeansEveryDay(t *testing.T) {
	// Documented default: an empty day set behaves like a daily schedule.
	s := models.Schedule{Frequency: models.FrequencyWeekly, SendTime: "09:00", Timezone: "UTC"}
	now := mustParse(t, "2026-01-12 10:00:00", "UTC")

	next, err := NextSendAt(s, now)
	if err != nil {
		t.Fatalf("NextSendAt: %v", err)
	}
	want := mustParse(t, "2026-01-13 09:00:00", "UTC")
	if !next.Equal(want) {
		t.Errorf("next: got %v, want %v", next, want)
	}
}

func TestNextSendAt_MonthlyClampsShortMonth(t *testing.T) {
	// day_of_month=31 rolling into April (30 days) clamps to the 30th.
	s := models.Schedule{Frequency: models.FrequencyMonthly, SendTime: "09:00", Timezone: "UTC", DayOfMonth: 31}
	now := mustParse(t, "2026-03-31 10:00:00", "UTC")

	next, err := NextSendAt(s, now)
	if err != nil {
		t.Fatalf("NextSendAt: %v", err)
	}
	want := mustParse(t, "2026-04-30 09:00:00", "UTC")
	if !next.Equal(want) {
		t.Errorf("next: got %v, want %v", next, want)
	}
}

func TestNextSendAt_MonthlyClampsFebruary(t *testing.T) {
	// 2026 is not a leap year: Jan 31 -> Feb 28, never Mar 3.
	s := models.Schedule{Frequency: models.FrequencyMonthly, SendTime: "09:00", Timezone: "UTC", DayOfMonth: 31}
	now := mustParse(t, "2026-01-31 10:00:00", "UTC")

	next, err := NextSendAt(s, now)
	if err != nil {
		t.Fatalf("NextSendAt: %v", err)
	}
	want := mustParse(t, "2026-02-28 09:00:00", "UTC")
	if !next.Equal(want) {
		t.Errorf("next: got %v, want %v", next, want)
	}
}

func TestNextSendAt_MonthlyMidMonth(t *testing.T) {
	// Scenario C: day 1 computed on Jan 15 -> Feb 1, not Jan 1 and not Mar 1.
	s := models.Schedule{Frequency: models.FrequencyMonthly, SendTime: "09:00", Timezone: "UTC", DayOfMonth: 1}
	now := mustParse(t, "2026-01-15 12:00:00", "UTC")

	next, err := NextSendAt(s, now)
	if err != nil {
		t.Fatalf("NextSendAt: %v", err)
	}
	want := mustParse(t, "2026-02-01 09:00:00", "UTC")
	if !next.Equal(want) {
		t.Errorf("next: got %v, want %v", next, want)
	}
}

func TestNextSendAt_MonthlyDecemberRollsToJanuary(t *testing.T) {
	s := models.Schedule{Frequency: models.FrequencyMonthly, SendTime: "07:30", Timezone: "UTC", DayOfMonth: 15}
	now := mustParse(t, "2026-12-20 00:00:00", "UTC")

	next, err := NextSendAt(s, now)
	if err != nil {
		t.Fatalf("NextSendAt: %v", err)
	}
	want := mustParse(t, "2027-01-15 07:30:00", "UTC")
	if !next.Equal(want) {
		t.Errorf("next: got %v, want %v", next, want)
	}
}

func TestNextSendAt_CustomBehavesLikeDaily(t *testing.T) {
	s := models.Schedule{Frequency: models.FrequencyCustom, SendTime: "09:00", Timezone: "UTC"}
	now := mustParse(t, "2026-01-10 10:00:00", "UTC")

	next, err := NextSendAt(s, now)
	if err != nil {
		t.Fatalf("NextSendAt: %v", err)
	}
	want := mustParse(t, "2026-01-11 09:00:00", "UTC")
	if !next.Equal(want) {
		t.Errorf("next: got %v, want %v", next, want)
	}
}

func TestNextSendAt_TimezoneDiffersFromScannerClock(t *testing.T) {
	// Scanner clock is UTC; "today" in Pacific/Auckland is already tomorrow.
	// The candidate date must come from the schedule's timezone.
	s := models.Schedule{Frequency: models.FrequencyDaily, SendTime: "09:00", Timezone: "Pacific/Auckland"}
	now := mustParse(t, "2026-01-10 14:00:00", "UTC") // Jan 11, 03:00 in Auckland

	next, err := NextSendAt(s, now)
	if err != nil {
		t.Fatalf("NextSendAt: %v", err)
	}
	want := mustParse(t, "2026-01-11 09:00:00", "Pacific/Auckland")
	if !next.Equal(want) {
		t.Errorf("next: got %v, want %v", next, want)
	}
}

func TestNextSendAt_Idempotent(t *testing.T) {
	s := models.Schedule{
		Frequency:  models.FrequencyWeekly,
		SendTime:   "09:00",
		Timezone:   "Africa/Casablanca",
		DaysOfWeek: []int{1, 3, 5},
	}
	now := mustParse(t, "2026-01-12 10:00:00", "Africa/Casablanca")

	first, err := NextSendAt(s, now)
	if err != nil {
		t.Fatalf("NextSendAt: %v", err)
	}
	second, err := NextSendAt(s, now)
	if err != nil {
		t.Fatalf("NextSendAt (second call): %v", err)
	}
	if !first.Equal(second) {
		t.Errorf("not idempotent: %v vs %v", first, second)
	}
}

func TestNextSendAt_UnknownFrequency(t *testing.T) {
	s := models.Schedule{Frequency: "hourly", SendTime: "09:00", Timezone: "UTC"}
	_, err := NextSendAt(s, time.Now())
	if !errors.Is(err, errs.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestDue_HalfOpenWindow(t *testing.T) {
	window := 15 * time.Minute
	next := mustParse(t, "2026-01-10 09:00:00", "UTC")

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"one tick before", next.Add(-window), false},
		{"just before", next.Add(-time.Second), false},
		{"at next", next, true},
		{"inside window", next.Add(14 * time.Minute), true},
		{"at window end", next.Add(window), false},
		{"one tick after", next.Add(2 * window), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Due(next, tc.now, window); got != tc.want {
				t.Errorf("Due(%v): got %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name       string
		frequency  string
		sendTime   string
		timezone   string
		daysOfWeek []int
		dayOfMonth int
		wantErr    bool
	}{
		{"valid daily", "daily", "09:00", "Africa/Casablanca", nil, 0, false},
		{"valid weekly", "weekly", "06:30", "UTC", []int{1, 3, 5}, 0, false},
		{"valid monthly", "monthly", "09:00", "UTC", nil, 31, false},
		{"bad frequency", "hourly", "09:00", "UTC", nil, 0, true},
		{"bad time", "daily", "25:00", "UTC", nil, 0, true},
		{"bad timezone", "daily", "09:00", "Mars/Olympus", nil, 0, true},
		{"day of week out of range", "weekly", "09:00", "UTC", []int{7}, 0, true},
		{"day of month zero", "monthly", "09:00", "UTC", nil, 0, true},
		{"day of month high", "monthly", "09:00", "UTC", nil, 32, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.frequency, tc.sendTime, tc.timezone, tc.daysOfWeek, tc.dayOfMonth)
			if tc.wantErr && !errors.Is(err, errs.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
