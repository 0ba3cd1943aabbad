package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agripulse/agripulse/internal/errs"
	"github.com/agripulse/agripulse/internal/models"
	"github.com/agripulse/agripulse/internal/recurrence"
	"github.com/agripulse/agripulse/internal/repo"
)

// ScheduleHandler handles delivery schedule CRUD, scoped to the authenticated
// owner.
type ScheduleHandler struct {
	Repo  *repo.ScheduleRepo
	Farms *repo.FarmRepo
}

// ListSchedules returns the owner's schedules (query: limit, offset).
func (h *ScheduleHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}

	list, err := h.Repo.ListByOwner(r.Context(), ownerID(r), limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []models.Schedule{}
	}
	JSON(w, list, http.StatusOK)
}

// GetSchedule returns one schedule by id.
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	s, ok := h.ownedSchedule(w, r)
	if !ok {
		return
	}
	JSON(w, s, http.StatusOK)
}

// CreateSchedule creates a schedule for one of the owner's farms and computes
// its first next_send_at. Body: {"farm_id", "frequency", "send_time",
// "timezone", "days_of_week", "day_of_month", "include_audio",
// "include_chart", "message_prefix", "is_active"}.
func (h *ScheduleHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FarmID        int    `json:"farm_id"`
		Frequency     string `json:"frequency"`
		SendTime      string `json:"send_time"`
		Timezone      string `json:"timezone"`
		DaysOfWeek    []int  `json:"days_of_week"`
		DayOfMonth    int    `json:"day_of_month"`
		IncludeAudio  bool   `json:"include_audio"`
		IncludeChart  bool   `json:"include_chart"`
		MessagePrefix string `json:"message_prefix"`
		IsActive      *bool  `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	if input.SendTime == "" {
		input.SendTime = "08:00"
	}
	if input.Timezone == "" {
		input.Timezone = "UTC"
	}
	if input.DayOfMonth == 0 {
		input.DayOfMonth = 1
	}
	if err := recurrence.Validate(input.Frequency, input.SendTime, input.Timezone, input.DaysOfWeek, input.DayOfMonth); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	farm, err := h.Farms.GetByID(r.Context(), input.FarmID)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if farm == nil || farm.OwnerID != ownerID(r) {
		JSONError(w, "farm not found", http.StatusNotFound)
		return
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	s := models.Schedule{
		OwnerID:       ownerID(r),
		FarmID:        farm.ID,
		FarmName:      farm.Name,
		IsActive:      active,
		Frequency:     input.Frequency,
		SendTime:      input.SendTime,
		Timezone:      input.Timezone,
		DaysOfWeek:    input.DaysOfWeek,
		DayOfMonth:    input.DayOfMonth,
		IncludeAudio:  input.IncludeAudio,
		IncludeChart:  input.IncludeChart,
		MessagePrefix: input.MessagePrefix,
	}
	next, err := recurrence.NextSendAt(s, time.Now().UTC())
	if err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.NextSendAt = &next

	created, err := h.Repo.Create(r.Context(), s)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSON(w, created, http.StatusCreated)
}

// UpdateSchedule partially updates a schedule. Only fields present in the
// body change; a change to any cadence field (frequency, send_time, timezone,
// days_of_week, day_of_month) or a reactivation recomputes next_send_at.
func (h *ScheduleHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	s, ok := h.ownedSchedule(w, r)
	if !ok {
		return
	}

	var input struct {
		Frequency     *string `json:"frequency"`
		SendTime      *string `json:"send_time"`
		Timezone      *string `json:"timezone"`
		DaysOfWeek    *[]int  `json:"days_of_week"`
		DayOfMonth    *int    `json:"day_of_month"`
		IncludeAudio  *bool   `json:"include_audio"`
		IncludeChart  *bool   `json:"include_chart"`
		MessagePrefix *string `json:"message_prefix"`
		IsActive      *bool   `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	cadenceChanged := false
	if input.Frequency != nil {
		s.Frequency = *input.Frequency
		cadenceChanged = true
	}
	if input.SendTime != nil {
		s.SendTime = *input.SendTime
		cadenceChanged = true
	}
	if input.Timezone != nil {
		s.Timezone = *input.Timezone
		cadenceChanged = true
	}
	if input.DaysOfWeek != nil {
		s.DaysOfWeek = *input.DaysOfWeek
		cadenceChanged = true
	}
	if input.DayOfMonth != nil {
		s.DayOfMonth = *input.DayOfMonth
		cadenceChanged = true
	}
	if input.IncludeAudio != nil {
		s.IncludeAudio = *input.IncludeAudio
	}
	if input.IncludeChart != nil {
		s.IncludeChart = *input.IncludeChart
	}
	if input.MessagePrefix != nil {
		s.MessagePrefix = *input.MessagePrefix
	}
	if input.IsActive != nil {
		// A schedule paused longer than one scan interval keeps a stale
		// next_send_at that the due window will never match, so a reactivation
		// must recompute it.
		if *input.IsActive && !s.IsActive {
			cadenceChanged = true
		}
		s.IsActive = *input.IsActive
	}

	if err := recurrence.Validate(s.Frequency, s.SendTime, s.Timezone, s.DaysOfWeek, s.DayOfMonth); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if cadenceChanged {
		next, err := recurrence.NextSendAt(*s, time.Now().UTC())
		if err != nil {
			JSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.NextSendAt = &next
	}

	if err := h.Repo.Update(r.Context(), *s); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSON(w, s, http.StatusOK)
}

// DeleteSchedule removes a schedule immediately.
func (h *ScheduleHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	s, ok := h.ownedSchedule(w, r)
	if !ok {
		return
	}
	if err := h.Repo.Delete(r.Context(), s.ID); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ScheduleHandler) ownedSchedule(w http.ResponseWriter, r *http.Request) (*models.Schedule, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid schedule id", http.StatusBadRequest)
		return nil, false
	}
	s, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return nil, false
	}
	if s == nil || s.OwnerID != ownerID(r) {
		JSONError(w, "schedule not found", http.StatusNotFound)
		return nil, false
	}
	return s, true
}

// statusFromErr maps domain sentinel errors to HTTP status codes.
func statusFromErr(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
