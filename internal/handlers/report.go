package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agripulse/agripulse/internal/models"
	"github.com/agripulse/agripulse/internal/repo"
)

// Assembler produces a report for a farm on demand.
type Assembler interface {
	Assemble(ctx context.Context, farm models.Farm, owner models.User) (*models.Report, error)
}

// ReportHandler handles on-demand report generation and report reads.
type ReportHandler struct {
	Reports   *repo.ReportRepo
	Farms     *repo.FarmRepo
	Users     *repo.UserRepo
	Assembler Assembler
}

// GenerateReport assembles a fresh report for the farm right now, outside any
// schedule. POST /v1/farms/{id}/reports.
func (h *ReportHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	farm, ok := h.ownedFarm(w, r)
	if !ok {
		return
	}

	owner, err := h.Users.GetByID(r.Context(), farm.OwnerID)
	if err != nil || owner == nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	rep, err := h.Assembler.Assemble(r.Context(), *farm, *owner)
	if err != nil {
		slog.Error("manual report generation failed", "farm_id", farm.ID, "error", err)
		JSONError(w, "report generation failed", statusFromErr(err))
		return
	}
	JSON(w, rep, http.StatusCreated)
}

// LatestReport returns the most recent report for the farm, or 404 when none
// exists yet. GET /v1/farms/{id}/reports/latest.
func (h *ReportHandler) LatestReport(w http.ResponseWriter, r *http.Request) {
	farm, ok := h.ownedFarm(w, r)
	if !ok {
		return
	}

	rep, err := h.Reports.LatestByFarm(r.Context(), farm.ID)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if rep == nil {
		JSONError(w, "no reports for this farm yet", http.StatusNotFound)
		return
	}
	JSON(w, rep, http.StatusOK)
}

// ListReports returns the farm's report history, newest first (query: limit,
// offset). GET /v1/farms/{id}/reports.
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	farm, ok := h.ownedFarm(w, r)
	if !ok {
		return
	}

	limit := 20
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

	list, err := h.Reports.ListByFarm(r.Context(), farm.ID, limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []models.Report{}
	}
	JSON(w, list, http.StatusOK)
}

func (h *ReportHandler) ownedFarm(w http.ResponseWriter, r *http.Request) (*models.Farm, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid farm id", http.StatusBadRequest)
		return nil, false
	}
	f, err := h.Farms.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return nil, false
	}
	if f == nil || f.OwnerID != ownerID(r) {
		JSONError(w, "farm not found", http.StatusNotFound)
		return nil, false
	}
	return f, true
}
