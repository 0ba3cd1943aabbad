package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agripulse/agripulse/internal/middleware"
	"github.com/agripulse/agripulse/internal/models"
	"github.com/agripulse/agripulse/internal/repo"
)

// FarmHandler handles farm CRUD, scoped to the authenticated owner.
type FarmHandler struct {
	Repo *repo.FarmRepo
}

// ownerID extracts the authenticated user id set by the JWT middleware.
func ownerID(r *http.Request) int {
	id, _ := r.Context().Value(middleware.UserIDKey).(int)
	return id
}

// ListFarms returns the owner's farms.
func (h *FarmHandler) ListFarms(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repo.ListByOwner(r.Context(), ownerID(r))
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []models.Farm{}
	}
	JSON(w, list, http.StatusOK)
}

// GetFarm returns one farm by id.
func (h *FarmHandler) GetFarm(w http.ResponseWriter, r *http.Request) {
	f, ok := h.ownedFarm(w, r)
	if !ok {
		return
	}
	JSON(w, f, http.StatusOK)
}

// CreateFarm creates a farm. Body: {"name", "latitude", "longitude", "area_hectares", "crop"}.
func (h *FarmHandler) CreateFarm(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name         string  `json:"name"`
		Latitude     float64 `json:"latitude"`
		Longitude    float64 `json:"longitude"`
		AreaHectares float64 `json:"area_hectares"`
		Crop         string  `json:"crop"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string)
	if input.Name == "" {
		fields["name"] = "required"
	}
	if input.Latitude < -90 || input.Latitude > 90 {
		fields["latitude"] = "must be between -90 and 90"
	}
	if input.Longitude < -180 || input.Longitude > 180 {
		fields["longitude"] = "must be between -180 and 180"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	f, err := h.Repo.Create(r.Context(), models.Farm{
		OwnerID:      ownerID(r),
		Name:         input.Name,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		AreaHectares: input.AreaHectares,
		Crop:         input.Crop,
	})
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSON(w, f, http.StatusCreated)
}

// DeleteFarm removes a farm; its schedules and reports cascade.
func (h *FarmHandler) DeleteFarm(w http.ResponseWriter, r *http.Request) {
	f, ok := h.ownedFarm(w, r)
	if !ok {
		return
	}
	if err := h.Repo.Delete(r.Context(), f.ID); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedFarm loads the farm from the id path param and enforces ownership.
// On failure it writes the error response and returns ok=false.
func (h *FarmHandler) ownedFarm(w http.ResponseWriter, r *http.Request) (*models.Farm, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid farm id", http.StatusBadRequest)
		return nil, false
	}
	f, err := h.Repo.GetByID(r.Context(), id)
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
