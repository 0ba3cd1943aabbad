package handlers

import (
	"net/http"
	"strconv"

	"github.com/agripulse/agripulse/internal/models"
	"github.com/agripulse/agripulse/internal/repo"
)

// InboundHandler exposes the inbound message audit log.
type InboundHandler struct {
	Repo *repo.InboundRepo
}

// ListInbound returns recent inbound WhatsApp messages, newest first
// (query: limit, offset).
func (h *InboundHandler) ListInbound(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}

	list, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []models.InboundMessage{}
	}
	JSON(w, list, http.StatusOK)
}
