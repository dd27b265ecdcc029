package handlers

import (
	"net/http"

	"ledgerlink/internal/api/dto"
	"ledgerlink/internal/infrastructure/storage"
)

// StatsHandler handles linking statistics requests.
type StatsHandler struct {
	store storage.TransactionStore
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(store storage.TransactionStore) *StatsHandler {
	return &StatsHandler{store: store}
}

// Get handles GET /api/stats - returns aggregate linking statistics for a
// user.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		WriteError(w, http.StatusBadRequest, dto.BadRequestError("user_id is required"))
		return
	}

	stats, err := h.store.GetLinkStats(r.Context(), userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}
