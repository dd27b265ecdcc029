package handlers

import (
	"encoding/json"
	"net/http"

	"ledgerlink/internal/api/dto"
	"ledgerlink/internal/application/importer"
	"ledgerlink/internal/models"
)

// ImportsHandler accepts parsed import batches.
type ImportsHandler struct {
	importer *importer.Service
}

// NewImportsHandler creates a new imports handler.
func NewImportsHandler(service *importer.Service) *ImportsHandler {
	return &ImportsHandler{importer: service}
}

// Create handles POST /api/imports - persists one batch of parsed records
// and runs auto-linking over the user's unlinked pool.
func (h *ImportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}
	if req.UserID == "" {
		WriteError(w, http.StatusBadRequest, dto.BadRequestError("user_id is required"))
		return
	}
	if len(req.Transactions) == 0 {
		WriteError(w, http.StatusBadRequest, dto.BadRequestError("transactions are required"))
		return
	}

	txs := make([]*models.Transaction, 0, len(req.Transactions))
	for _, record := range req.Transactions {
		txs = append(txs, record.ToModel())
	}

	result, err := h.importer.ImportBatch(r.Context(), req.UserID, txs)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	WriteJSON(w, http.StatusCreated, result)
}
