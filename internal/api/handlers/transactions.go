package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ledgerlink/internal/api/dto"
	"ledgerlink/internal/infrastructure/storage"
)

// TransactionsHandler handles transaction-related HTTP requests.
type TransactionsHandler struct {
	store storage.TransactionStore
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(store storage.TransactionStore) *TransactionsHandler {
	return &TransactionsHandler{store: store}
}

// List handles GET /api/transactions - returns a filtered, paginated list.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := storage.TransactionFilters{
		UserID:     r.URL.Query().Get("user_id"),
		Merchant:   r.URL.Query().Get("merchant"),
		LinkedOnly: ParseBoolParam(r, "linked", false),
		DaysBack:   ParseIntParam(r, "days_back", 0),
		Limit:      ParseIntParam(r, "limit", 50),
		Offset:     ParseIntParam(r, "offset", 0),
	}

	result, err := h.store.ListTransactions(r.Context(), filters)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// Get handles GET /api/transactions/{id} - returns a single transaction.
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		WriteError(w, http.StatusBadRequest, dto.BadRequestError("transaction ID is required"))
		return
	}

	tx, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, dto.NotFoundError("transaction"))
			return
		}
		WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	WriteJSON(w, http.StatusOK, tx)
}
