package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ledgerlink/internal/api/dto"
	"ledgerlink/internal/application/autolink"
	"ledgerlink/internal/application/linker"
	"ledgerlink/internal/infrastructure/storage"
	"ledgerlink/internal/models"
)

// LinksHandler handles link lifecycle HTTP requests: manual creation,
// removal, partial update, hierarchy retrieval, suggestions and
// auto-link runs.
type LinksHandler struct {
	linker       *linker.Service
	orchestrator *autolink.Orchestrator
}

// NewLinksHandler creates a new links handler.
func NewLinksHandler(service *linker.Service, orchestrator *autolink.Orchestrator) *LinksHandler {
	return &LinksHandler{
		linker:       service,
		orchestrator: orchestrator,
	}
}

// Create handles POST /api/links - accepts a manual link request.
// Validation failures come back as 422 with the structured errors.
func (h *LinksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}
	if req.ParentTransactionID == "" || len(req.ChildTransactionIDs) == 0 {
		WriteError(w, http.StatusBadRequest,
			dto.BadRequestError("parent_transaction_id and child_transaction_ids are required"))
		return
	}

	confidence := req.Confidence
	if confidence == 0 {
		// A manually accepted link is full confidence unless stated.
		confidence = 100
	}

	response := h.linker.CreateLink(r.Context(), linker.LinkRequest{
		ParentTransactionID: req.ParentTransactionID,
		ChildTransactionIDs: req.ChildTransactionIDs,
		LinkType:            models.LinkTypeManual,
		Confidence:          confidence,
		Metadata:            req.Metadata,
	})

	if !response.Success && len(response.AlreadyLinked) > 0 &&
		len(response.AlreadyLinked) == len(response.Errors) {
		// Every failure was a lost claim race, not a bad request.
		WriteError(w, http.StatusConflict, dto.AlreadyLinkedError(response.AlreadyLinked))
		return
	}

	status := http.StatusCreated
	if !response.Success {
		status = http.StatusUnprocessableEntity
	}
	WriteJSON(w, status, response)
}

// Delete handles DELETE /api/links/{id} - removes the link on one record.
func (h *LinksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		WriteError(w, http.StatusBadRequest, dto.BadRequestError("transaction ID is required"))
		return
	}

	response := h.linker.RemoveLink(r.Context(), id)
	status := http.StatusOK
	if !response.Success {
		status = http.StatusUnprocessableEntity
	}
	WriteJSON(w, status, response)
}

// Update handles PATCH /api/links/{id} - partial update of link fields.
func (h *LinksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		WriteError(w, http.StatusBadRequest, dto.BadRequestError("transaction ID is required"))
		return
	}

	var req dto.UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	response := h.linker.UpdateLink(r.Context(), linker.UpdateLinkRequest{
		TransactionID: id,
		Confidence:    req.Confidence,
		LinkType:      req.LinkType,
		Metadata:      req.Metadata,
	})

	status := http.StatusOK
	if !response.Success {
		status = http.StatusUnprocessableEntity
	}
	WriteJSON(w, status, response)
}

// Hierarchy handles GET /api/transactions/{id}/links - returns the parent
// with its direct children and their summed amount.
func (h *LinksHandler) Hierarchy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		WriteError(w, http.StatusBadRequest, dto.BadRequestError("transaction ID is required"))
		return
	}

	hierarchy, err := h.linker.GetLinkedTransactions(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, dto.NotFoundError("transaction"))
			return
		}
		WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	WriteJSON(w, http.StatusOK, hierarchy)
}

// Suggestions handles GET /api/links/suggestions - returns match
// candidates awaiting review, best first.
func (h *LinksHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		WriteError(w, http.StatusBadRequest, dto.BadRequestError("user_id is required"))
		return
	}
	minConfidence := ParseIntParam(r, "min_confidence", h.linker.Config().SuggestThreshold)

	suggestions, err := h.linker.GetLinkSuggestions(r.Context(), userID, minConfidence)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	WriteJSON(w, http.StatusOK, dto.SuggestionListResponse{
		Suggestions: suggestions,
		Count:       len(suggestions),
	})
}

// AutoLink handles POST /api/links/autolink - runs the orchestrator for a
// user. Partial failure still returns the full result payload.
func (h *LinksHandler) AutoLink(w http.ResponseWriter, r *http.Request) {
	var req dto.AutoLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}
	if req.UserID == "" {
		WriteError(w, http.StatusBadRequest, dto.BadRequestError("user_id is required"))
		return
	}

	result, err := h.orchestrator.Run(r.Context(), req.UserID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
