package dto

import "ledgerlink/internal/application/linker"

// HealthResponse is the GET /health payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// SuggestionListResponse wraps link suggestions for the review UI.
type SuggestionListResponse struct {
	Suggestions []linker.LinkSuggestion `json:"suggestions"`
	Count       int                     `json:"count"`
}
