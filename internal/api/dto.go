package api

import "github.com/starford/dagaz/internal/dayservice"

// CreateEventRequest is the request body for creating an event.
type CreateEventRequest struct {
	Date    string `json:"date" example:"2024-07-04" validate:"required"`
	Message string `json:"message" example:"fireworks" validate:"required"`
	Note    string `json:"note,omitempty" example:"bring blankets"`
	ID      int    `json:"id,omitempty" example:"1"`
}

// RelocateEventRequest is the request body for moving or duplicating an
// event to another day.
type RelocateEventRequest struct {
	Date string `json:"date" example:"2024-07-05" validate:"required"`
}

// EventDetail is the full event response type (aliased from the domain layer).
type EventDetail = dayservice.Detail

// EventListResponse wraps event listings.
type EventListResponse struct {
	Events []EventDetail `json:"events" validate:"required"`
	Total  int           `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Fingerprint string `json:"fingerprint" example:"f15b76..." validate:"required"`
	Message     string `json:"message" example:"fireworks" validate:"required"`
	Snippet     string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// NoteResponse is the body of a note attachment.
type NoteResponse struct {
	ID      string `json:"id" example:"aaf4c6..." validate:"required"`
	Content string `json:"content" example:"bring blankets" validate:"required"`
}
