package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/dayservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *dayservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *dayservice.Service) *Handler {
	return &Handler{svc: svc}
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dayservice.DateFormat, s, time.Local)
}

// writeFingerprintError maps fingerprint resolution failures to HTTP codes.
func writeFingerprintError(w http.ResponseWriter, prefix string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrAmbiguous):
		writeJSON(w, http.StatusConflict, errorBody("fingerprint prefix is ambiguous"))
	default:
		slog.Error("event lookup failed", slog.String("fingerprint", prefix), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListEvents handles GET /api/events.
//
//	@Summary		List events in a date range
//	@Tags			events
//	@Produce		json
//	@Param			from	query		string	true	"Range start (YYYY-MM-DD)"
//	@Param			to		query		string	true	"Range end (YYYY-MM-DD)"
//	@Success		200		{object}	EventListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parseDate(q.Get("from"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid 'from' date"))
		return
	}
	to, err := parseDate(q.Get("to"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid 'to' date"))
		return
	}

	events, err := h.svc.Range(r.Context(), from, to)
	if err != nil {
		slog.Error("list events failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"total":  len(events),
	})
}

// CreateEvent handles POST /api/events.
//
//	@Summary		Create a new event
//	@Tags			events
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateEventRequest	true	"Event to create"
//	@Success		201		{object}	EventDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events [post]
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Date == "" || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("date and message are required"))
		return
	}
	day, err := parseDate(req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date"))
		return
	}

	event, err := h.svc.Create(r.Context(), day, req.Message, req.Note, req.ID)
	if err != nil {
		slog.Error("create event failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// GetEvent handles GET /api/events/{fingerprint}.
//
//	@Summary		Get a single event by fingerprint prefix
//	@Tags			events
//	@Produce		json
//	@Param			fingerprint	path		string	true	"Fingerprint prefix"
//	@Success		200			{object}	EventDetail
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events/{fingerprint} [get]
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	prefix := chi.URLParam(r, "fingerprint")
	event, err := h.svc.Get(r.Context(), prefix)
	if err != nil {
		writeFingerprintError(w, prefix, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /api/events/{fingerprint}.
//
//	@Summary		Delete an event
//	@Tags			events
//	@Param			fingerprint	path	string	true	"Fingerprint prefix"
//	@Success		204			"Event deleted"
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events/{fingerprint} [delete]
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	prefix := chi.URLParam(r, "fingerprint")
	if err := h.svc.Delete(r.Context(), prefix); err != nil {
		writeFingerprintError(w, prefix, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveEvent handles POST /api/events/{fingerprint}/move.
//
//	@Summary		Move an event to another day
//	@Tags			events
//	@Accept			json
//	@Produce		json
//	@Param			fingerprint	path		string					true	"Fingerprint prefix"
//	@Param			body		body		RelocateEventRequest	true	"Target day"
//	@Success		200			{object}	EventDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events/{fingerprint}/move [post]
func (h *Handler) MoveEvent(w http.ResponseWriter, r *http.Request) {
	prefix := chi.URLParam(r, "fingerprint")
	day, ok := decodeRelocate(w, r)
	if !ok {
		return
	}
	event, err := h.svc.Move(r.Context(), prefix, day)
	if err != nil {
		writeFingerprintError(w, prefix, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// DuplicateEvent handles POST /api/events/{fingerprint}/duplicate.
//
//	@Summary		Copy an event onto another day
//	@Tags			events
//	@Accept			json
//	@Produce		json
//	@Param			fingerprint	path		string					true	"Fingerprint prefix"
//	@Param			body		body		RelocateEventRequest	true	"Target day"
//	@Success		201			{object}	EventDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events/{fingerprint}/duplicate [post]
func (h *Handler) DuplicateEvent(w http.ResponseWriter, r *http.Request) {
	prefix := chi.URLParam(r, "fingerprint")
	day, ok := decodeRelocate(w, r)
	if !ok {
		return
	}
	event, err := h.svc.Duplicate(r.Context(), prefix, day)
	if err != nil {
		writeFingerprintError(w, prefix, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func decodeRelocate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req RelocateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return time.Time{}, false
	}
	day, err := parseDate(req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date"))
		return time.Time{}, false
	}
	return day, true
}

// DayEvents handles GET /api/day/{date}.
//
//	@Summary		List the events of one calendar day
//	@Tags			events
//	@Produce		json
//	@Param			date	path		string	true	"Day (YYYY-MM-DD)"
//	@Success		200		{object}	EventListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/day/{date} [get]
func (h *Handler) DayEvents(w http.ResponseWriter, r *http.Request) {
	day, err := parseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date"))
		return
	}
	events, err := h.svc.Day(r.Context(), day)
	if err != nil {
		slog.Error("day events failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"total":  len(events),
	})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across event messages
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Read a note attachment
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note identifier"
//	@Success		200	{object}	NoteResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, err := h.svc.Note(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get note failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, NoteResponse{ID: id, Content: string(body)})
}
