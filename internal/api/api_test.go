package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/dagaz/internal/dayservice"
	"github.com/starford/dagaz/internal/event"
	"github.com/starford/dagaz/internal/notes"
	"github.com/starford/dagaz/internal/testutil"
)

// testEnv sets up a temp data dir, SQLite index, day service, and router.
// An empty authToken means disabled auth; a non-empty one enables token mode.
func testEnv(t *testing.T, authToken string) (*dayservice.Service, http.Handler) {
	t.Helper()

	_, files := testutil.TestDataDir(t)
	db := testutil.TestDB(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := dayservice.New(event.NewStore(), files, db, notes.NewRepo(files), "events", logger)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	router := NewRouter(svc, authToken != "", authToken, nil)
	return svc, router
}

func createEvent(t *testing.T, router http.Handler, date, message, note string) EventDetail {
	t.Helper()
	body, _ := json.Marshal(CreateEventRequest{Date: date, Message: message, Note: note})
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var d EventDetail
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return d
}

func TestCreateAndGetEvent(t *testing.T) {
	_, router := testEnv(t, "")

	created := createEvent(t, router, "2024-07-04", "fireworks", "")

	req := httptest.NewRequest(http.MethodGet, "/events/"+created.Fingerprint[:10], nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var got EventDetail
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Message != "fireworks" {
		t.Errorf("message = %q", got.Message)
	}
	if got.Date != "2024-07-04" {
		t.Errorf("date = %q", got.Date)
	}
	if got.Fingerprint != created.Fingerprint {
		t.Errorf("fingerprint = %q, want %q", got.Fingerprint, created.Fingerprint)
	}
}

func TestCreateEvent_BadRequest(t *testing.T) {
	_, router := testEnv(t, "")

	cases := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"missing message", `{"date":"2024-07-04"}`},
		{"missing date", `{"message":"x"}`},
		{"bad date", `{"date":"07/04/2024","message":"x"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader([]byte(tc.body)))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestGetEvent_NotFound(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/events/deadbeef", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDeleteEvent(t *testing.T) {
	_, router := testEnv(t, "")

	created := createEvent(t, router, "2024-07-04", "fireworks", "")

	req := httptest.NewRequest(http.MethodDelete, "/events/"+created.Fingerprint, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/events/"+created.Fingerprint, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestMoveEvent(t *testing.T) {
	_, router := testEnv(t, "")

	created := createEvent(t, router, "2024-07-04", "fireworks", "")

	body, _ := json.Marshal(RelocateEventRequest{Date: "2024-07-05"})
	req := httptest.NewRequest(http.MethodPost, "/events/"+created.Fingerprint+"/move", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("move status = %d, body = %s", w.Code, w.Body.String())
	}
	var moved EventDetail
	_ = json.Unmarshal(w.Body.Bytes(), &moved)
	if moved.Date != "2024-07-05" {
		t.Errorf("date = %q, want 2024-07-05", moved.Date)
	}
	if moved.Fingerprint == created.Fingerprint {
		t.Error("fingerprint unchanged after move")
	}
}

func TestDuplicateEvent(t *testing.T) {
	_, router := testEnv(t, "")

	created := createEvent(t, router, "2024-05-01", "dentist", "room 4")

	body, _ := json.Marshal(RelocateEventRequest{Date: "2024-06-01"})
	req := httptest.NewRequest(http.MethodPost, "/events/"+created.Fingerprint+"/duplicate", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("duplicate status = %d, body = %s", w.Code, w.Body.String())
	}
	var cp EventDetail
	_ = json.Unmarshal(w.Body.Bytes(), &cp)
	if cp.Date != "2024-06-01" || cp.Message != "dentist" {
		t.Errorf("copy = %+v", cp)
	}
	if cp.Note != created.Note {
		t.Errorf("copy note = %q, want %q", cp.Note, created.Note)
	}

	// Source still present.
	req = httptest.NewRequest(http.MethodGet, "/events/"+created.Fingerprint, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("source gone after duplicate: %d", w.Code)
	}
}

func TestDayEvents(t *testing.T) {
	_, router := testEnv(t, "")

	createEvent(t, router, "2024-09-09", "meeting", "")
	createEvent(t, router, "2024-09-09", "breakfast", "")
	createEvent(t, router, "2024-09-10", "other day", "")

	req := httptest.NewRequest(http.MethodGet, "/day/2024-09-09", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("day status = %d", w.Code)
	}
	var resp EventListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2", resp.Total)
	}
	if resp.Events[0].Message != "breakfast" || resp.Events[1].Message != "meeting" {
		t.Errorf("order: %q, %q", resp.Events[0].Message, resp.Events[1].Message)
	}
}

func TestListEventsRange(t *testing.T) {
	_, router := testEnv(t, "")

	createEvent(t, router, "2024-04-01", "april fools", "")
	createEvent(t, router, "2024-04-15", "taxes", "")
	createEvent(t, router, "2024-05-02", "out of range", "")

	req := httptest.NewRequest(http.MethodGet, "/events?from=2024-04-01&to=2024-04-30", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var resp EventListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Total)
	}

	req = httptest.NewRequest(http.MethodGet, "/events?from=bogus&to=2024-04-30", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad from date: status = %d, want 400", w.Code)
	}
}

func TestSearchEvents(t *testing.T) {
	_, router := testEnv(t, "")

	createEvent(t, router, "2024-04-01", "quarterly planning", "")
	createEvent(t, router, "2024-04-02", "lunch", "")

	req := httptest.NewRequest(http.MethodGet, "/search?q=quarterly", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d", w.Code)
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Message != "quarterly planning" {
		t.Errorf("results = %+v", resp.Results)
	}

	req = httptest.NewRequest(http.MethodGet, "/search", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing q: status = %d, want 400", w.Code)
	}
}

func TestGetNoteAttachment(t *testing.T) {
	_, router := testEnv(t, "")

	created := createEvent(t, router, "2024-05-01", "dentist", "bring insurance card")
	if created.Note == "" {
		t.Fatal("expected note id on created event")
	}

	req := httptest.NewRequest(http.MethodGet, "/notes/"+created.Note, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("note status = %d", w.Code)
	}
	var resp NoteResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Content != "bring insurance card" {
		t.Errorf("content = %q", resp.Content)
	}

	req = httptest.NewRequest(http.MethodGet, "/notes/ffffffffffffffffffffffffffffffffffffffff", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing note: status = %d, want 404", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, router := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/day/2024-01-01", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/day/2024-01-01", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/day/2024-01-01", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("good token: status = %d, want 200", w.Code)
	}
}

func TestPersistenceAcrossRouters(t *testing.T) {
	svc, router := testEnv(t, "")

	created := createEvent(t, router, "2024-07-04", "fireworks", "")

	// Reload from disk through the service and read back via the API.
	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/events/"+created.Fingerprint, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get after reload = %d", w.Code)
	}
}
