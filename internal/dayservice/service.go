// Package dayservice coordinates the event store, the calendar data file,
// the fingerprint index, and note attachments behind one mutating surface.
// The store itself does no locking; this service serializes access to it.
package dayservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/calfile"
	"github.com/starford/dagaz/internal/event"
	"github.com/starford/dagaz/internal/fingerprint"
	"github.com/starford/dagaz/internal/index"
	"github.com/starford/dagaz/internal/metric"
	"github.com/starford/dagaz/internal/notes"
	"github.com/starford/dagaz/internal/storage"
)

// DateFormat is the wire format for calendar dates.
const DateFormat = "2006-01-02"

// Detail is the full representation of an event.
type Detail struct {
	Fingerprint string `json:"fingerprint"`
	ID          int    `json:"id"`
	Date        string `json:"date"`
	Message     string `json:"message"`
	Note        string `json:"note,omitempty"`
}

// ChangeCallback is invoked after every successful mutation.
// kind is one of "event.created", "event.deleted", "event.moved",
// "calendar.reloaded".
type ChangeCallback func(kind, fingerprint string)

// Service owns the live event store and keeps the data file and the
// fingerprint index in step with it.
type Service struct {
	mu       sync.Mutex
	store    *event.Store
	files    storage.Provider
	db       *index.DB
	notes    *notes.Repo
	dataFile string
	logger   *slog.Logger
	onChange ChangeCallback
	nextID   int
}

// New creates a day service. dataFile is the path of the calendar data
// file, relative to the provider root.
func New(st *event.Store, files storage.Provider, db *index.DB, nr *notes.Repo, dataFile string, logger *slog.Logger) *Service {
	return &Service{
		store:    st,
		files:    files,
		db:       db,
		notes:    nr,
		dataFile: dataFile,
		logger:   logger,
		nextID:   1,
	}
}

// SetChangeCallback registers cb for mutation notifications.
func (s *Service) SetChangeCallback(cb ChangeCallback) {
	s.onChange = cb
}

func (s *Service) notify(kind, fp string) {
	if s.onChange != nil {
		s.onChange(kind, fp)
	}
}

// Load replaces the store contents with the data file and rebuilds the
// index. A missing data file loads an empty calendar.
func (s *Service) Load(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Service) loadLocked() error {
	s.store.Clear()

	if s.files.Exists(s.dataFile) {
		data, err := s.files.Read(s.dataFile)
		if err != nil {
			return fmt.Errorf("dayservice: load: %w", err)
		}
		n, err := calfile.Load(s.store, bytes.NewReader(data), nil)
		if err != nil {
			metric.ParseErrors.Inc()
			return fmt.Errorf("dayservice: load: %w", err)
		}
		metric.EventsLoaded.Add(float64(n))
	}

	for _, ev := range s.store.All() {
		if ev.ID >= s.nextID {
			s.nextID = ev.ID + 1
		}
	}
	metric.StoreSize.Set(float64(s.store.Len()))

	if err := index.Rebuild(s.db, s.store, s.logger); err != nil {
		return fmt.Errorf("dayservice: rebuild index: %w", err)
	}
	s.logger.Info("calendar loaded",
		slog.String("file", s.dataFile),
		slog.Int("events", s.store.Len()))
	return nil
}

// Reload re-reads the data file after an external change and notifies
// listeners.
func (s *Service) Reload(ctx context.Context) error {
	if err := s.Load(ctx); err != nil {
		return err
	}
	s.notify("calendar.reloaded", "")
	return nil
}

// Save flushes the store to the data file.
func (s *Service) Save(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Service) saveLocked() error {
	var buf bytes.Buffer
	if err := calfile.Save(&buf, s.store); err != nil {
		return fmt.Errorf("dayservice: save: %w", err)
	}
	if err := s.files.Write(s.dataFile, buf.Bytes()); err != nil {
		return fmt.Errorf("dayservice: save: %w", err)
	}
	metric.Saves.Inc()
	return nil
}

// Create adds a new event on the given day. When noteBody is non-empty it
// is stored as a note attachment. An id of 0 auto-assigns the next free id.
func (s *Service) Create(_ context.Context, day time.Time, message, noteBody string, id int) (*Detail, error) {
	if message == "" {
		return nil, fmt.Errorf("dayservice: empty message")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	noteID := ""
	if noteBody != "" {
		var err error
		if noteID, err = s.notes.Save([]byte(noteBody)); err != nil {
			return nil, err
		}
	}
	if id == 0 {
		id = s.nextID
	}
	if id >= s.nextID {
		s.nextID = id + 1
	}

	ev := s.store.NewEvent(message, noteID, day, id)
	fp := event.Fingerprint(ev)
	if err := s.indexLocked(ev, fp); err != nil {
		return nil, err
	}
	if err := s.saveLocked(); err != nil {
		return nil, err
	}
	metric.StoreSize.Set(float64(s.store.Len()))
	s.notify("event.created", fp)
	return detail(ev, fp), nil
}

// Get resolves a fingerprint prefix to an event.
func (s *Service) Get(_ context.Context, prefix string) (*Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, fp, err := s.resolveLocked(prefix)
	if err != nil {
		return nil, err
	}
	return detail(ev, fp), nil
}

// Delete removes the event selected by a fingerprint prefix. The attached
// note file is erased only when no other resident event references it.
func (s *Service) Delete(ctx context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, fp, err := s.resolveLocked(prefix)
	if err != nil {
		return err
	}

	s.store.Remove(ev)
	if err := s.db.DeleteEvent(fp); err != nil {
		s.logger.Warn("delete: index cleanup failed", slog.String("fingerprint", fp), slog.String("error", err.Error()))
	}
	if ev.Note != "" && !s.noteReferencedLocked(ev.Note) {
		if err := s.notes.Erase(ev.Note); err != nil {
			s.logger.Warn("delete: note erase failed", slog.String("note", ev.Note), slog.String("error", err.Error()))
		}
	}
	if err := s.saveLocked(); err != nil {
		return err
	}
	metric.StoreSize.Set(float64(s.store.Len()))
	s.notify("event.deleted", fp)
	return nil
}

// Move relocates the event selected by a fingerprint prefix to a new day
// and returns its new detail. The fingerprint changes with the day.
func (s *Service) Move(_ context.Context, prefix string, day time.Time) (*Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, oldFP, err := s.resolveLocked(prefix)
	if err != nil {
		return nil, err
	}

	s.store.Remove(ev)
	s.store.Paste(ev, day)

	newFP := event.Fingerprint(ev)
	if err := s.db.DeleteEvent(oldFP); err != nil {
		s.logger.Warn("move: index cleanup failed", slog.String("fingerprint", oldFP), slog.String("error", err.Error()))
	}
	if err := s.indexLocked(ev, newFP); err != nil {
		return nil, err
	}
	if err := s.saveLocked(); err != nil {
		return nil, err
	}
	s.notify("event.moved", newFP)
	return detail(ev, newFP), nil
}

// Duplicate copies the event selected by a fingerprint prefix onto another
// day. The copy shares the original's note file (notes are
// content-addressed) and gets a fresh id.
func (s *Service) Duplicate(_ context.Context, prefix string, day time.Time) (*Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, _, err := s.resolveLocked(prefix)
	if err != nil {
		return nil, err
	}

	cp := event.Duplicate(src)
	cp.ID = s.nextID
	s.nextID++
	if cp.Note != "" {
		if cp.Note, err = s.notes.Duplicate(cp.Note); err != nil {
			return nil, err
		}
	}
	s.store.Paste(cp, day)

	fp := event.Fingerprint(cp)
	if err := s.indexLocked(cp, fp); err != nil {
		return nil, err
	}
	if err := s.saveLocked(); err != nil {
		return nil, err
	}
	metric.StoreSize.Set(float64(s.store.Len()))
	s.notify("event.created", fp)
	return detail(cp, fp), nil
}

// Day returns the events of one calendar day in store order.
func (s *Service) Day(_ context.Context, day time.Time) ([]Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []Detail{}
	for _, ev := range s.store.On(day) {
		out = append(out, *detail(ev, event.Fingerprint(ev)))
	}
	return out, nil
}

// Range returns the events whose day falls in [from, to], via the index.
func (s *Service) Range(_ context.Context, from, to time.Time) ([]Detail, error) {
	rows, err := s.db.Range(event.Midnight(from), event.EndOfDay(to))
	if err != nil {
		return nil, err
	}
	out := make([]Detail, len(rows))
	for i, r := range rows {
		out[i] = Detail{
			Fingerprint: r.Fingerprint,
			ID:          r.EventID,
			Date:        r.Day.Format(DateFormat),
			Message:     r.Message,
			Note:        r.Note,
		}
	}
	return out, nil
}

// Search delegates to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Note returns the body of a note attachment.
func (s *Service) Note(_ context.Context, id string) ([]byte, error) {
	return s.notes.Load(id)
}

// resolveLocked maps a fingerprint prefix to the live event it selects.
// The index answers prefix lookups cheaply; the store scan below is the
// fallback for the brief window where the index lags a reload.
func (s *Service) resolveLocked(prefix string) (*event.Event, string, error) {
	if row, err := s.db.Lookup(prefix); err == nil {
		for _, ev := range s.store.All() {
			if event.Fingerprint(ev) == row.Fingerprint {
				return ev, row.Fingerprint, nil
			}
		}
	} else if errors.Is(err, apperr.ErrAmbiguous) {
		return nil, "", err
	}

	var found *event.Event
	var foundFP string
	for _, ev := range s.store.All() {
		fp := event.Fingerprint(ev)
		if fingerprint.Matches(prefix, fp) {
			if found != nil {
				return nil, "", apperr.ErrAmbiguous
			}
			found, foundFP = ev, fp
		}
	}
	if found == nil {
		return nil, "", apperr.ErrNotFound
	}
	return found, foundFP, nil
}

// noteReferencedLocked reports whether any resident event references the
// note identifier.
func (s *Service) noteReferencedLocked(noteID string) bool {
	for _, ev := range s.store.All() {
		if ev.Note == noteID {
			return true
		}
	}
	return false
}

func (s *Service) indexLocked(ev *event.Event, fp string) error {
	return s.db.UpsertEvent(index.EventRow{
		Fingerprint: fp,
		EventID:     ev.ID,
		Day:         ev.Day,
		Note:        ev.Note,
		Message:     ev.Message,
	})
}

func detail(ev *event.Event, fp string) *Detail {
	return &Detail{
		Fingerprint: fp,
		ID:          ev.ID,
		Date:        ev.Day.Format(DateFormat),
		Message:     ev.Message,
		Note:        ev.Note,
	}
}
