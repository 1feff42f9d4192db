package event

import (
	"sort"
	"strings"
	"time"
)

// Store is an ordered collection of events, sorted ascending by
// (Day, Message) with byte-wise message comparison. Events with equal keys
// keep insertion order: a new event is placed after existing equals.
//
// The store does no internal locking; the embedding layer serializes
// access (see dayservice).
type Store struct {
	events []*Event
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// compare orders events by day, then message.
func compare(a, b *Event) int {
	if a.Day.Before(b.Day) {
		return -1
	}
	if a.Day.After(b.Day) {
		return 1
	}
	return strings.Compare(a.Message, b.Message)
}

// Insert places ev at its sorted position, after any events with an equal
// (Day, Message) key.
func (s *Store) Insert(ev *Event) {
	i := sort.Search(len(s.events), func(i int) bool {
		return compare(s.events[i], ev) > 0
	})
	s.events = append(s.events, nil)
	copy(s.events[i+1:], s.events[i:])
	s.events[i] = ev
}

// NewEvent allocates an event with Day normalized to local midnight and
// inserts it at its sorted position.
func (s *Store) NewEvent(message, note string, day time.Time, id int) *Event {
	ev := &Event{
		ID:      id,
		Day:     Midnight(day),
		Message: message,
		Note:    note,
	}
	s.Insert(ev)
	return ev
}

// Remove unlinks ev from the store, matching by identity rather than value.
// Removing a non-member is a caller logic error and panics.
func (s *Store) Remove(ev *Event) {
	for i, e := range s.events {
		if e == ev {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return
		}
	}
	panic("event: remove of non-member event")
}

// Paste relocates a detached event to a new day and reinserts it at the
// position dictated by the new key. The event must not currently be a
// member; Paste only inserts, it does not unlink an old position.
func (s *Store) Paste(ev *Event, day time.Time) {
	ev.Day = Midnight(day)
	s.Insert(ev)
}

// Len returns the number of resident events.
func (s *Store) Len() int {
	return len(s.events)
}

// All returns the resident events in sorted order. The returned slice is a
// snapshot; the events themselves are shared.
func (s *Store) All() []*Event {
	out := make([]*Event, len(s.events))
	copy(out, s.events)
	return out
}

// On returns the events falling on the same local calendar day as day, in
// store order.
func (s *Store) On(day time.Time) []*Event {
	var out []*Event
	for _, e := range s.events {
		if e.InDay(day) {
			out = append(out, e)
		}
	}
	return out
}

// Clear empties the store.
func (s *Store) Clear() {
	s.events = nil
}
