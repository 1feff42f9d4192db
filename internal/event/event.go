// Package event implements the whole-day calendar event store: a sorted
// in-memory collection of single-day entries, their canonical text codec,
// content fingerprinting, and the parse-time filter predicate.
package event

import "time"

// Event is a whole-day calendar entry. Day is always local midnight of the
// calendar day the event belongs to; callers must not rely on sub-day
// precision. Note holds the identifier of an attached note file, or "" when
// no note is attached. ID is caller-assigned and not unique-enforced.
type Event struct {
	ID      int
	Day     time.Time
	Message string
	Note    string
}

// Duplicate returns an independent copy of src with no store membership.
// Panics when src is nil: duplicating a missing event is a caller bug.
func Duplicate(src *Event) *Event {
	if src == nil {
		panic("event: duplicate of nil event")
	}
	cp := *src
	return &cp
}

// InDay reports whether the event falls on the same local calendar day as t.
func (e *Event) InDay(t time.Time) bool {
	return Midnight(e.Day).Equal(Midnight(t))
}

// Midnight returns local midnight of the calendar day containing t.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of the calendar day
// containing t.
func EndOfDay(t time.Time) time.Time {
	return Midnight(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
