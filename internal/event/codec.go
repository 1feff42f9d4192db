package event

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/starford/dagaz/internal/fingerprint"
)

// Structural parse errors returned by Scan. Filter rejection is not an
// error: Scan returns (nil, nil) when a filter excludes the candidate.
var (
	ErrIllegalDate    = errors.New("event: illegal date")
	ErrMissingMessage = errors.New("event: missing event description")
)

// String renders the event's canonical text line:
//
//	MM/DD/YYYY [id] [>note ]message
//
// The date is the local calendar date of Day, the note segment appears only
// when a note is attached, and the message consumes the rest of the line.
// This form is both the on-disk representation and the fingerprint input.
func (e *Event) String() string {
	var sb strings.Builder
	y, m, d := e.Day.Date()
	fmt.Fprintf(&sb, "%02d/%02d/%04d [%d] ", int(m), d, y, e.ID)
	if e.Note != "" {
		fmt.Fprintf(&sb, ">%s ", e.Note)
	}
	sb.WriteString(e.Message)
	return sb.String()
}

// Fingerprint returns the hex digest of the event's canonical text line.
// It is deterministic in (Day, ID, Note, Message): any change to a rendered
// field changes the fingerprint.
func Fingerprint(e *Event) string {
	return fingerprint.Sum([]byte(e.String()))
}

// Write writes the event's canonical line followed by a newline to w.
func Write(w io.Writer, e *Event) error {
	_, err := fmt.Fprintln(w, e.String())
	return err
}

// Date is the structured calendar date handed to Scan. Hour and Minute must
// be a legal time of day; Scan normalizes the event to local midnight
// regardless.
type Date struct {
	Year, Month, Day, Hour, Minute int
}

// valid reports whether d is a legal calendar date with a legal time of day.
func (d Date) valid() bool {
	if d.Hour < 0 || d.Hour > 23 || d.Minute < 0 || d.Minute > 59 {
		return false
	}
	if d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return false
	}
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.Local)
	y, m, day := t.Date()
	return y == d.Year && int(m) == d.Month && day == d.Day
}

// Scan parses one event from r: the structured date has already been
// consumed by the caller, and r is positioned at the message line. On
// success the new event is resident in st and returned. When f excludes the
// candidate, Scan returns (nil, nil) and leaves no trace in st — rejection
// is not a failure. Structural problems (bad date, unreadable message)
// return an error with nothing inserted.
func Scan(st *Store, r *bufio.Reader, d Date, id int, note string, f *Filter) (*Event, error) {
	if !d.valid() {
		return nil, ErrIllegalDate
	}

	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return nil, ErrMissingMessage
	}
	msg := strings.TrimSuffix(line, "\n")
	msg = strings.TrimSuffix(msg, "\r")

	day := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.Local)
	dayEnd := EndOfDay(day)

	if f != nil {
		// A hash pattern needs the rendered line, so the candidate is
		// constructed provisionally and torn back out on rejection.
		var ev *Event
		var fp string
		if f.Hash != "" {
			ev = st.NewEvent(msg, note, day, id)
			fp = Fingerprint(ev)
		}
		if f.rejects(msg, day, dayEnd, fp) {
			if ev != nil {
				st.Remove(ev)
			}
			return nil, nil
		}
		if ev != nil {
			return ev, nil
		}
	}
	return st.NewEvent(msg, note, day, id), nil
}
