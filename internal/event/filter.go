package event

import (
	"regexp"
	"time"

	"github.com/starford/dagaz/internal/fingerprint"
)

// Item type bits for Filter.TypeMask. Only whole-day events live in this
// store; the appointment bit exists so one filter configuration can address
// other item kinds held elsewhere.
const (
	TypeEvent = 1 << iota
	TypeAppointment
)

// TypeAll includes every item kind.
const TypeAll = TypeEvent | TypeAppointment

// Unbounded marks a date-range bound as absent.
const Unbounded int64 = -1

// Filter restricts which parsed events are retained. Range bounds are unix
// timestamps compared against the candidate day's start and end instants;
// Unbounded (-1) disables a bound. Hash selects by fingerprint prefix.
// Invert flips the overall predicate.
type Filter struct {
	TypeMask  int
	Regex     *regexp.Regexp
	StartFrom int64
	StartTo   int64
	EndFrom   int64
	EndTo     int64
	Hash      string
	Invert    bool
}

// NewFilter returns a filter that accepts everything.
func NewFilter() *Filter {
	return &Filter{
		TypeMask:  TypeAll,
		StartFrom: Unbounded,
		StartTo:   Unbounded,
		EndFrom:   Unbounded,
		EndTo:     Unbounded,
	}
}

// rejects reports whether a candidate with the given message, day bounds,
// and fingerprint is excluded from the accepted set. fp is consulted only
// when the filter carries a hash pattern; pass "" otherwise.
func (f *Filter) rejects(message string, dayStart, dayEnd time.Time, fp string) bool {
	start, end := dayStart.Unix(), dayEnd.Unix()
	cond := f.TypeMask&TypeEvent == 0 ||
		(f.Regex != nil && !f.Regex.MatchString(message)) ||
		(f.StartFrom != Unbounded && start < f.StartFrom) ||
		(f.StartTo != Unbounded && start > f.StartTo) ||
		(f.EndFrom != Unbounded && end < f.EndFrom) ||
		(f.EndTo != Unbounded && end > f.EndTo)
	if f.Hash != "" {
		cond = cond || !fingerprint.Matches(f.Hash, fp)
	}
	if f.Invert {
		return !cond
	}
	return cond
}
