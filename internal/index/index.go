package index

import "time"

// EventIndex defines the interface for event indexing operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type EventIndex interface {
	UpsertEvent(row EventRow) error
	DeleteEvent(fp string) error
	Lookup(prefix string) (*EventRow, error)
	Range(from, to time.Time) ([]EventRow, error)
	AllFingerprints() (map[string]struct{}, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies EventIndex at compile time.
var _ EventIndex = (*DB)(nil)
