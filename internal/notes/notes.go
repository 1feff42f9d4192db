// Package notes stores event note attachments as content-addressed files:
// a note's identifier is the SHA-1 digest of its body, so identical bodies
// share one file and a note identifier doubles as an integrity check.
package notes

import (
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/fingerprint"
	"github.com/starford/dagaz/internal/storage"
)

// Dir is the subdirectory of the data root that holds note files.
const Dir = "notes"

// Repo provides access to the note files of a data directory.
type Repo struct {
	files storage.Provider
}

// NewRepo creates a note repository over the given provider.
func NewRepo(files storage.Provider) *Repo {
	return &Repo{files: files}
}

func notePath(id string) (string, error) {
	if !fingerprint.Valid(id) || len(id) != fingerprint.HexLen {
		return "", fmt.Errorf("notes: invalid note identifier %q", id)
	}
	return path.Join(Dir, id), nil
}

// Save stores body and returns its identifier. Saving the same body twice
// is idempotent.
func (r *Repo) Save(body []byte) (string, error) {
	id := fingerprint.Sum(body)
	p, err := notePath(id)
	if err != nil {
		return "", err
	}
	if r.files.Exists(p) {
		return id, nil
	}
	if err := r.files.Write(p, body); err != nil {
		return "", err
	}
	return id, nil
}

// Load returns the body of the note with the given identifier.
func (r *Repo) Load(id string) ([]byte, error) {
	p, err := notePath(id)
	if err != nil {
		return nil, err
	}
	data, err := r.files.Read(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Erase removes the note file. Erasing a missing note is not an error:
// several events may reference one note and the reference may already be
// gone.
func (r *Repo) Erase(id string) error {
	p, err := notePath(id)
	if err != nil {
		return err
	}
	if !r.files.Exists(p) {
		return nil
	}
	return r.files.Delete(p)
}

// Duplicate registers another use of the note and returns the identifier
// the copy should carry. Notes are content-addressed, so the duplicate
// shares the original file; the returned identifier equals id.
func (r *Repo) Duplicate(id string) (string, error) {
	p, err := notePath(id)
	if err != nil {
		return "", err
	}
	if !r.files.Exists(p) {
		return "", apperr.ErrNotFound
	}
	return id, nil
}

// Exists reports whether a note with the given identifier is stored.
func (r *Repo) Exists(id string) bool {
	p, err := notePath(id)
	if err != nil {
		return false
	}
	return r.files.Exists(p)
}
