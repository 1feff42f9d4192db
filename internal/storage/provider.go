// Package storage defines the data-directory file-system abstraction.
package storage

// Provider is the interface for data-directory file operations. All paths
// are relative to the data root.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Exists reports whether a regular file exists at path.
	Exists(path string) bool
}
