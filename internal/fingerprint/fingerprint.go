// Package fingerprint computes content-addressed digests of events and notes.
package fingerprint

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// HexLen is the length of a full hex-encoded digest.
const HexLen = sha1.Size * 2

// Sum returns the hex-encoded SHA-1 digest of data.
func Sum(data []byte) string {
	h := sha1.Sum(data)
	return hex.EncodeToString(h[:])
}

// Matches reports whether digest is selected by pattern. A pattern matches
// by prefix, so an abbreviated fingerprint selects an event the same way an
// abbreviated VCS hash selects a commit. An empty pattern matches nothing.
func Matches(pattern, digest string) bool {
	return pattern != "" && strings.HasPrefix(digest, pattern)
}

// Valid reports whether s is a plausible fingerprint or fingerprint prefix:
// non-empty, at most HexLen characters, lowercase hex only.
func Valid(s string) bool {
	if s == "" || len(s) > HexLen {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
