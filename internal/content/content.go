// Package content defines the interface to external file systems that hold
// paper bytes. The registry itself never stores content, only descriptors
// that name a backend, a location and a digest.
package content

import (
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// HashAlgorithm is the digest algorithm used for all stored content.
const HashAlgorithm = "blake2b"

// ErrNotFound is returned when no object matches a digest.
var ErrNotFound = errors.New("content not found")

// ErrImmutable is returned when a write would change existing content.
var ErrImmutable = errors.New("content is immutable")

// Descriptor locates stored content, mirroring the registry's file fields.
type Descriptor struct {
	FileSystemName string
	PublicLocation string
	HashAlgorithm  string
	Hash           string
}

// Store is a content-addressable file system. Objects are immutable and keyed
// by their blake2b digest.
type Store interface {
	// Put stores data and returns its descriptor. Storing identical bytes
	// twice is a no-op; storing different bytes under a colliding key fails
	// with ErrImmutable.
	Put(data []byte) (Descriptor, error)

	// Get retrieves the bytes for a digest produced by Digest.
	Get(digest string) ([]byte, error)
}

// Digest returns the uppercase hex blake2b-256 digest of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return fmt.Sprintf("%X", sum[:])
}

// ValidDigest reports whether value parses as a blake2b-256 hex digest.
func ValidDigest(value string) bool {
	raw, err := hex.DecodeString(value)
	if err != nil {
		return false
	}
	return len(raw) == blake2b.Size256
}
