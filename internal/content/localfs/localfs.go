// Package localfs is a filesystem-backed content store.
//
// Objects are stored immutably and keyed strictly by digest. Writes are
// offline and deterministic: the same bytes always land at the same path.
package localfs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/smartpublish/registry/internal/content"
)

// FileSystemName identifies this backend in file descriptors.
const FileSystemName = "localfs"

// Store is a local filesystem content store rooted at one directory.
type Store struct {
	root string
}

// New constructs a store rooted at root, creating the directory if needed.
func New(root string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

// Put stores data keyed by its digest. Re-storing identical bytes succeeds;
// a digest collision with different bytes fails with ErrImmutable.
func (s *Store) Put(data []byte) (content.Descriptor, error) {
	digest := content.Digest(data)
	path := s.pathFor(digest)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return content.Descriptor{}, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if err != nil {
		if os.IsExist(err) {
			existing, rerr := os.ReadFile(path)
			if rerr != nil || !bytes.Equal(existing, data) {
				return content.Descriptor{}, content.ErrImmutable
			}
			return s.descriptor(digest, path), nil
		}
		return content.Descriptor{}, err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return content.Descriptor{}, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return content.Descriptor{}, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return content.Descriptor{}, err
	}

	return s.descriptor(digest, path), nil
}

// Get retrieves and verifies the bytes for a digest.
func (s *Store) Get(digest string) ([]byte, error) {
	if !content.ValidDigest(digest) {
		return nil, content.ErrNotFound
	}
	data, err := os.ReadFile(s.pathFor(digest))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, content.ErrNotFound
		}
		return nil, err
	}
	if content.Digest(data) != strings.ToUpper(digest) {
		return nil, content.ErrImmutable
	}
	return data, nil
}

func (s *Store) descriptor(digest, path string) content.Descriptor {
	return content.Descriptor{
		FileSystemName: FileSystemName,
		PublicLocation: "file://" + path,
		HashAlgorithm:  content.HashAlgorithm,
		Hash:           digest,
	}
}

// pathFor shards objects by digest prefix to keep directories small.
func (s *Store) pathFor(digest string) string {
	digest = strings.ToUpper(digest)
	return filepath.Join(s.root, digest[:2], digest)
}
