// Package fs provides file-based persistence for fetchfilter.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/fetchfilter"
)

// DefaultChecksumFile is the store path used when none is configured.
const DefaultChecksumFile = "checksums.json"

// Ensure ChecksumStore implements fetchfilter.ChecksumStore at compile time.
var _ fetchfilter.ChecksumStore = (*ChecksumStore)(nil)

// ChecksumStore keeps the filename to digest mapping in a JSON object on
// disk. Every Record rewrites the whole file through a temporary file in the
// same directory followed by a rename, so readers only ever see a complete
// document.
type ChecksumStore struct {
	path string

	mu      sync.Mutex
	entries map[string]string
}

// NewChecksumStore creates a ChecksumStore backed by the file at path.
func NewChecksumStore(path string) *ChecksumStore {
	return &ChecksumStore{
		path:    path,
		entries: make(map[string]string),
	}
}

// Path returns the backing file path.
func (s *ChecksumStore) Path() string {
	return s.path
}

// Load reads the store from disk. A missing file leaves the store empty.
func (s *ChecksumStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]string)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil
	} else if err != nil {
		return fetchfilter.Wrapf(err, fetchfilter.EPERSIST, "failed to read %s", s.path)
	}

	entries := make(map[string]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		return fetchfilter.Wrapf(err, fetchfilter.EPERSIST, "malformed checksum store %s", s.path)
	}
	// A literal null decodes without error but leaves no map.
	if entries == nil {
		return fetchfilter.Errorf(fetchfilter.EPERSIST, "checksum store %s is not a JSON object", s.path)
	}
	s.entries = entries
	return nil
}

// Lookup returns the recorded digest for filename.
func (s *ChecksumStore) Lookup(filename string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	digest, ok := s.entries[filename]
	return digest, ok
}

// Entries returns a copy of the mapping.
func (s *ChecksumStore) Entries() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// Record sets the digest for filename and rewrites the store.
func (s *ChecksumStore) Record(ctx context.Context, filename, digest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[filename] = digest

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fetchfilter.Wrapf(err, fetchfilter.EPERSIST, "failed to encode checksum store")
	}
	data = append(data, '\n')

	if err := writeFileAtomic(s.path, data); err != nil {
		return fetchfilter.Wrapf(err, fetchfilter.EPERSIST, "failed to write %s", s.path)
	}
	return nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it over path.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
