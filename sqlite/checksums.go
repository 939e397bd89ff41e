package sqlite

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/fetchfilter"
)

// Compile-time interface verification.
var _ fetchfilter.ChecksumStore = (*ChecksumStore)(nil)

// ChecksumStore implements fetchfilter.ChecksumStore using SQLite.
// Each Record is a single upsert, so the table never holds a half-written
// entry. Rows also carry the run that recorded them.
type ChecksumStore struct {
	db    *DB
	runID string
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]string
}

// NewChecksumStore creates a new ChecksumStore. runID is stored alongside
// every digest recorded through this store.
func NewChecksumStore(db *DB, runID string) *ChecksumStore {
	return &ChecksumStore{
		db:      db,
		runID:   runID,
		now:     time.Now,
		entries: make(map[string]string),
	}
}

// Load reads every recorded digest into memory.
func (s *ChecksumStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]string)

	rows, err := s.db.QueryContext(ctx, `SELECT filename, digest FROM checksums`)
	if err != nil {
		return fetchfilter.Wrapf(err, fetchfilter.EPERSIST, "failed to query checksums")
	}
	defer rows.Close()

	entries := make(map[string]string)
	for rows.Next() {
		var filename, digest string
		if err := rows.Scan(&filename, &digest); err != nil {
			return fetchfilter.Wrapf(err, fetchfilter.EPERSIST, "failed to scan checksum")
		}
		entries[filename] = digest
	}
	if err := rows.Err(); err != nil {
		return fetchfilter.Wrapf(err, fetchfilter.EPERSIST, "failed to read checksums")
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

// Record upserts the digest for filename.
func (s *ChecksumStore) Record(ctx context.Context, filename, digest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[filename] = digest

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checksums (filename, digest, run_id, recorded_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(filename) DO UPDATE SET
			digest = excluded.digest,
			run_id = excluded.run_id,
			recorded_at = excluded.recorded_at
	`, filename, digest, s.runID, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fetchfilter.Wrapf(err, fetchfilter.EPERSIST, "failed to record checksum for %s", filename)
	}
	return nil
}
