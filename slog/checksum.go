package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/fetchfilter"
)

// Ensure LoggingHasher implements fetchfilter.Hasher.
var _ fetchfilter.Hasher = (*LoggingHasher)(nil)

// LoggingHasher wraps a Hasher with debug logging.
type LoggingHasher struct {
	next   fetchfilter.Hasher
	logger *slog.Logger
}

// NewLoggingHasher creates a new LoggingHasher.
func NewLoggingHasher(next fetchfilter.Hasher, logger *slog.Logger) *LoggingHasher {
	return &LoggingHasher{next: next, logger: logger}
}

// Sum delegates to the wrapped hasher and logs the digest.
func (h *LoggingHasher) Sum(ctx context.Context, path string, progress fetchfilter.ProgressFunc) (digest string, err error) {
	defer func(begin time.Time) {
		h.logger.Info("checksum",
			"path", path,
			"algorithm", h.next.Algorithm(),
			"digest", digest,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return h.next.Sum(ctx, path, progress)
}

// Algorithm delegates to the wrapped hasher.
func (h *LoggingHasher) Algorithm() fetchfilter.Algorithm {
	return h.next.Algorithm()
}

// Ensure LoggingChecksumStore implements fetchfilter.ChecksumStore.
var _ fetchfilter.ChecksumStore = (*LoggingChecksumStore)(nil)

// LoggingChecksumStore wraps a ChecksumStore with debug logging.
// Lookups are not logged.
type LoggingChecksumStore struct {
	next   fetchfilter.ChecksumStore
	logger *slog.Logger
}

// NewLoggingChecksumStore creates a new LoggingChecksumStore.
func NewLoggingChecksumStore(next fetchfilter.ChecksumStore, logger *slog.Logger) *LoggingChecksumStore {
	return &LoggingChecksumStore{next: next, logger: logger}
}

// Load delegates to the wrapped store and logs the operation.
func (s *LoggingChecksumStore) Load(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("checksum store load",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Load(ctx)
}

// Lookup delegates to the wrapped store.
func (s *LoggingChecksumStore) Lookup(filename string) (string, bool) {
	return s.next.Lookup(filename)
}

// Record delegates to the wrapped store and logs the operation.
func (s *LoggingChecksumStore) Record(ctx context.Context, filename, digest string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("checksum store record",
			"file", filename,
			"digest", digest,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Record(ctx, filename, digest)
}
