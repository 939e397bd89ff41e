package mock

import (
	"context"

	"github.com/fwojciec/fetchfilter"
)

var _ fetchfilter.Hasher = (*Hasher)(nil)

// Hasher is a mock implementation of fetchfilter.Hasher.
type Hasher struct {
	SumFn       func(ctx context.Context, path string, progress fetchfilter.ProgressFunc) (string, error)
	AlgorithmFn func() fetchfilter.Algorithm
}

func (h *Hasher) Sum(ctx context.Context, path string, progress fetchfilter.ProgressFunc) (string, error) {
	return h.SumFn(ctx, path, progress)
}

func (h *Hasher) Algorithm() fetchfilter.Algorithm {
	return h.AlgorithmFn()
}

var _ fetchfilter.ChecksumStore = (*ChecksumStore)(nil)

// ChecksumStore is a mock implementation of fetchfilter.ChecksumStore.
type ChecksumStore struct {
	LoadFn   func(ctx context.Context) error
	LookupFn func(filename string) (string, bool)
	RecordFn func(ctx context.Context, filename, digest string) error
}

func (s *ChecksumStore) Load(ctx context.Context) error {
	return s.LoadFn(ctx)
}

func (s *ChecksumStore) Lookup(filename string) (string, bool) {
	return s.LookupFn(filename)
}

func (s *ChecksumStore) Record(ctx context.Context, filename, digest string) error {
	return s.RecordFn(ctx, filename, digest)
}
