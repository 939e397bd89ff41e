// Package bloom provides download URL deduplication using Bloom filters.
package bloom

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/fetchfilter"
)

// Sizing used when the number of URLs is not known up front.
const (
	DefaultCapacity          = 10000
	DefaultFalsePositiveRate = 0.001
)

// Ensure Filter implements fetchfilter.DuplicateSet at compile time.
var _ fetchfilter.DuplicateSet = (*Filter)(nil)

// Filter remembers URLs in a Bloom filter. It is safe for concurrent use.
type Filter struct {
	mu sync.Mutex
	f  *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected URLs
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// SeenBefore adds url to the filter and reports whether it might already
// have been present.
func (f *Filter) SeenBefore(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.f.TestAndAddString(url)
}

// EstimatedCount returns the approximate number of URLs in the filter.
func (f *Filter) EstimatedCount() uint {
	f.mu.Lock()
	defer f.mu.Unlock()

	return uint(f.f.ApproximatedSize())
}
