package mock

import (
	"context"

	"github.com/fwojciec/fetchfilter"
)

var _ fetchfilter.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of fetchfilter.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}
