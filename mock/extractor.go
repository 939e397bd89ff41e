package mock

import (
	"context"

	"github.com/fwojciec/fetchfilter"
)

var _ fetchfilter.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of fetchfilter.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(ctx context.Context, url string) ([]fetchfilter.Hyperlink, error)
}

func (e *LinkExtractor) ExtractLinks(ctx context.Context, url string) ([]fetchfilter.Hyperlink, error) {
	return e.ExtractLinksFn(ctx, url)
}
