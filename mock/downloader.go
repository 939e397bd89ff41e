package mock

import (
	"context"

	"github.com/fwojciec/fetchfilter"
)

var _ fetchfilter.Downloader = (*Downloader)(nil)

// Downloader is a mock implementation of fetchfilter.Downloader.
type Downloader struct {
	DownloadFn func(ctx context.Context, url, dir string, token *fetchfilter.CancelToken, progress fetchfilter.ProgressFunc) (*fetchfilter.DownloadedFile, error)
}

func (d *Downloader) Download(ctx context.Context, url, dir string, token *fetchfilter.CancelToken, progress fetchfilter.ProgressFunc) (*fetchfilter.DownloadedFile, error) {
	return d.DownloadFn(ctx, url, dir, token, progress)
}

var _ fetchfilter.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of fetchfilter.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, host string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, host string) error {
	return l.WaitFn(ctx, host)
}

var _ fetchfilter.URLPolicy = (*URLPolicy)(nil)

// URLPolicy is a mock implementation of fetchfilter.URLPolicy.
type URLPolicy struct {
	AllowedFn func(ctx context.Context, url string) (bool, error)
}

func (p *URLPolicy) Allowed(ctx context.Context, url string) (bool, error) {
	return p.AllowedFn(ctx, url)
}

var _ fetchfilter.DuplicateSet = (*DuplicateSet)(nil)

// DuplicateSet is a mock implementation of fetchfilter.DuplicateSet.
type DuplicateSet struct {
	SeenBeforeFn func(url string) bool
}

func (s *DuplicateSet) SeenBefore(url string) bool {
	return s.SeenBeforeFn(url)
}
