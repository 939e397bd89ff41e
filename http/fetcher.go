package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/fetchfilter"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout bounds the whole index page request.
const DefaultFetchTimeout = 30 * time.Second

// Ensure Fetcher implements fetchfilter.Fetcher at compile time.
var _ fetchfilter.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves index pages over HTTP and decodes them to UTF-8 using
// the charset declared by the server or the document.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a Fetcher or a Downloader. Options that do not apply to
// the component being built are ignored.
type Option func(*options)

type options struct {
	client      *http.Client
	timeout     time.Duration
	chunkSize   int
	readTimeout time.Duration
	partial     fetchfilter.PartialPolicy
}

// WithClient sets the HTTP client. Use NewClient to build one with a proxy
// or a custom user agent.
func WithClient(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithTimeout sets the timeout for fetching an index page.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		timeout:     DefaultFetchTimeout,
		chunkSize:   DefaultChunkSize,
		readTimeout: DefaultReadTimeout,
		partial:     fetchfilter.PartialKeep,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.client == nil {
		// The default config never yields an error.
		o.client, _ = NewClient(ClientConfig{Timeout: o.timeout})
	}
	return o
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	o := newOptions(opts)
	return &Fetcher{
		client:  o.client,
		timeout: o.timeout,
	}
}

// Fetch retrieves the page at url and returns it as UTF-8 text.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fetchfilter.Wrapf(err, fetchfilter.EFETCH, "invalid URL %q", url)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fetchfilter.Wrapf(err, fetchfilter.EFETCH, "GET %s failed", url)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return "", fetchfilter.Errorf(fetchfilter.EFETCH, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fetchfilter.Wrapf(err, fetchfilter.EFETCH, "failed to decode %s", url)
	}

	html, err := io.ReadAll(body)
	if err != nil {
		return "", fetchfilter.Wrapf(err, fetchfilter.EFETCH, "failed to read %s", url)
	}

	return string(html), nil
}
