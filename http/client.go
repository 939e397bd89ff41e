// Package http provides net/http based implementations of fetchfilter.Fetcher
// and fetchfilter.Downloader.
package http

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/fetchfilter"
	"golang.org/x/net/proxy"
)

// DefaultTimeout bounds connecting and waiting for response headers.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is sent when no other user agent is configured.
const DefaultUserAgent = "fetchfilter/1.0"

// ClientConfig describes the HTTP client shared by the page fetcher and the
// downloader.
type ClientConfig struct {
	// Timeout bounds dialing, the TLS handshake and the wait for response
	// headers. It deliberately does not bound the body so large files can
	// stream for as long as data keeps arriving.
	Timeout time.Duration

	// Proxy is an optional proxy URL. http, https, socks5 and socks5h
	// schemes are supported.
	Proxy string

	UserAgent string
}

// NewClient builds an http.Client from cfg.
// Returns EINVALID if the proxy URL cannot be used.
func NewClient(cfg ClientConfig) (*http.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	dialer := &net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.TLSHandshakeTimeout = timeout
	transport.ResponseHeaderTimeout = timeout

	if cfg.Proxy != "" {
		if err := configureProxy(transport, dialer, cfg.Proxy); err != nil {
			return nil, err
		}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &http.Client{
		Transport: &userAgentTransport{next: transport, userAgent: userAgent},
	}, nil
}

func configureProxy(transport *http.Transport, dialer *net.Dialer, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fetchfilter.Wrapf(err, fetchfilter.EINVALID, "invalid proxy URL %q", rawURL)
	}

	switch u.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
		return nil
	case "socks5", "socks5h":
		d, err := proxy.FromURL(u, dialer)
		if err != nil {
			return fetchfilter.Wrapf(err, fetchfilter.EINVALID, "invalid proxy URL %q", rawURL)
		}
		transport.Proxy = nil
		if cd, ok := d.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return d.Dial(network, addr)
			}
		}
		return nil
	default:
		return fetchfilter.Errorf(fetchfilter.EINVALID, "unsupported proxy scheme %q", u.Scheme)
	}
}

// userAgentTransport sets the User-Agent header on requests that lack one.
type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.next.RoundTrip(req)
}

// isSuccess reports whether an HTTP status is in the 2xx range.
func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
