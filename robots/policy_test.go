package robots_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/fetchfilter"
	"github.com/fwojciec/fetchfilter/robots"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_Allowed(t *testing.T) {
	t.Parallel()

	t.Run("applies disallow rules and caches robots.txt per host", func(t *testing.T) {
		t.Parallel()

		var fetches atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/robots.txt" {
				fetches.Add(1)
				w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
				return
			}
			http.NotFound(w, r)
		}))
		defer srv.Close()

		p := robots.NewPolicy(srv.Client(), "fetchfilter")

		ok, err := p.Allowed(context.Background(), srv.URL+"/pub/a.zip")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = p.Allowed(context.Background(), srv.URL+"/private/b.zip")
		require.NoError(t, err)
		assert.False(t, ok)

		assert.Equal(t, int32(1), fetches.Load())
	})

	t.Run("honors agent-specific groups", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("User-agent: fetchfilter\nDisallow: /\n\nUser-agent: *\nAllow: /\n"))
		}))
		defer srv.Close()

		ok, err := robots.NewPolicy(srv.Client(), "fetchfilter").Allowed(context.Background(), srv.URL+"/a.zip")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = robots.NewPolicy(srv.Client(), "otherbot").Allowed(context.Background(), srv.URL+"/a.zip")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing robots.txt allows everything", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		ok, err := robots.NewPolicy(srv.Client(), "fetchfilter").Allowed(context.Background(), srv.URL+"/a.zip")

		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("server error disallows everything", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		ok, err := robots.NewPolicy(srv.Client(), "fetchfilter").Allowed(context.Background(), srv.URL+"/a.zip")

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unreachable host is allowed with an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		p := robots.NewPolicy(nil, "fetchfilter")

		ok, err := p.Allowed(context.Background(), addr+"/a.zip")
		require.Error(t, err)
		assert.True(t, ok)
		assert.Equal(t, fetchfilter.EFETCH, fetchfilter.ErrorCode(err))

		// The failure is cached as allow-all.
		ok, err = p.Allowed(context.Background(), addr+"/b.zip")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects malformed URL", func(t *testing.T) {
		t.Parallel()

		_, err := robots.NewPolicy(nil, "fetchfilter").Allowed(context.Background(), "http://[::1")

		assert.Equal(t, fetchfilter.EINVALID, fetchfilter.ErrorCode(err))
	})
}
