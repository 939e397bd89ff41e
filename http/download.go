package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fwojciec/fetchfilter"
)

// DefaultChunkSize is the number of bytes written per chunk. The
// cancellation token is checked before each chunk.
const DefaultChunkSize = 1024

// DefaultReadTimeout is how long a download may go without receiving data.
const DefaultReadTimeout = 60 * time.Second

// Ensure Downloader implements fetchfilter.Downloader at compile time.
var _ fetchfilter.Downloader = (*Downloader)(nil)

// Downloader streams remote files to a local directory in fixed-size chunks.
type Downloader struct {
	client      *http.Client
	chunkSize   int
	readTimeout time.Duration
	partial     fetchfilter.PartialPolicy
}

// WithChunkSize sets the chunk size in bytes.
// Defaults to DefaultChunkSize if not specified.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithReadTimeout sets how long a download may stall before it is aborted.
// Zero disables the idle timeout.
func WithReadTimeout(d time.Duration) Option {
	return func(o *options) {
		o.readTimeout = d
	}
}

// WithPartialPolicy sets what happens to incomplete files.
// Defaults to fetchfilter.PartialKeep.
func WithPartialPolicy(p fetchfilter.PartialPolicy) Option {
	return func(o *options) {
		o.partial = p
	}
}

// NewDownloader creates a new Downloader.
func NewDownloader(opts ...Option) *Downloader {
	o := newOptions(opts)
	return &Downloader{
		client:      o.client,
		chunkSize:   o.chunkSize,
		readTimeout: o.readTimeout,
		partial:     o.partial,
	}
}

// Download streams url into dir. The file is named after the last URL path
// segment with "%20" rendered as a space.
func (d *Downloader) Download(
	ctx context.Context,
	url, dir string,
	token *fetchfilter.CancelToken,
	progress fetchfilter.ProgressFunc,
) (*fetchfilter.DownloadedFile, error) {
	if token.Canceled() {
		return nil, fetchfilter.Errorf(fetchfilter.ECANCELED, "download of %s canceled", url)
	}

	name := fetchfilter.FileName(url)
	if name == "" {
		return nil, fetchfilter.Errorf(fetchfilter.EINVALID, "no file name in %q", url)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fetchfilter.Wrapf(err, fetchfilter.EDIRECTORY, "failed to create %s", dir)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fetchfilter.Wrapf(err, fetchfilter.EDIRECTORY, "failed to resolve %s", dir)
	}
	path := filepath.Join(absDir, name)

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	idle := newIdleTimer(d.readTimeout, cancel)
	defer idle.stop()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fetchfilter.Wrapf(err, fetchfilter.EFETCH, "invalid URL %q", url)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, d.transportError(parent, idle, url, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, fetchfilter.Errorf(fetchfilter.EFETCH, "HTTP %d for %s", resp.StatusCode, url)
	}
	total := max(resp.ContentLength, 0)

	f, err := os.Create(path)
	if err != nil {
		return nil, fetchfilter.Wrapf(err, fetchfilter.EIO, "failed to create %s", path)
	}

	written, err := d.copyChunks(f, resp.Body, idle, token, func(n int64) {
		if progress != nil {
			progress(fetchfilter.Progress{Label: name, Current: n, Total: total})
		}
	})
	if err != nil {
		_ = f.Close()
		d.discardPartial(path)
		if fetchfilter.ErrorCode(err) == fetchfilter.ECANCELED || fetchfilter.ErrorCode(err) == fetchfilter.EIO {
			return nil, err
		}
		return nil, d.transportError(parent, idle, url, err)
	}

	if total > 0 && written != total {
		_ = f.Close()
		d.discardPartial(path)
		return nil, fetchfilter.Errorf(fetchfilter.EFETCH, "truncated response from %s: got %d of %d bytes", url, written, total)
	}

	if err := f.Close(); err != nil {
		d.discardPartial(path)
		return nil, fetchfilter.Wrapf(err, fetchfilter.EIO, "failed to write %s", path)
	}

	if written == 0 && progress != nil {
		progress(fetchfilter.Progress{Label: name, Current: 0, Total: total})
	}

	return &fetchfilter.DownloadedFile{
		URL:  url,
		Name: name,
		Path: path,
		Size: written,
	}, nil
}

// copyChunks copies src to dst one chunk at a time, checking the token
// before each write. Read errors are returned unwrapped.
func (d *Downloader) copyChunks(
	dst io.Writer,
	src io.Reader,
	idle *idleTimer,
	token *fetchfilter.CancelToken,
	report func(written int64),
) (int64, error) {
	buf := make([]byte, d.chunkSize)
	var written int64
	for {
		n, rerr := readChunk(src, buf)
		if n > 0 {
			if token.Canceled() {
				return written, fetchfilter.Errorf(fetchfilter.ECANCELED, "download canceled after %d bytes", written)
			}
			if _, err := dst.Write(buf[:n]); err != nil {
				return written, fetchfilter.Wrapf(err, fetchfilter.EIO, "write failed after %d bytes", written)
			}
			written += int64(n)
			idle.reset()
			report(written)
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

// readChunk fills buf from src. Unlike io.ReadFull it keeps a clean io.EOF
// apart from a body that broke off, which net/http reports as
// io.ErrUnexpectedEOF.
func readChunk(src io.Reader, buf []byte) (int, error) {
	var n int
	for n < len(buf) {
		m, err := src.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// transportError classifies a failed request or body read.
func (d *Downloader) transportError(parent context.Context, idle *idleTimer, url string, err error) error {
	if parent.Err() != nil {
		return fetchfilter.Wrapf(parent.Err(), fetchfilter.ECANCELED, "download of %s canceled", url)
	}
	if idle.fired() {
		return fetchfilter.Wrapf(err, fetchfilter.EFETCH, "no data from %s for %s", url, d.readTimeout)
	}
	var e *fetchfilter.Error
	if errors.As(err, &e) {
		return err
	}
	return fetchfilter.Wrapf(err, fetchfilter.EFETCH, "GET %s failed", url)
}

func (d *Downloader) discardPartial(path string) {
	switch d.partial {
	case fetchfilter.PartialRemove:
		_ = os.Remove(path)
	case fetchfilter.PartialRename:
		_ = os.Rename(path, path+fetchfilter.PartialSuffix)
	}
}

// idleTimer cancels a transfer when no data arrives within the timeout.
// A zero timeout disables it.
type idleTimer struct {
	timeout time.Duration
	timer   *time.Timer
	expired atomic.Bool
}

func newIdleTimer(timeout time.Duration, cancel context.CancelFunc) *idleTimer {
	t := &idleTimer{timeout: timeout}
	if timeout > 0 {
		t.timer = time.AfterFunc(timeout, func() {
			t.expired.Store(true)
			cancel()
		})
	}
	return t
}

func (t *idleTimer) reset() {
	if t.timer != nil {
		t.timer.Reset(t.timeout)
	}
}

func (t *idleTimer) stop() {
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *idleTimer) fired() bool {
	return t.expired.Load()
}
