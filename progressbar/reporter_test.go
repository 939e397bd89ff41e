package progressbar_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/fetchfilter"
	"github.com/fwojciec/fetchfilter/progressbar"
	"github.com/stretchr/testify/assert"
)

// syncBuffer guards a bytes.Buffer shared with the bar's renderer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestReporter_Report(t *testing.T) {
	t.Parallel()

	t.Run("renders a labelled bar up to completion", func(t *testing.T) {
		t.Parallel()

		var out syncBuffer
		r := progressbar.NewReporter(&out, progressbar.WithThrottle(0))

		for _, n := range []int64{1024, 2048, 2500} {
			r.Report(fetchfilter.Progress{Label: "r.zip", Current: n, Total: 2500})
		}

		got := out.String()
		assert.Contains(t, got, "r.zip")
		assert.Contains(t, got, "100%")
		assert.True(t, strings.HasSuffix(got, "\n"))
	})

	t.Run("starts a new bar when the label changes", func(t *testing.T) {
		t.Parallel()

		var out syncBuffer
		r := progressbar.NewReporter(&out, progressbar.WithThrottle(0))

		r.Report(fetchfilter.Progress{Label: "a.zip", Current: 10, Total: 100})
		r.Report(fetchfilter.Progress{Label: "b.iso", Current: 10, Total: 100})
		r.Finish()

		got := out.String()
		assert.Contains(t, got, "a.zip")
		assert.Contains(t, got, "b.iso")
	})

	t.Run("hashing after a finished download gets its own bar", func(t *testing.T) {
		t.Parallel()

		var out syncBuffer
		r := progressbar.NewReporter(&out, progressbar.WithThrottle(0))

		r.Report(fetchfilter.Progress{Label: "r.zip", Current: 25, Total: 25})
		r.Report(fetchfilter.Progress{Label: "r.zip", Current: 10, Total: 25})
		r.Report(fetchfilter.Progress{Label: "r.zip", Current: 25, Total: 25})

		assert.GreaterOrEqual(t, strings.Count(out.String(), "\n"), 2)
	})

	t.Run("unknown total renders without panicking and finishes cleanly", func(t *testing.T) {
		t.Parallel()

		var out syncBuffer
		r := progressbar.NewReporter(&out, progressbar.WithThrottle(0), progressbar.WithWidth(10))

		r.Report(fetchfilter.Progress{Label: "stream.bin", Current: 4096})
		r.Report(fetchfilter.Progress{Label: "stream.bin", Current: 8192})
		r.Finish()
		r.Finish()

		assert.Contains(t, out.String(), "stream.bin")
	})
}
