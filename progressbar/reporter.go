// Package progressbar renders fetchfilter progress updates as terminal bars.
package progressbar

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fwojciec/fetchfilter"
	"github.com/schollz/progressbar/v3"
)

// Defaults for NewReporter.
const (
	DefaultWidth    = 40
	DefaultThrottle = 65 * time.Millisecond
)

// Reporter draws one bar per transfer or hash. A new bar starts whenever
// the label or total changes, progress goes backwards, or the previous bar
// completed.
type Reporter struct {
	w        io.Writer
	width    int
	throttle time.Duration

	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	label   string
	total   int64
	current int64
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithWidth sets the bar width in characters.
func WithWidth(n int) Option {
	return func(r *Reporter) {
		if n > 0 {
			r.width = n
		}
	}
}

// WithThrottle sets the minimum time between redraws. Zero redraws on
// every update.
func WithThrottle(d time.Duration) Option {
	return func(r *Reporter) {
		r.throttle = d
	}
}

// NewReporter creates a Reporter writing to w.
func NewReporter(w io.Writer, opts ...Option) *Reporter {
	r := &Reporter{
		w:        w,
		width:    DefaultWidth,
		throttle: DefaultThrottle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report consumes one update. Its signature matches fetchfilter.ProgressFunc.
func (r *Reporter) Report(p fetchfilter.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar == nil || p.Label != r.label || p.Total != r.total || p.Current < r.current {
		r.finish()
		r.bar = r.newBar(p)
		r.label, r.total = p.Label, p.Total
	}
	r.current = p.Current
	_ = r.bar.Set64(p.Current)

	if p.Total > 0 && p.Current >= p.Total {
		r.finish()
	}
}

// Finish completes the current bar, if any, so that other output can be
// written below it.
func (r *Reporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finish()
}

func (r *Reporter) finish() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
	r.bar = nil
	r.label, r.total, r.current = "", 0, 0
}

func (r *Reporter) newBar(p fetchfilter.Progress) *progressbar.ProgressBar {
	max := p.Total
	if max <= 0 {
		max = -1
	}
	return progressbar.NewOptions64(max,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription(p.Label),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(r.width),
		progressbar.OptionThrottle(r.throttle),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(r.w)
		}),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
