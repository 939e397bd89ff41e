package crawl

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/fetchfilter"
	"golang.org/x/time/rate"
)

var _ fetchfilter.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter paces file requests per mirror host. A non-positive rate
// yields an unlimited limiter that still honours context cancellation.
type DomainLimiter struct {
	limit rate.Limit

	mu    sync.Mutex
	hosts map[string]*rate.Limiter
}

// NewDomainLimiter returns a limiter allowing rps downloads per second to
// each host.
func NewDomainLimiter(rps float64) *DomainLimiter {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &DomainLimiter{limit: limit, hosts: map[string]*rate.Limiter{}}
}

// Wait blocks until host may be contacted again or ctx is done.
func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	return d.forHost(host).Wait(ctx)
}

// forHost returns the bucket for host, creating it on first use. Host names
// are compared case-insensitively.
func (d *DomainLimiter) forHost(host string) *rate.Limiter {
	host = strings.ToLower(host)

	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.hosts[host]
	if !ok {
		l = rate.NewLimiter(d.limit, 1)
		d.hosts[host] = l
	}
	return l
}
