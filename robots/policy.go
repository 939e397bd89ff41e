// Package robots implements fetchfilter.URLPolicy using robots.txt rules.
package robots

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/fwojciec/fetchfilter"
	"github.com/temoto/robotstxt"
)

var _ fetchfilter.URLPolicy = (*Policy)(nil)

// Policy checks URLs against the robots.txt of their host. Each host's
// rules are fetched once and cached for the lifetime of the Policy.
type Policy struct {
	client *http.Client
	agent  string

	mu    sync.Mutex
	hosts map[string]*robotstxt.RobotsData
}

// NewPolicy creates a Policy that fetches robots.txt with client and tests
// rules for agent.
func NewPolicy(client *http.Client, agent string) *Policy {
	if client == nil {
		client = http.DefaultClient
	}
	return &Policy{
		client: client,
		agent:  agent,
		hosts:  make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether agent may fetch rawURL. When robots.txt cannot be
// retrieved the URL is allowed and the EFETCH error is returned alongside.
func (p *Policy) Allowed(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fetchfilter.Wrapf(err, fetchfilter.EINVALID, "invalid URL %q", rawURL)
	}

	rules, err := p.rules(ctx, u)
	if err != nil {
		return true, err
	}
	return rules.TestAgent(u.RequestURI(), p.agent), nil
}

func (p *Policy) rules(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	key := u.Scheme + "://" + u.Host

	p.mu.Lock()
	defer p.mu.Unlock()

	if rules, ok := p.hosts[key]; ok {
		return rules, nil
	}

	rules, err := p.fetch(ctx, key+"/robots.txt")
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		// Allow everything on this host from now on.
		rules, _ = robotstxt.FromStatusAndBytes(http.StatusNotFound, nil)
	}
	p.hosts[key] = rules
	return rules, err
}

func (p *Policy) fetch(ctx context.Context, robotsURL string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fetchfilter.Wrapf(err, fetchfilter.EFETCH, "invalid robots URL %q", robotsURL)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fetchfilter.Wrapf(err, fetchfilter.EFETCH, "GET %s failed", robotsURL)
	}
	defer resp.Body.Close()

	// FromResponse treats 4xx as allow-all and 5xx as disallow-all.
	rules, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fetchfilter.Wrapf(err, fetchfilter.EPARSE, "failed to parse %s", robotsURL)
	}
	return rules, nil
}
