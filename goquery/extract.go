// Package goquery implements fetchfilter.LinkExtractor on top of
// github.com/PuerkitoBio/goquery.
package goquery

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/fetchfilter"
)

// Ensure LinkExtractor implements fetchfilter.LinkExtractor at compile time.
var _ fetchfilter.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor fetches a page and returns its anchors.
type LinkExtractor struct {
	fetcher     fetchfilter.Fetcher
	requireText bool
}

// Option configures a LinkExtractor.
type Option func(*LinkExtractor)

// WithRequireText drops anchors that have no visible text.
// By default every anchor with an href attribute is returned.
func WithRequireText(require bool) Option {
	return func(e *LinkExtractor) {
		e.requireText = require
	}
}

// NewLinkExtractor creates a LinkExtractor that retrieves pages through fetcher.
func NewLinkExtractor(fetcher fetchfilter.Fetcher, opts ...Option) *LinkExtractor {
	e := &LinkExtractor{fetcher: fetcher}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractLinks fetches url and returns its hyperlinks in document order.
func (e *LinkExtractor) ExtractLinks(ctx context.Context, url string) ([]fetchfilter.Hyperlink, error) {
	html, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseLinks(html, e.requireText)
}

// ParseLinks returns the href and visible text of every a[href] element in
// document order. Hrefs are returned exactly as written; duplicates are kept.
func ParseLinks(html string, requireText bool) ([]fetchfilter.Hyperlink, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fetchfilter.Wrapf(err, fetchfilter.EPARSE, "failed to parse HTML")
	}

	var links []fetchfilter.Hyperlink
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		link := fetchfilter.Hyperlink{
			Href: href,
			Text: strings.TrimSpace(sel.Text()),
		}
		if requireText && !link.HasText() {
			return
		}
		links = append(links, link)
	})

	return links, nil
}
