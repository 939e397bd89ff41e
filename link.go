package fetchfilter

import (
	"context"
	"strings"
)

// Hyperlink is an anchor's target reference as it appears in the markup.
type Hyperlink struct {
	// Href is the raw href attribute, not resolved against any base.
	Href string

	// Text is the trimmed visible anchor text. Empty means the anchor has
	// no visible text.
	Text string
}

// HasText reports whether the anchor carried visible text.
func (h Hyperlink) HasText() bool {
	return h.Text != ""
}

// Fetcher retrieves the markup of a page.
type Fetcher interface {
	// Fetch returns the page body decoded to UTF-8.
	// Returns EFETCH if the request fails or the status is not a success.
	Fetch(ctx context.Context, url string) (html string, err error)
}

// LinkExtractor scrapes a page for hyperlinks.
type LinkExtractor interface {
	// ExtractLinks returns every hyperlink on the page in document order.
	// Duplicates are preserved.
	ExtractLinks(ctx context.Context, url string) ([]Hyperlink, error)
}

// DefaultExtensions are the file suffixes downloaded when none are configured.
var DefaultExtensions = []string{".zip", ".cue", ".iso", ".bin"}

// LinkFilter selects download targets from a page's hyperlinks.
type LinkFilter struct {
	// Extensions lists allowed suffixes. Matching is case-sensitive.
	Extensions []string

	// Substring must occur somewhere in the raw href.
	Substring string
}

// Match reports whether the raw href ends in an allowed extension and
// contains the required substring.
func (f LinkFilter) Match(href string) bool {
	if !strings.Contains(href, f.Substring) {
		return false
	}
	for _, ext := range f.Extensions {
		if strings.HasSuffix(href, ext) {
			return true
		}
	}
	return false
}

// Apply returns the download URLs for the matching links, in input order.
// Each URL is the base URL without trailing slashes, a "/", and the raw href
// with every literal "%20" rendered as a space.
func (f LinkFilter) Apply(baseURL string, links []Hyperlink) []string {
	base := strings.TrimRight(baseURL, "/")

	urls := make([]string, 0, len(links))
	for _, link := range links {
		if !f.Match(link.Href) {
			continue
		}
		urls = append(urls, base+"/"+strings.ReplaceAll(link.Href, "%20", " "))
	}
	return urls
}

// FileName returns the local file name for a download URL: the final path
// segment with "%20" rendered as a space.
func FileName(rawURL string) string {
	name := rawURL
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.ReplaceAll(name, "%20", " ")
}
