package goquery_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/fetchfilter"
	"github.com/fwojciec/fetchfilter/goquery"
	"github.com/fwojciec/fetchfilter/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>Index of /a</title></head>
<body>
<h1>Index of /a</h1>
<pre>
<a href="../">Parent Directory</a>
<a href="f1.zip">f1.zip</a>
<a href="Some%20Game.iso">Some Game.iso</a>
<a href="f1.zip">f1.zip (mirror)</a>
<a href="hidden.bin"><img src="icon.png"></a>
<a>no href</a>
<a href="">empty</a>
</pre>
</body>
</html>`

func TestParseLinks(t *testing.T) {
	t.Parallel()

	t.Run("returns hrefs in document order with duplicates", func(t *testing.T) {
		t.Parallel()

		links, err := goquery.ParseLinks(indexHTML, false)

		require.NoError(t, err)
		hrefs := make([]string, len(links))
		for i, l := range links {
			hrefs[i] = l.Href
		}
		assert.Equal(t, []string{"../", "f1.zip", "Some%20Game.iso", "f1.zip", "hidden.bin", ""}, hrefs)
	})

	t.Run("captures trimmed anchor text", func(t *testing.T) {
		t.Parallel()

		links, err := goquery.ParseLinks(`<a href="x.zip">
			  X archive
		</a>`, false)

		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, "X archive", links[0].Text)
	})

	t.Run("drops anchors without visible text when required", func(t *testing.T) {
		t.Parallel()

		links, err := goquery.ParseLinks(indexHTML, true)

		require.NoError(t, err)
		for _, l := range links {
			assert.NotEqual(t, "hidden.bin", l.Href)
			assert.True(t, l.HasText())
		}
		assert.Len(t, links, 5)
	})

	t.Run("returns no links for a page without anchors", func(t *testing.T) {
		t.Parallel()

		links, err := goquery.ParseLinks("<html><body><p>nothing</p></body></html>", false)

		require.NoError(t, err)
		assert.Empty(t, links)
	})
}

func TestLinkExtractor_ExtractLinks(t *testing.T) {
	t.Parallel()

	t.Run("parses markup returned by the fetcher", func(t *testing.T) {
		t.Parallel()

		var fetched string
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				fetched = url
				return `<a href="r.zip">r</a><a href="s.zip"></a>`, nil
			},
		}

		extractor := goquery.NewLinkExtractor(fetcher)
		links, err := extractor.ExtractLinks(context.Background(), "http://x/a")

		require.NoError(t, err)
		assert.Equal(t, "http://x/a", fetched)
		assert.Equal(t, []fetchfilter.Hyperlink{
			{Href: "r.zip", Text: "r"},
			{Href: "s.zip"},
		}, links)
	})

	t.Run("honors WithRequireText", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				return `<a href="r.zip">r</a><a href="s.zip"></a>`, nil
			},
		}

		extractor := goquery.NewLinkExtractor(fetcher, goquery.WithRequireText(true))
		links, err := extractor.ExtractLinks(context.Background(), "http://x/a")

		require.NoError(t, err)
		assert.Equal(t, []fetchfilter.Hyperlink{{Href: "r.zip", Text: "r"}}, links)
	})

	t.Run("propagates fetch errors", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				return "", fetchfilter.Wrapf(errors.New("connection refused"), fetchfilter.EFETCH, "GET failed")
			},
		}

		extractor := goquery.NewLinkExtractor(fetcher)
		_, err := extractor.ExtractLinks(context.Background(), "http://x/a")

		require.Error(t, err)
		assert.Equal(t, fetchfilter.EFETCH, fetchfilter.ErrorCode(err))
	})
}
