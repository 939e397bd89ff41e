package crawl_test

import (
	"errors"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fwojciec/fetchfilter"
	"github.com/fwojciec/fetchfilter/crawl"
	"github.com/fwojciec/fetchfilter/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_Run(t *testing.T) {
	t.Parallel()

	t.Run("quit key cancels the token", func(t *testing.T) {
		t.Parallel()

		token := fetchfilter.NewCancelToken()
		m := &crawl.Monitor{
			Keys:  crawl.NewLineKeySource(strings.NewReader("x\nq\n")),
			Token: token,
		}

		require.NoError(t, m.Run())
		assert.True(t, token.Canceled())
	})

	t.Run("quit key is case-insensitive", func(t *testing.T) {
		t.Parallel()

		token := fetchfilter.NewCancelToken()
		m := &crawl.Monitor{
			Keys:    crawl.NewLineKeySource(strings.NewReader("  Q\n")),
			QuitKey: 'q',
			Token:   token,
		}

		require.NoError(t, m.Run())
		assert.True(t, token.Canceled())
	})

	t.Run("end of input returns without cancelling", func(t *testing.T) {
		t.Parallel()

		token := fetchfilter.NewCancelToken()
		m := &crawl.Monitor{
			Keys:  crawl.NewLineKeySource(strings.NewReader("hello\nworld\n")),
			Token: token,
		}

		require.NoError(t, m.Run())
		assert.False(t, token.Canceled())
	})

	t.Run("words starting with the quit key do not cancel", func(t *testing.T) {
		t.Parallel()

		token := fetchfilter.NewCancelToken()
		m := &crawl.Monitor{
			Keys:  crawl.NewLineKeySource(strings.NewReader("quit\nquery\nquick question\n")),
			Token: token,
		}

		require.NoError(t, m.Run())
		assert.False(t, token.Canceled())
	})

	t.Run("custom quit key", func(t *testing.T) {
		t.Parallel()

		token := fetchfilter.NewCancelToken()
		m := &crawl.Monitor{
			Keys:    crawl.NewLineKeySource(strings.NewReader("q\ns\n")),
			QuitKey: 's',
			Token:   token,
		}

		require.NoError(t, m.Run())
		assert.True(t, token.Canceled())
	})

	t.Run("stops reading once token is canceled elsewhere", func(t *testing.T) {
		t.Parallel()

		token := fetchfilter.NewCancelToken()
		var reads int
		m := &crawl.Monitor{
			Keys: &mock.KeySource{
				ReadKeyFn: func() (rune, error) {
					reads++
					token.Cancel()
					return 'x', nil
				},
			},
			Token: token,
		}

		require.NoError(t, m.Run())
		assert.Equal(t, 1, reads)
	})

	t.Run("read errors are returned", func(t *testing.T) {
		t.Parallel()

		m := &crawl.Monitor{
			Keys: &mock.KeySource{
				ReadKeyFn: func() (rune, error) { return 0, errors.New("tty closed") },
			},
			Token: fetchfilter.NewCancelToken(),
		}

		err := m.Run()

		require.Error(t, err)
		assert.Equal(t, fetchfilter.EIO, fetchfilter.ErrorCode(err))
	})
}

func TestLineKeySource_ReadKey(t *testing.T) {
	t.Parallel()

	src := crawl.NewLineKeySource(strings.NewReader("\n   \nquit\n Q \nß\n"))

	r, err := src.ReadKey()
	require.NoError(t, err)
	assert.Equal(t, utf8.RuneError, r)

	r, err = src.ReadKey()
	require.NoError(t, err)
	assert.Equal(t, 'Q', r)

	r, err = src.ReadKey()
	require.NoError(t, err)
	assert.Equal(t, 'ß', r)

	_, err = src.ReadKey()
	assert.ErrorIs(t, err, io.EOF)
}
