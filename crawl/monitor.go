package crawl

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fwojciec/fetchfilter"
)

// DefaultQuitKey cancels a run when typed into the monitor.
const DefaultQuitKey = 'q'

// Monitor watches a key source and cancels Token when the quit key arrives.
type Monitor struct {
	Keys    fetchfilter.KeySource
	QuitKey rune
	Token   *fetchfilter.CancelToken
}

// Run blocks until the quit key is read, the key source reaches EOF or the
// token is canceled by someone else. Only the quit key cancels the token.
func (m *Monitor) Run() error {
	quit := m.QuitKey
	if quit == 0 {
		quit = DefaultQuitKey
	}
	for !m.Token.Canceled() {
		r, err := m.Keys.ReadKey()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fetchfilter.Wrapf(err, fetchfilter.EIO, "failed to read key")
		}
		if unicode.ToLower(r) == unicode.ToLower(quit) {
			m.Token.Cancel()
			return nil
		}
	}
	return nil
}

var _ fetchfilter.KeySource = (*LineKeySource)(nil)

// LineKeySource reads whole lines. A line holding a single character yields
// that character; any longer line yields utf8.RuneError so that words that
// merely start with the quit key never match it. Blank lines are skipped.
type LineKeySource struct {
	scanner *bufio.Scanner
}

// NewLineKeySource creates a LineKeySource reading from r.
func NewLineKeySource(r io.Reader) *LineKeySource {
	return &LineKeySource{scanner: bufio.NewScanner(r)}
}

// ReadKey blocks until a non-blank line is read. Returns io.EOF when r is
// exhausted.
func (s *LineKeySource) ReadKey() (rune, error) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(line)
		if size != len(line) {
			return utf8.RuneError, nil
		}
		return r, nil
	}
	if err := s.scanner.Err(); err != nil {
		return 0, err
	}
	return 0, io.EOF
}
