package fetchfilter

import "sync"

// CancelToken is a one-shot cancellation signal. It starts unset and can
// only ever move to set. The zero value is not usable; call NewCancelToken.
type CancelToken struct {
	once sync.Once
	done chan struct{}
}

// NewCancelToken returns an unset token.
func NewCancelToken() *CancelToken {
	return &CancelToken{done: make(chan struct{})}
}

// Cancel sets the token. Calls after the first are no-ops.
func (t *CancelToken) Cancel() {
	t.once.Do(func() { close(t.done) })
}

// Canceled reports whether Cancel has been called. It never blocks.
func (t *CancelToken) Canceled() bool {
	if t == nil {
		return false
	}
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed once the token is set. A nil token
// returns a nil channel, which never becomes ready.
func (t *CancelToken) Done() <-chan struct{} {
	if t == nil {
		return nil
	}
	return t.done
}

// KeySource delivers user keystrokes to the cancellation monitor.
type KeySource interface {
	// ReadKey blocks until a key is available. io.EOF means no more input
	// will ever arrive.
	ReadKey() (rune, error)
}
