package fetchfilter_test

import (
	"sync"
	"testing"

	"github.com/fwojciec/fetchfilter"
	"github.com/stretchr/testify/assert"
)

func TestCancelToken(t *testing.T) {
	t.Parallel()

	t.Run("starts unset", func(t *testing.T) {
		t.Parallel()

		token := fetchfilter.NewCancelToken()

		assert.False(t, token.Canceled())
		select {
		case <-token.Done():
			t.Fatal("done channel should not be closed")
		default:
		}
	})

	t.Run("cancel sets the token and closes done", func(t *testing.T) {
		t.Parallel()

		token := fetchfilter.NewCancelToken()
		token.Cancel()

		assert.True(t, token.Canceled())
		<-token.Done()
	})

	t.Run("concurrent cancels are safe", func(t *testing.T) {
		t.Parallel()

		token := fetchfilter.NewCancelToken()
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				token.Cancel()
			}()
		}
		wg.Wait()

		assert.True(t, token.Canceled())
	})

	t.Run("nil token is never canceled", func(t *testing.T) {
		t.Parallel()

		var token *fetchfilter.CancelToken
		assert.False(t, token.Canceled())
		select {
		case <-token.Done():
			t.Fatal("nil token should never be done")
		default:
		}
	})
}
