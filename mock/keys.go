package mock

import "github.com/fwojciec/fetchfilter"

var _ fetchfilter.KeySource = (*KeySource)(nil)

// KeySource is a mock implementation of fetchfilter.KeySource.
type KeySource struct {
	ReadKeyFn func() (rune, error)
}

func (k *KeySource) ReadKey() (rune, error) {
	return k.ReadKeyFn()
}
