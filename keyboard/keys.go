// Package keyboard reads single raw keystrokes from the controlling terminal.
package keyboard

import (
	"github.com/eiannone/keyboard"
	"github.com/fwojciec/fetchfilter"
)

var _ fetchfilter.KeySource = (*KeySource)(nil)

// KeySource puts the terminal in raw mode and yields one rune per key press.
// Esc and Ctrl-C are reported as the quit key.
type KeySource struct {
	quit rune
}

// Open switches the terminal to raw mode. Callers must Close the source to
// restore it.
func Open(quit rune) (*KeySource, error) {
	if err := keyboard.Open(); err != nil {
		return nil, fetchfilter.Wrapf(err, fetchfilter.EIO, "failed to open keyboard")
	}
	return &KeySource{quit: quit}, nil
}

// ReadKey blocks until a key is pressed.
func (k *KeySource) ReadKey() (rune, error) {
	char, key, err := keyboard.GetKey()
	if err != nil {
		return 0, fetchfilter.Wrapf(err, fetchfilter.EIO, "failed to read key")
	}
	return MapKey(char, key, k.quit), nil
}

// Close restores the terminal.
func (k *KeySource) Close() error {
	return keyboard.Close()
}

// MapKey converts a raw key event to the rune the monitor sees.
func MapKey(char rune, key keyboard.Key, quit rune) rune {
	switch key {
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return quit
	case keyboard.KeySpace:
		return ' '
	case keyboard.KeyEnter:
		return '\n'
	}
	return char
}
