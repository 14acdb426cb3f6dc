package input

import (
	"fmt"

	"golang.org/x/term"
)

// RawTerminal puts fd into raw mode so Keyboard sees each key as it is
// pressed. The returned function restores the previous state.
func RawTerminal(fd int) (restore func(), err error) {
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("input: fd %d is not a terminal", fd)
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("input: cannot enter raw mode: %w", err)
	}
	return func() { term.Restore(fd, old) }, nil
}
