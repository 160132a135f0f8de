// Package terminal switches the controlling terminal in and out of the
// non-canonical, no-echo mode the line editor needs.
package terminal

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

var ErrNotTerminal = errors.New("not a terminal")

// RawMode remembers the attributes a terminal had when it was opened and
// restores them after every Enter.
type RawMode struct {
	fd       int
	original unix.Termios
}

// Open captures the current attributes of fd. It fails with ErrNotTerminal
// when fd is not a tty.
func Open(fd int) (*RawMode, error) {
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	t, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, fmt.Errorf("get terminal attributes: %w", err)
	}
	return &RawMode{fd: fd, original: *t}, nil
}

// Enter disables line buffering and echo. The returned function restores the
// original attributes and must be called on every path out of the caller.
func (r *RawMode) Enter() (restore func(), err error) {
	raw := r.original
	raw.Lflag &^= unix.ICANON | unix.ECHO
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(r.fd, ioctlSetTermios, &raw); err != nil {
		return func() {}, fmt.Errorf("set terminal attributes: %w", err)
	}
	return func() {
		_ = unix.IoctlSetTermios(r.fd, ioctlSetTermios, &r.original)
	}, nil
}

// Nop is used when standard input is not a terminal.
type Nop struct{}

func (Nop) Enter() (func(), error) {
	return func() {}, nil
}
