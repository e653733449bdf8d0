// Package tty provides terminal emulation.
package tty

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Console is a serial console for the machine, adapting a raw Unix
// terminal[^1] to the simulator's input FIFO and output stream: keys typed
// at the console feed read_char, and print writes go straight to the
// terminal.
//
// [1]: See: tty(4), termios(4).
type Console struct {
	in    *os.File
	out   *term.Terminal
	fd    int
	state *term.State
}

// ErrNoTTY is returned if standard input is not a terminal. In this case, interactive console mode
// is not supported.
var ErrNoTTY error = errors.New("console: not a TTY")

// NewConsole creates a Console using the provided streams. If the input stream is not a terminal,
// ErrNoTTY is returned. Callers are responsible for calling [Console.Restore] to return the
// terminal to its initial state.
func NewConsole(sin, sout, serr *os.File) (*Console, error) {
	fd := int(sin.Fd())

	if !term.IsTerminal(fd) {
		return nil, ErrNoTTY
	}

	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTTY, err)
	}

	cons := Console{
		fd:    fd,
		in:    sin,
		out:   term.NewTerminal(sin, ""),
		state: saved,
	}

	if err := cons.setTerminalParams(1, 0); err != nil {
		return nil, err
	}

	return &cons, nil
}

// ReadRune reads a single keystroke from the console, blocking until one
// is available. It implements io.RuneReader so a Console can feed
// read_char directly.
func (c *Console) ReadRune() (rune, int, error) {
	var b [1]byte

	if _, err := c.in.Read(b[:]); err != nil {
		return 0, 0, err
	}

	return rune(b[0]), 1, nil
}

// Writer returns an io.Writer that writes to the terminal, for print's
// output.
func (c *Console) Writer() io.Writer {
	return c.out
}

// Restore returns the terminal to its initial state and unblocks any
// in-progress read.
func (c *Console) Restore() {
	_ = c.in.SetReadDeadline(time.Now())
	_ = term.Restore(c.fd, c.state)
}

func (c *Console) setTerminalParams(vmin, vtime byte) error {
	_ = syscall.SetNonblock(c.fd, false)

	termIO, err := unix.IoctlGetTermios(c.fd, getTermiosIoctl)
	if err != nil {
		return err
	}

	termIO.Cc[unix.VMIN] = vmin
	termIO.Cc[unix.VTIME] = vtime

	if err := unix.IoctlSetTermios(c.fd, setTermiosIoctl, termIO); err != nil {
		return err
	}

	_ = c.in.SetReadDeadline(time.Time{})

	return nil
}
