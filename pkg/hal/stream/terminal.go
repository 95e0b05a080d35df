package stream

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

// Keys ending a raw terminal session, as signals are disabled in raw mode.
const (
	CtrlC byte = 0x03
	CtrlD byte = 0x04
)

// Terminal is stdin/stdout switched to raw mode, so keystrokes arrive one
// at a time and echo is left to the console. Ctrl-C or Ctrl-D end input.
type Terminal struct {
	io.Writer

	in    io.Reader
	fd    int
	state *term.State
	eof   bool
}

// OpenTerminal switches stdin to raw mode when it is a terminal.
func OpenTerminal() (*Terminal, error) {
	t := &Terminal{Writer: os.Stdout, in: os.Stdin, fd: int(os.Stdin.Fd())}
	if !term.IsTerminal(t.fd) {
		return t, nil
	}
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return nil, errors.Wrap(err, "set raw terminal")
	}
	t.state = state
	return t, nil
}

// Read implements io.Reader.
func (t *Terminal) Read(p []byte) (int, error) {
	if t.eof {
		return 0, io.EOF
	}
	n, err := t.in.Read(p)
	if t.state == nil {
		return n, err
	}
	if pos := bytes.IndexAny(p[:n], string([]byte{CtrlC, CtrlD})); pos >= 0 {
		t.eof = true
		return pos, io.EOF
	}
	return n, err
}

// Close restores the terminal.
func (t *Terminal) Close() error {
	if t.state == nil {
		return nil
	}
	err := term.Restore(t.fd, t.state)
	t.state = nil
	return errors.Wrap(err, "restore terminal")
}
