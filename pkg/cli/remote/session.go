// Package remote drives a console running on another device.
package remote

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/robotalks/pinsh/pkg/console"
)

var (
	// ErrLineTooLong indicates a line doesn't fit the remote line buffer.
	ErrLineTooLong = errors.New("line too long")
	// ErrClosed indicates the session is closed.
	ErrClosed = errors.New("session closed")
)

// DefaultTimeout is the time to wait for a prompt.
const DefaultTimeout = 2 * time.Second

// Session sends lines to a remote console and collects the responses.
type Session struct {
	Timeout time.Duration
	Prompt  string

	rw      io.ReadWriter
	dataCh  chan []byte
	errCh   chan error
	doneCh  chan struct{}
	pending []byte
	err     error
	// owed counts prompts not yet read because a wait timed out.
	owed      int
	closeOnce sync.Once
}

// NewSession wraps a stream connected to a console.
func NewSession(rw io.ReadWriter) *Session {
	s := &Session{
		Timeout: DefaultTimeout,
		Prompt:  console.Prompt,
		rw:      rw,
		dataCh:  make(chan []byte),
		errCh:   make(chan error, 1),
		doneCh:  make(chan struct{}),
	}
	go s.readLoop()
	return s
}

// Sync sends an empty line and discards everything up to the prompt,
// leaving the remote line editor empty.
func (s *Session) Sync(ctx context.Context) error {
	if err := s.catchUp(ctx); err != nil {
		return err
	}
	if _, err := s.rw.Write([]byte{console.CR}); err != nil {
		return err
	}
	_, err := s.awaitPrompt(ctx)
	return err
}

// Exec runs one command line and returns the response lines.
func (s *Session) Exec(ctx context.Context, line string) ([]string, error) {
	if len(line) > console.LineCapacity-1 {
		return nil, ErrLineTooLong
	}
	if err := s.catchUp(ctx); err != nil {
		return nil, err
	}
	if _, err := s.rw.Write([]byte(line + "\r")); err != nil {
		return nil, err
	}
	out, err := s.awaitPrompt(ctx)
	if err != nil {
		return nil, err
	}
	// the first line is the echo.
	pos := bytes.Index(out, []byte("\r\n"))
	if pos < 0 {
		return nil, errors.Errorf("unexpected response %q", out)
	}
	text := strings.TrimSuffix(string(out[pos+2:]), "\r\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\r\n"), nil
}

// Close closes the stream if it's an io.Closer.
func (s *Session) Close() error {
	s.closeOnce.Do(func() { close(s.doneCh) })
	if closer, ok := s.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// catchUp discards the responses of commands which timed out, so the
// next response read belongs to the next command.
func (s *Session) catchUp(ctx context.Context) error {
	for s.owed > 0 {
		if _, err := s.readPrompt(ctx); err != nil {
			return errors.Wrap(err, "waiting for previous command")
		}
		s.owed--
	}
	return nil
}

// awaitPrompt is readPrompt for a line just sent. When the wait is cut
// short, the response is owed and skipped by the next catchUp.
func (s *Session) awaitPrompt(ctx context.Context) ([]byte, error) {
	out, err := s.readPrompt(ctx)
	if err != nil && s.err == nil {
		s.owed++
	}
	return out, err
}

// readPrompt reads until the output ends with CR LF and the prompt,
// returning the output without the prompt.
func (s *Session) readPrompt(ctx context.Context) ([]byte, error) {
	suffix := []byte("\r\n" + s.Prompt)
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		if pos := bytes.Index(s.pending, suffix); pos >= 0 {
			out := s.pending[:pos+2]
			s.pending = s.pending[pos+len(suffix):]
			return out, nil
		}
		if s.err != nil {
			return nil, s.err
		}
		select {
		case data := <-s.dataCh:
			s.pending = append(s.pending, data...)
		case err := <-s.errCh:
			if err == io.EOF {
				err = ErrClosed
			}
			s.err = err
		case <-timer.C:
			return nil, context.DeadlineExceeded
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (s *Session) readLoop() {
	buf := make([]byte, 256)
	for {
		n, err := s.rw.Read(buf)
		if n > 0 {
			select {
			case s.dataCh <- append([]byte(nil), buf[:n]...):
			case <-s.doneCh:
				return
			}
		}
		if err != nil {
			s.errCh <- err
			return
		}
	}
}
