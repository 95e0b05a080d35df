// Package stream adapts byte streams (serial ports, terminals, sockets)
// to hal.Transport.
package stream

import (
	"bufio"
	"context"
	"io"

	"github.com/golang/glog"
)

// Port implements hal.Transport over an io.ReadWriter. A background reader
// fills a bounded RxBuffer, output is buffered until Flush.
type Port struct {
	*RxBuffer

	rw io.ReadWriter
	w  *bufio.Writer
}

// NewPort creates a Port with the default receive buffer size.
func NewPort(rw io.ReadWriter) *Port {
	return NewPortSize(rw, DefaultRxBufferSize)
}

// NewPortSize creates a Port with a receive buffer of size bytes.
func NewPortSize(rw io.ReadWriter, size int) *Port {
	return &Port{
		RxBuffer: NewRxBuffer(size),
		rw:       rw,
		w:        bufio.NewWriter(rw),
	}
}

// WriteByte implements io.ByteWriter.
func (p *Port) WriteByte(b byte) error {
	return p.w.WriteByte(b)
}

// Flush implements hal.Flusher.
func (p *Port) Flush() error {
	return p.w.Flush()
}

// Run reads from the stream into the receive buffer until the stream
// fails or ctx is done. A read blocked in the stream doesn't delay the
// return on cancel.
func (p *Port) Run(ctx context.Context) error {
	dataCh, errCh := make(chan []byte), make(chan error, 1)
	go p.readLoop(ctx, dataCh, errCh)
	for {
		select {
		case data := <-dataCh:
			if dropped := p.Push(data); dropped > 0 {
				glog.Warningf("receive buffer full, %d bytes dropped", dropped)
			}
		case err := <-errCh:
			p.CloseWithError(err)
			return err
		case <-ctx.Done():
			p.CloseWithError(ctx.Err())
			return ctx.Err()
		}
	}
}

func (p *Port) readLoop(ctx context.Context, dataCh chan []byte, errCh chan error) {
	buf := make([]byte, 32)
	for {
		n, err := p.rw.Read(buf)
		if n > 0 {
			select {
			case dataCh <- append([]byte(nil), buf[:n]...):
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}

// Close closes the stream if it's an io.Closer.
func (p *Port) Close() error {
	if closer, ok := p.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
