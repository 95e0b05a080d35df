package stream

import (
	"context"
	"io"
	"sync"
)

// DefaultRxBufferSize matches the receive buffer of small UARTs.
const DefaultRxBufferSize = 64

// RxBuffer is a bounded FIFO of received bytes. Bytes pushed while it is
// full are dropped and counted.
type RxBuffer struct {
	buf     []byte
	head    int
	count   int
	dropped int
	err     error
	lock    sync.Mutex
	readyCh chan struct{}
}

// NewRxBuffer creates a RxBuffer holding up to size bytes.
func NewRxBuffer(size int) *RxBuffer {
	if size <= 0 {
		size = DefaultRxBufferSize
	}
	return &RxBuffer{buf: make([]byte, size), readyCh: make(chan struct{}, 1)}
}

// Push appends received bytes and returns how many were dropped.
func (r *RxBuffer) Push(p []byte) (dropped int) {
	r.lock.Lock()
	for _, b := range p {
		if r.count == len(r.buf) {
			dropped++
			continue
		}
		r.buf[(r.head+r.count)%len(r.buf)] = b
		r.count++
	}
	r.dropped += dropped
	r.lock.Unlock()
	r.notify()
	return
}

// CloseWithError marks the end of input. Buffered bytes can still be read.
func (r *RxBuffer) CloseWithError(err error) {
	if err == nil {
		err = io.EOF
	}
	r.lock.Lock()
	if r.err == nil {
		r.err = err
	}
	r.lock.Unlock()
	r.notify()
}

// Available implements hal.Transport.
func (r *RxBuffer) Available() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.count
}

// Dropped returns the number of bytes lost to a full buffer.
func (r *RxBuffer) Dropped() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.dropped
}

// ReadByte implements io.ByteReader.
func (r *RxBuffer) ReadByte() (byte, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.count == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.ErrNoProgress
	}
	b := r.buf[r.head]
	r.head = (r.head + 1) % len(r.buf)
	r.count--
	return b, nil
}

// Wait implements hal.Waiter.
func (r *RxBuffer) Wait(ctx context.Context) error {
	for {
		r.lock.Lock()
		count, err := r.count, r.err
		r.lock.Unlock()
		if count > 0 {
			return nil
		}
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.readyCh:
		}
	}
}

func (r *RxBuffer) notify() {
	select {
	case r.readyCh <- struct{}{}:
	default:
	}
}
