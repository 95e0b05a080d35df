package mqtt

import (
	"bytes"
	"context"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/pinsh/pkg/hal/stream"
)

// Topic suffixes under the device name.
const (
	TopicIn    = "/in"
	TopicOut   = "/out"
	TopicEvent = "/event"
)

// Transport implements hal.Transport over MQTT topics. Payloads on
// DEVICE/in are queued in a bounded receive buffer, output is published
// to DEVICE/out on Flush.
type Transport struct {
	*stream.RxBuffer

	Queue  *Queue
	Device string

	out     bytes.Buffer
	outLock sync.Mutex
}

// NewTransport creates a Transport for a device.
func NewTransport(q *Queue, device string) *Transport {
	return &Transport{
		RxBuffer: stream.NewRxBuffer(stream.DefaultRxBufferSize),
		Queue:    q,
		Device:   device,
	}
}

// WriteByte implements io.ByteWriter.
func (t *Transport) WriteByte(b byte) error {
	t.outLock.Lock()
	defer t.outLock.Unlock()
	return t.out.WriteByte(b)
}

// Flush implements hal.Flusher.
func (t *Transport) Flush() error {
	t.outLock.Lock()
	if t.out.Len() == 0 {
		t.outLock.Unlock()
		return nil
	}
	payload := append([]byte(nil), t.out.Bytes()...)
	t.out.Reset()
	t.outLock.Unlock()
	token := t.Queue.Pub(t.Device+TopicOut, payload)
	token.Wait()
	return token.Error()
}

// Run subscribes to the input topic until ctx is done.
func (t *Transport) Run(ctx context.Context) error {
	token := t.Queue.Sub(t.Device+TopicIn, t.receive)
	token.Wait()
	if err := token.Error(); err != nil {
		t.CloseWithError(err)
		return err
	}
	<-ctx.Done()
	t.CloseWithError(ctx.Err())
	return ctx.Err()
}

func (t *Transport) receive(_ string, payload []byte) {
	if dropped := t.Push(payload); dropped > 0 {
		glog.Warningf("%s: receive buffer full, %d bytes dropped", t.Device, dropped)
	}
}
