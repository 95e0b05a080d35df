package sim

import (
	"fmt"
	"sync"

	"github.com/robotalks/pinsh/pkg/hal"
)

// BusOp identifies a recorded bus call.
type BusOp int

// Recorded bus calls.
const (
	OpOpen BusOp = iota
	OpBegin
	OpTransfer
	OpEnd
)

// BusCall is one recorded call on the Bus.
type BusCall struct {
	Op      BusOp
	ClockHz uint32
	Order   hal.BitOrder
	Mode    hal.SPIMode
	Out     byte
	In      byte
}

// String implements fmt.Stringer.
func (c BusCall) String() string {
	switch c.Op {
	case OpOpen:
		return "open"
	case OpBegin:
		return fmt.Sprintf("begin %d %s %s", c.ClockHz, c.Order, c.Mode)
	case OpTransfer:
		return fmt.Sprintf("transfer %d->%d", c.Out, c.In)
	case OpEnd:
		return "end"
	}
	return "?"
}

// Bus implements hal.SPI. Bytes queued by Respond are shifted
// in first, afterwards the bus loops back what is shifted out.
type Bus struct {
	calls    []BusCall
	response []byte
	order    hal.BitOrder
	lock     sync.Mutex
}

// Respond queues bytes to be returned by subsequent transfers.
func (b *Bus) Respond(p ...byte) *Bus {
	b.lock.Lock()
	b.response = append(b.response, p...)
	b.lock.Unlock()
	return b
}

// Calls returns the recorded calls.
func (b *Bus) Calls() []BusCall {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([]BusCall(nil), b.calls...)
}

// Open implements hal.SPI.
func (b *Bus) Open() {
	b.lock.Lock()
	b.calls = append(b.calls, BusCall{Op: OpOpen})
	b.lock.Unlock()
}

// BeginTransaction implements hal.SPI.
func (b *Bus) BeginTransaction(clockHz uint32, order hal.BitOrder, mode hal.SPIMode) {
	b.lock.Lock()
	b.order = order
	b.calls = append(b.calls, BusCall{Op: OpBegin, ClockHz: clockHz, Order: order, Mode: mode})
	b.lock.Unlock()
}

// EndTransaction implements hal.SPI.
func (b *Bus) EndTransaction() {
	b.lock.Lock()
	b.calls = append(b.calls, BusCall{Op: OpEnd})
	b.lock.Unlock()
}

// TransferByte implements hal.SPI.
func (b *Bus) TransferByte(out byte) byte {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.transfer(out)
}

// TransferWord implements hal.SPI.
// The byte order on the wire follows the bit order of the transaction.
func (b *Bus) TransferWord(out uint16) uint16 {
	b.lock.Lock()
	defer b.lock.Unlock()
	hi, lo := byte(out>>8), byte(out)
	if b.order == hal.LSBFirst {
		lo = b.transfer(lo)
		hi = b.transfer(hi)
	} else {
		hi = b.transfer(hi)
		lo = b.transfer(lo)
	}
	return uint16(hi)<<8 | uint16(lo)
}

func (b *Bus) transfer(out byte) byte {
	in := out
	if len(b.response) > 0 {
		in, b.response = b.response[0], b.response[1:]
	}
	b.calls = append(b.calls, BusCall{Op: OpTransfer, Out: out, In: in})
	return in
}
