// Package hal defines the hardware collaborators the console drives.
package hal

import (
	"context"
	"io"
	"time"
)

// Transport is a byte stream with a non-blocking availability check.
type Transport interface {
	// Available returns the number of bytes which can be read without blocking.
	Available() int

	io.ByteReader
	io.ByteWriter
}

// Flusher is optionally implemented by a Transport which buffers output.
type Flusher interface {
	Flush() error
}

// PinMode is the electrical configuration of a digital pin.
type PinMode int

// Pin modes.
const (
	Input PinMode = iota
	InputPullup
	Output
)

// String implements fmt.Stringer.
func (m PinMode) String() string {
	switch m {
	case Input:
		return "input"
	case InputPullup:
		return "input-pullup"
	case Output:
		return "output"
	}
	return "unknown"
}

// Level is the logical level of a digital pin.
type Level int

// Pin levels.
const (
	Low Level = iota
	High
)

// Pins provides digital I/O on logical pin numbers.
// Invalid pin numbers are passed through as-is, the
// implementation decides what they mean.
type Pins interface {
	SetMode(pin int, mode PinMode)
	Write(pin int, level Level)
	Read(pin int) Level
}

// BitOrder is the order bits are shifted on the bus.
type BitOrder int

// Bit orders.
const (
	MSBFirst BitOrder = iota
	LSBFirst
)

// String implements fmt.Stringer.
func (o BitOrder) String() string {
	if o == LSBFirst {
		return "lsbfirst"
	}
	return "msbfirst"
}

// SPIMode is the clock polarity and phase (0-3).
//
//	Mode0: CPOL=0, CPHA=0
//	Mode1: CPOL=0, CPHA=1
//	Mode2: CPOL=1, CPHA=0
//	Mode3: CPOL=1, CPHA=1
type SPIMode int

// SPI modes.
const (
	Mode0 SPIMode = iota
	Mode1
	Mode2
	Mode3
)

// String implements fmt.Stringer.
func (m SPIMode) String() string {
	switch m {
	case Mode0:
		return "mode0"
	case Mode1:
		return "mode1"
	case Mode2:
		return "mode2"
	case Mode3:
		return "mode3"
	}
	return "unknown"
}

// SPI is a synchronous-serial bus master.
type SPI interface {
	// Open initializes the bus hardware, called once.
	Open()
	// BeginTransaction claims the bus with the given settings.
	BeginTransaction(clockHz uint32, order BitOrder, mode SPIMode)
	// EndTransaction releases the bus.
	EndTransaction()
	// TransferByte shifts one byte out and returns the byte shifted in.
	TransferByte(b byte) byte
	// TransferWord shifts two bytes out and returns the two bytes shifted in.
	TransferWord(w uint16) uint16
}

// Clock provides the blocking wait used by delays.
type Clock interface {
	Delay(time.Duration)
}

// ClockFunc is func form of Clock.
type ClockFunc func(time.Duration)

// Delay implements Clock.
func (f ClockFunc) Delay(d time.Duration) {
	f(d)
}

// SystemClock blocks using time.Sleep.
var SystemClock Clock = ClockFunc(time.Sleep)

// Board groups the collaborators of one device.
type Board struct {
	Pins  Pins
	SPI   SPI
	Clock Clock
}

// Waiter is optionally implemented by a Transport which can block until
// input is available. Wait returns an error when the transport is closed.
type Waiter interface {
	Wait(ctx context.Context) error
}
