// Package sim provides an in-memory board for tests and host runs.
package sim

import (
	"sync"
	"time"

	"github.com/robotalks/pinsh/pkg/hal"
)

// Pin is the state of a simulated pin.
type Pin struct {
	Mode   hal.PinMode
	Output hal.Level
	// Input is the level driven externally onto the pin.
	Input hal.Level
	// Driven indicates Input has been set explicitly.
	Driven bool
}

// PinWrite records a Write call.
type PinWrite struct {
	Pin   int
	Level hal.Level
}

// Pins implements hal.Pins in memory.
type Pins struct {
	pins   map[int]*Pin
	writes []PinWrite
	lock   sync.Mutex
}

// NewPins creates Pins.
func NewPins() *Pins {
	return &Pins{pins: make(map[int]*Pin)}
}

func (p *Pins) pin(n int) *Pin {
	pin := p.pins[n]
	if pin == nil {
		pin = &Pin{}
		p.pins[n] = pin
	}
	return pin
}

// SetMode implements hal.Pins.
func (p *Pins) SetMode(n int, mode hal.PinMode) {
	p.lock.Lock()
	p.pin(n).Mode = mode
	p.lock.Unlock()
}

// Write implements hal.Pins.
func (p *Pins) Write(n int, level hal.Level) {
	p.lock.Lock()
	p.pin(n).Output = level
	p.writes = append(p.writes, PinWrite{Pin: n, Level: level})
	p.lock.Unlock()
}

// Read implements hal.Pins.
// An output pin reads back what was written, an undriven
// pull-up input reads high.
func (p *Pins) Read(n int) hal.Level {
	p.lock.Lock()
	defer p.lock.Unlock()
	pin := p.pin(n)
	switch {
	case pin.Mode == hal.Output:
		return pin.Output
	case pin.Driven:
		return pin.Input
	case pin.Mode == hal.InputPullup:
		return hal.High
	}
	return hal.Low
}

// Drive sets the level seen by Read on an input pin.
func (p *Pins) Drive(n int, level hal.Level) {
	p.lock.Lock()
	pin := p.pin(n)
	pin.Input, pin.Driven = level, true
	p.lock.Unlock()
}

// State returns a copy of the pin state.
func (p *Pins) State(n int) Pin {
	p.lock.Lock()
	defer p.lock.Unlock()
	return *p.pin(n)
}

// Writes returns all Write calls so far.
func (p *Pins) Writes() []PinWrite {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]PinWrite(nil), p.writes...)
}

// Clock is a virtual clock which only accumulates delays.
type Clock struct {
	elapsed time.Duration
	lock    sync.Mutex
}

// Delay implements hal.Clock.
func (c *Clock) Delay(d time.Duration) {
	c.lock.Lock()
	c.elapsed += d
	c.lock.Unlock()
}

// Elapsed returns the sum of all delays.
func (c *Clock) Elapsed() time.Duration {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.elapsed
}

// NewBoard creates a hal.Board backed by simulated parts.
// When realTime is set, delays block on the system clock.
func NewBoard(realTime bool) (hal.Board, *Pins, *Bus) {
	pins, bus := NewPins(), &Bus{}
	board := hal.Board{Pins: pins, SPI: bus, Clock: &Clock{}}
	if realTime {
		board.Clock = hal.SystemClock
	}
	return board, pins, bus
}
