// Package console implements a line-oriented command interpreter for
// digital pins and an SPI bus.
package console

// The interpreter is designed after small firmware consoles: every buffer
// has a fixed capacity, input is edited in place as bytes arrive, and
// commands pull their arguments one token at a time from a resumable
// cursor over the completed line.
//
// Input:  bytes from a hal.Transport, echoed back for terminal feedback.
// Output: newline terminated decimal numbers or short notices.
//
// The interpreter has a single owner; it is not safe for concurrent use.
