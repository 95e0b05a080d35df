package console

import "io"

// Control bytes recognized by the LineEditor.
const (
	CR        byte = '\r'
	LF        byte = '\n'
	Backspace byte = 0x08
	Delete    byte = 0x7f
	Bell      byte = 0x07
)

// LineCapacity is the size of the line buffer including the terminator,
// a line holds at most LineCapacity-1 characters.
const LineCapacity = 64

// Prompt is written after start and after every command.
const Prompt = "> "

var (
	newline = []byte{CR, LF}
	erase   = []byte{Backspace, ' ', Backspace}
)

// LineStatus is the result of feeding one byte to the LineEditor.
type LineStatus int

const (
	// LineIncomplete means more bytes are needed.
	LineIncomplete LineStatus = iota
	// LineComplete means a CR terminated the line.
	LineComplete
	// LineOverflowed means the line was discarded for being too long and
	// a new line was started with the rejected byte.
	LineOverflowed
)

// String implements fmt.Stringer.
func (s LineStatus) String() string {
	switch s {
	case LineIncomplete:
		return "incomplete"
	case LineComplete:
		return "complete"
	case LineOverflowed:
		return "overflowed"
	}
	return "unknown"
}

// LineEditor accumulates one line in a fixed buffer and echoes edits.
type LineEditor struct {
	// Prompt is re-issued after an overflow.
	Prompt string

	buf    [LineCapacity]byte
	cursor int
	out    io.Writer
}

// NewLineEditor creates a LineEditor echoing to out.
func NewLineEditor(out io.Writer) *LineEditor {
	return &LineEditor{Prompt: Prompt, out: out}
}

// Line returns the characters accumulated so far. The slice aliases
// the internal buffer and is only valid until the next Feed or Reset.
func (e *LineEditor) Line() []byte {
	return e.buf[:e.cursor]
}

// Len returns the number of characters in the line.
func (e *LineEditor) Len() int {
	return e.cursor
}

// Reset clears the buffer for a new line.
func (e *LineEditor) Reset() {
	e.buf = [LineCapacity]byte{}
	e.cursor = 0
}

// Feed consumes one byte.
func (e *LineEditor) Feed(b byte) LineStatus {
	switch b {
	case CR:
		e.echo(newline...)
		return LineComplete
	case LF:
		// CR is the only terminator, LF of a CR/LF pair is swallowed.
		return LineIncomplete
	case Backspace, Delete:
		if e.cursor > 0 {
			e.cursor--
			e.buf[e.cursor] = 0
			e.echo(erase...)
		}
		return LineIncomplete
	}

	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}
	if e.cursor < LineCapacity-1 {
		e.store(b)
		return LineIncomplete
	}

	e.Reset()
	e.echo(Bell)
	e.echo(newline...)
	if e.Prompt != "" {
		io.WriteString(e.out, e.Prompt)
	}
	e.store(b)
	return LineOverflowed
}

func (e *LineEditor) store(b byte) {
	e.buf[e.cursor] = b
	e.cursor++
	e.buf[e.cursor] = 0
	e.echo(b)
}

func (e *LineEditor) echo(p ...byte) {
	if e.out != nil {
		e.out.Write(p)
	}
}
