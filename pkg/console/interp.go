package console

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/pinsh/pkg/hal"
)

// Record describes one completed command cycle.
type Record struct {
	Line    string
	Command string
	Status  Status
	// Skipped indicates the handler was not invoked because
	// a token was too long.
	Skipped bool
}

// Observer is notified after every command cycle.
type Observer interface {
	CommandDone(Record)
}

// CommandDoneFunc is func form of Observer.
type CommandDoneFunc func(Record)

// CommandDone implements Observer.
func (f CommandDoneFunc) CommandDone(r Record) {
	f(r)
}

// Options customizes an Interpreter.
type Options struct {
	ChipSelect   int
	ClockHz      uint32
	Prompt       string
	PollInterval time.Duration
	Table        Table
}

// DefaultOptions returns the build-time defaults.
func DefaultOptions() Options {
	return Options{
		ChipSelect:   DefaultChipSelect,
		ClockHz:      DefaultClockHz,
		Prompt:       Prompt,
		PollInterval: time.Millisecond,
		Table:        Commands,
	}
}

// Interpreter reads lines from a Transport and runs commands against a Board.
type Interpreter struct {
	Observer Observer

	transport hal.Transport
	board     hal.Board
	opts      Options
	out       writer
	editor    LineEditor
	cursor    Cursor
	token     Token
	bus       *Transaction
	started   bool
}

// New creates an Interpreter.
func New(t hal.Transport, board hal.Board, opts Options) *Interpreter {
	if opts.Table == nil {
		opts.Table = Commands
	}
	if opts.ClockHz == 0 {
		opts.ClockHz = DefaultClockHz
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Millisecond
	}
	if board.Clock == nil {
		board.Clock = hal.SystemClock
	}
	i := &Interpreter{
		transport: t,
		board:     board,
		opts:      opts,
		out:       writer{w: t},
		bus:       NewTransaction(board.Pins, board.SPI),
	}
	i.bus.ChipSelect, i.bus.ClockHz = opts.ChipSelect, opts.ClockHz
	i.editor = LineEditor{Prompt: opts.Prompt, out: &i.out}
	return i
}

// Bus returns the SPI transaction state.
func (i *Interpreter) Bus() *Transaction {
	return i.bus
}

// Editor returns the line editor.
func (i *Interpreter) Editor() *LineEditor {
	return &i.editor
}

// Start opens the bus and writes the first prompt.
func (i *Interpreter) Start() error {
	if i.started {
		return nil
	}
	i.started = true
	i.board.SPI.Open()
	i.out.WriteString(i.opts.Prompt)
	return i.out.flush()
}

// Feed processes one input byte, running the command when
// the line is complete.
func (i *Interpreter) Feed(b byte) error {
	if i.editor.Feed(b) == LineComplete {
		i.execute()
		i.editor.Reset()
		i.out.WriteString(i.opts.Prompt)
	}
	return i.out.flush()
}

// Run is the control loop: it polls the transport, feeds the line editor
// and dispatches complete lines until ctx is done or the transport fails.
func (i *Interpreter) Run(ctx context.Context) error {
	if err := i.Start(); err != nil {
		return err
	}
	waiter, _ := i.transport.(hal.Waiter)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if i.transport.Available() == 0 {
			if waiter != nil {
				if err := waiter.Wait(ctx); err != nil {
					return err
				}
				continue
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(i.opts.PollInterval):
			}
			continue
		}
		b, err := i.transport.ReadByte()
		if err != nil {
			return err
		}
		if err = i.Feed(b); err != nil {
			return err
		}
	}
}

func (i *Interpreter) execute() {
	i.cursor.Reset(i.editor.Line())
	i.token.Clear()
	rec := Record{Line: string(i.editor.Line())}
	if i.cursor.Extract(true, &i.token) == TokenFound {
		rec.Command = i.token.String()
		i.cursor.Check()
	}
	if err := i.cursor.Err(); err != nil {
		rec.Skipped, rec.Status = true, StatusError
		i.out.WriteString("error: " + err.Error() + "\r\n")
	} else {
		call := &Call{
			Cursor: &i.cursor,
			Token:  &i.token,
			Out:    &i.out,
			Board:  i.board,
			Bus:    i.bus,
			Table:  i.opts.Table,
		}
		rec.Status = i.opts.Table.Dispatch(call, rec.Command)
	}
	i.token.Clear()
	if glog.V(2) {
		glog.Infof("command %q: status=%d skipped=%v", rec.Line, rec.Status, rec.Skipped)
	}
	if o := i.Observer; o != nil {
		o.CommandDone(rec)
	}
}

// writer adapts a byte transport to io.Writer, keeping the first error.
type writer struct {
	w   hal.Transport
	err error
}

func (w *writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	for n, b := range p {
		if err := w.w.WriteByte(b); err != nil {
			w.err = err
			return n, err
		}
	}
	return len(p), nil
}

func (w *writer) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *writer) flush() error {
	if w.err != nil {
		return w.err
	}
	if f, ok := w.w.(hal.Flusher); ok {
		w.err = f.Flush()
	}
	return w.err
}

// Close ends a transaction left open, releasing chip-select.
func (i *Interpreter) Close() error {
	if i.bus.Active() {
		glog.Warning("closing open spi transaction")
		return i.bus.End()
	}
	return nil
}
