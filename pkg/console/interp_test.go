package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/pinsh/pkg/hal"
	"github.com/robotalks/pinsh/pkg/hal/sim"
	"github.com/robotalks/pinsh/pkg/hal/stream"
)

type testTransport struct {
	in  bytes.Buffer
	out bytes.Buffer
}

func (t *testTransport) Available() int          { return t.in.Len() }
func (t *testTransport) ReadByte() (byte, error) { return t.in.ReadByte() }
func (t *testTransport) WriteByte(b byte) error  { return t.out.WriteByte(b) }

type testConsole struct {
	*Interpreter
	t       *testing.T
	tr      *testTransport
	pins    *sim.Pins
	bus     *sim.Bus
	clock   *sim.Clock
	records []Record
}

func newTestConsole(t *testing.T) *testConsole {
	board, pins, bus := sim.NewBoard(false)
	c := &testConsole{t: t, tr: &testTransport{}, pins: pins, bus: bus, clock: board.Clock.(*sim.Clock)}
	c.Interpreter = New(c.tr, board, DefaultOptions())
	c.Observer = CommandDoneFunc(func(rec Record) {
		c.records = append(c.records, rec)
	})
	require.NoError(t, c.Start())
	require.Equal(t, Prompt, c.tr.out.String())
	c.tr.out.Reset()
	return c
}

// input feeds s and returns everything written meanwhile.
func (c *testConsole) input(s string) string {
	for n := 0; n < len(s); n++ {
		require.NoError(c.t, c.Feed(s[n]))
	}
	out := c.tr.out.String()
	c.tr.out.Reset()
	return out
}

// exec runs one command and returns the response without echo and prompt.
func (c *testConsole) exec(line string) string {
	out := c.input(line + "\r")
	require.True(c.t, strings.HasPrefix(out, strings.ToLower(line)+"\r\n"), "echo of %q in %q", line, out)
	require.True(c.t, strings.HasSuffix(out, Prompt), "prompt in %q", out)
	return strings.TrimSuffix(strings.TrimPrefix(out, strings.ToLower(line)+"\r\n"), Prompt)
}

func TestPinWrite(t *testing.T) {
	c := newTestConsole(t)
	require.Equal(t, "pw 13 1\r\n> ", c.input("pw 13 1\r"))
	require.Equal(t, hal.High, c.pins.State(13).Output)
	require.Equal(t, "", c.exec("PW 13 0"))
	require.Equal(t, []sim.PinWrite{{Pin: 13, Level: hal.High}, {Pin: 13, Level: hal.Low}}, c.pins.Writes())
}

func TestPinWriteErrors(t *testing.T) {
	c := newTestConsole(t)
	require.Contains(t, c.exec("pw 13 2"), ErrOutOfRange.Error())
	require.Contains(t, c.exec("pw abc 1"), ErrInvalidNumber.Error())
	require.Contains(t, c.exec("pw 13"), ErrMissingArgument.Error())
	require.Contains(t, c.exec("pw"), ErrMissingArgument.Error())
	require.Empty(t, c.pins.Writes())
	for _, rec := range c.records {
		require.Equal(t, StatusError, rec.Status)
	}
}

func TestPinRead(t *testing.T) {
	c := newTestConsole(t)
	require.Equal(t, "pr 7\r\n0\r\n> ", c.input("pr 7\r"))
	c.pins.Drive(7, hal.High)
	require.Equal(t, "1\r\n", c.exec("pr 7"))
	// the whole token is the pin number.
	c.pins.Drive(12, hal.High)
	require.Equal(t, "1\r\n", c.exec("pr 12"))
	require.Contains(t, c.exec("pr x"), ErrInvalidNumber.Error())
}

func TestPinMode(t *testing.T) {
	c := newTestConsole(t)
	require.Equal(t, "", c.exec("pmode 3 o"))
	require.Equal(t, hal.Output, c.pins.State(3).Mode)
	require.Equal(t, "", c.exec("pmode 3 ip"))
	require.Equal(t, hal.InputPullup, c.pins.State(3).Mode)
	require.Equal(t, "1\r\n", c.exec("pr 3"))
	require.Equal(t, "", c.exec("pmode 3 i"))
	require.Equal(t, hal.Input, c.pins.State(3).Mode)
	// unknown mode is a no-op.
	require.Equal(t, "", c.exec("pmode 3 x"))
	require.Equal(t, hal.Input, c.pins.State(3).Mode)
	require.Equal(t, StatusOK, c.records[len(c.records)-1].Status)
}

func TestSPITransaction(t *testing.T) {
	c := newTestConsole(t)
	c.bus.Respond(0x55)
	require.Equal(t, "", c.exec("spistart msbfirst mode0"))
	require.True(t, c.Bus().Active())
	require.Equal(t, hal.Low, c.pins.State(DefaultChipSelect).Output)
	require.Equal(t, "85\r\n", c.exec("spirw 170"))
	require.Equal(t, "", c.exec("spiend"))
	require.False(t, c.Bus().Active())
	require.Equal(t, hal.High, c.pins.State(DefaultChipSelect).Output)

	require.Equal(t, []sim.BusCall{
		{Op: sim.OpOpen},
		{Op: sim.OpBegin, ClockHz: DefaultClockHz, Order: hal.MSBFirst, Mode: hal.Mode0},
		{Op: sim.OpTransfer, Out: 0xaa, In: 0x55},
		{Op: sim.OpEnd},
	}, c.bus.Calls())
	require.Equal(t, []sim.PinWrite{
		{Pin: DefaultChipSelect, Level: hal.Low},
		{Pin: DefaultChipSelect, Level: hal.High},
	}, c.pins.Writes())
}

func TestSPIStartSettings(t *testing.T) {
	testCases := []struct {
		line  string
		order hal.BitOrder
		mode  hal.SPIMode
	}{
		{"spistart lsbfirst mode3", hal.LSBFirst, hal.Mode3},
		{"spistart msbfirst mode1", hal.MSBFirst, hal.Mode1},
		{"spistart lsbfirst", hal.LSBFirst, DefaultSPIMode},
		{"spistart bogus mode2", DefaultBitOrder, hal.Mode2},
		{"spistart", DefaultBitOrder, DefaultSPIMode},
	}
	for _, tc := range testCases {
		t.Run(tc.line, func(t *testing.T) {
			c := newTestConsole(t)
			require.Equal(t, "", c.exec(tc.line))
			order, mode := c.Bus().Settings()
			require.Equal(t, tc.order, order)
			require.Equal(t, tc.mode, mode)
		})
	}
}

func TestSPIOrderingErrors(t *testing.T) {
	c := newTestConsole(t)
	require.Contains(t, c.exec("spirw 1"), ErrNoTransaction.Error())
	require.Contains(t, c.exec("spirw16 1"), ErrNoTransaction.Error())
	require.Contains(t, c.exec("spiend"), ErrNoTransaction.Error())
	require.Equal(t, "", c.exec("spistart"))
	require.Contains(t, c.exec("spistart"), ErrTransactionActive.Error())
	require.Contains(t, c.exec("spirw 256"), ErrOutOfRange.Error())
	require.Contains(t, c.exec("spirw16 65536"), ErrOutOfRange.Error())
	require.Equal(t, []sim.BusCall{
		{Op: sim.OpOpen},
		{Op: sim.OpBegin, ClockHz: DefaultClockHz, Order: DefaultBitOrder, Mode: DefaultSPIMode},
	}, c.bus.Calls())
}

func TestSPIWord(t *testing.T) {
	c := newTestConsole(t)
	require.Equal(t, "", c.exec("spistart msbfirst mode0"))
	c.bus.Respond(0x12, 0x34)
	require.Equal(t, "4660\r\n", c.exec("spirw16 43690"))
	require.Equal(t, "65535\r\n", c.exec("spirw16 65535"))
	calls := c.bus.Calls()
	require.Equal(t, sim.BusCall{Op: sim.OpTransfer, Out: 0xaa, In: 0x12}, calls[2])
	require.Equal(t, sim.BusCall{Op: sim.OpTransfer, Out: 0xaa, In: 0x34}, calls[3])
}

func TestDelay(t *testing.T) {
	c := newTestConsole(t)
	require.Equal(t, "", c.exec("delay 250"))
	require.Equal(t, 250*time.Millisecond, c.clock.Elapsed())
	require.Equal(t, "", c.exec("delay abc"))
	require.Equal(t, "", c.exec("delay"))
	require.Equal(t, 250*time.Millisecond, c.clock.Elapsed())
}

func TestHelp(t *testing.T) {
	c := newTestConsole(t)
	out := c.exec("help pw")
	require.True(t, strings.HasPrefix(out, "pw PIN VALUE\r\n"), out)
	require.True(t, strings.Count(out, "\r\n") > 1)
	require.NotContains(t, out, "commands:")

	require.Equal(t, out, c.exec("HELP PW"))

	for _, line := range []string{"help", "help nothing"} {
		out = c.exec(line)
		require.Contains(t, out, "commands:")
		for _, name := range Commands.Names() {
			require.Contains(t, out, "  "+name+" ")
		}
	}
}

func TestDispatchNotices(t *testing.T) {
	c := newTestConsole(t)
	require.Equal(t, "empty command\r\n", c.exec(""))
	require.Equal(t, "empty command\r\n", c.exec("   "))
	require.Contains(t, c.exec("blink 13"), "invalid command \"blink\"")
	require.Equal(t, []Record{
		{Line: "", Status: StatusOK},
		{Line: "   ", Status: StatusOK},
		{Line: "blink 13", Command: "blink", Status: StatusOK},
	}, c.records)
}

func TestTokenTooLongSkipsCommand(t *testing.T) {
	c := newTestConsole(t)
	long := strings.Repeat("1", TokenCapacity)
	require.Equal(t, "error: token too long\r\n", c.exec("pw 13 "+long))
	require.Empty(t, c.pins.Writes())
	require.Equal(t, "error: token too long\r\n", c.exec(long))
	require.Equal(t, []Record{
		{Line: "pw 13 " + long, Command: "pw", Status: StatusError, Skipped: true},
		{Line: long, Status: StatusError, Skipped: true},
	}, c.records)

	// the error doesn't leak into the next command.
	require.Equal(t, "", c.exec("pw 13 1"))
	require.Equal(t, hal.High, c.pins.State(13).Output)
}

func TestOverflowReissuesPrompt(t *testing.T) {
	c := newTestConsole(t)
	out := c.input(strings.Repeat("x", LineCapacity+4))
	require.Equal(t, 1, strings.Count(out, "\a\r\n"+Prompt))
	require.Equal(t, "xxxxx", string(c.Editor().Line()))
	require.Empty(t, c.records)
	require.Contains(t, c.input("\r"), "invalid command \"xxxxx\"")
	require.Equal(t, []Record{{Line: "xxxxx", Command: "xxxxx", Status: StatusOK}}, c.records)
}

func TestRunUntilEndOfInput(t *testing.T) {
	board, pins, _ := sim.NewBoard(false)
	rx := stream.NewRxBuffer(0)
	tr := &rxTransport{RxBuffer: rx}
	interp := New(tr, board, DefaultOptions())

	rx.Push([]byte("pw 5 1\r\npr 5\r\n"))
	rx.CloseWithError(nil)
	err := interp.Run(context.Background())
	require.Equal(t, io.EOF, err)
	require.Equal(t, hal.High, pins.State(5).Output)
	require.Equal(t, "> pw 5 1\r\n> pr 5\r\n0\r\n> ", tr.out.String())
}

func TestRunCanceled(t *testing.T) {
	board, _, _ := sim.NewBoard(false)
	tr := &testTransport{}
	interp := New(tr, board, DefaultOptions())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Equal(t, context.DeadlineExceeded, interp.Run(ctx))
	require.Equal(t, Prompt, tr.out.String())
}

func TestCloseEndsTransaction(t *testing.T) {
	c := newTestConsole(t)
	require.NoError(t, c.Close())
	require.Equal(t, "", c.exec("spistart"))
	require.NoError(t, c.Close())
	require.False(t, c.Bus().Active())
	require.Equal(t, hal.High, c.pins.State(DefaultChipSelect).Output)
}

type rxTransport struct {
	*stream.RxBuffer
	out bytes.Buffer
}

func (t *rxTransport) WriteByte(b byte) error { return t.out.WriteByte(b) }
