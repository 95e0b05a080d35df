package console

import (
	"fmt"
	"io"

	"github.com/robotalks/pinsh/pkg/hal"
)

// Status is the integer result of a command handler.
type Status int

// Handler statuses.
const (
	StatusOK    Status = 0
	StatusError Status = 1
)

// Handler executes a command, pulling its arguments from the Call.
type Handler func(c *Call) Status

// Command pairs a command name with its handler.
type Command struct {
	Name    string
	Args    string
	Summary string
	Details []string
	Handler Handler
}

// Usage writes the help text of the command.
func (c *Command) Usage(w io.Writer) {
	if c.Args != "" {
		fmt.Fprintf(w, "%s %s\r\n", c.Name, c.Args)
	} else {
		fmt.Fprintf(w, "%s\r\n", c.Name)
	}
	fmt.Fprintf(w, "  %s\r\n", c.Summary)
	for _, line := range c.Details {
		fmt.Fprintf(w, "  %s\r\n", line)
	}
}

// Table is an ordered list of commands, searched linearly.
type Table []Command

// Lookup finds a command by exact name.
func (t Table) Lookup(name string) *Command {
	for n := range t {
		if t[n].Name == name {
			return &t[n]
		}
	}
	return nil
}

// Names lists the command names in table order.
func (t Table) Names() []string {
	names := make([]string, len(t))
	for n := range t {
		names[n] = t[n].Name
	}
	return names
}

// Dispatch resolves name and runs the handler. Empty and unknown
// commands only print a notice.
func (t Table) Dispatch(c *Call, name string) Status {
	if name == "" {
		c.Println("empty command")
		return StatusOK
	}
	cmd := t.Lookup(name)
	if cmd == nil {
		c.Printf("invalid command %q, type 'help' for a list of commands\r\n", name)
		return StatusOK
	}
	c.Command = cmd
	return cmd.Handler(c)
}

// Call is the context of one command invocation.
type Call struct {
	Command *Command
	Cursor  *Cursor
	Token   *Token
	Out     io.Writer
	Board   hal.Board
	Bus     *Transaction
	Table   Table
}

// Next extracts the next argument token.
func (c *Call) Next() (string, TokenStatus) {
	st := c.Cursor.Extract(false, c.Token)
	return c.Token.String(), st
}

// Arg extracts the next argument which must be present.
func (c *Call) Arg(name string) (string, error) {
	tok, st := c.Next()
	switch st {
	case TokenEndOfLine:
		return "", &ArgError{Arg: name, Err: ErrMissingArgument}
	case TokenTooLong:
		return "", &ArgError{Arg: name, Err: ErrTokenTooLong}
	}
	return tok, nil
}

// Int extracts the next argument as a decimal integer within [min, max].
func (c *Call) Int(name string, min, max int) (int, error) {
	tok, err := c.Arg(name)
	if err != nil {
		return 0, err
	}
	n, ok := ParseDecimal(tok)
	if !ok {
		return 0, &ArgError{Arg: name, Token: tok, Err: ErrInvalidNumber}
	}
	if n < min || n > max {
		return 0, &ArgError{Arg: name, Token: tok, Err: ErrOutOfRange}
	}
	return n, nil
}

// Printf writes formatted output.
func (c *Call) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

// Println writes args followed by CR LF.
func (c *Call) Println(args ...interface{}) {
	fmt.Fprint(c.Out, args...)
	c.Out.Write(newline)
}

// Fail reports err and returns StatusError.
func (c *Call) Fail(err error) Status {
	c.Printf("error: %v\r\n", err)
	return StatusError
}
