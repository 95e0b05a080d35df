package console

import (
	"strings"
	"time"

	"github.com/robotalks/pinsh/pkg/hal"
)

// Commands is the built-in command table, sorted by name.
var Commands = Table{
	{
		Name:    "delay",
		Args:    "MS",
		Summary: "Wait for MS milliseconds, input is not processed meanwhile.",
		Details: []string{"example: delay 500"},
		Handler: delayCmd,
	},
	{
		Name:    "help",
		Args:    "[COMMAND]",
		Summary: "List commands, or describe COMMAND.",
		Details: []string{"example: help pw"},
		Handler: helpCmd,
	},
	{
		Name:    "pmode",
		Args:    "PIN MODE",
		Summary: "Configure a digital pin.",
		Details: []string{
			"MODE: i (input), ip (input with pull-up), o (output)",
			"example: pmode 13 o",
		},
		Handler: pmodeCmd,
	},
	{
		Name:    "pr",
		Args:    "PIN",
		Summary: "Read a digital pin, prints 0 or 1.",
		Details: []string{"example: pr 7"},
		Handler: prCmd,
	},
	{
		Name:    "pw",
		Args:    "PIN VALUE",
		Summary: "Drive a digital pin low or high.",
		Details: []string{
			"VALUE: 0 (low) or 1 (high)",
			"example: pw 13 1",
		},
		Handler: pwCmd,
	},
	{
		Name:    "spiend",
		Args:    "",
		Summary: "De-assert chip-select and end the SPI transaction.",
		Handler: spiendCmd,
	},
	{
		Name:    "spirw",
		Args:    "BYTE",
		Summary: "Transfer one byte (0-255), prints the byte received.",
		Details: []string{"example: spirw 170"},
		Handler: spirwCmd,
	},
	{
		Name:    "spirw16",
		Args:    "WORD",
		Summary: "Transfer a 16-bit word (0-65535), prints the word received.",
		Details: []string{"example: spirw16 43690"},
		Handler: spirw16Cmd,
	},
	{
		Name:    "spistart",
		Args:    "ORDER MODE",
		Summary: "Assert chip-select and start an SPI transaction.",
		Details: []string{
			"ORDER: msbfirst or lsbfirst",
			"MODE: mode0, mode1, mode2 or mode3",
			"unrecognized values fall back to msbfirst mode0",
			"example: spistart msbfirst mode0",
		},
		Handler: spistartCmd,
	},
}

const maxPin = maxDecimal

func delayCmd(c *Call) Status {
	tok, _ := c.Next()
	if ms := Atoi(tok); ms > 0 {
		c.Board.Clock.Delay(time.Duration(ms) * time.Millisecond)
	}
	return StatusOK
}

func helpCmd(c *Call) Status {
	tok, _ := c.Next()
	if cmd := c.Table.Lookup(strings.ToLower(tok)); cmd != nil {
		cmd.Usage(c.Out)
		return StatusOK
	}
	c.Println("commands:")
	for n := range c.Table {
		cmd := &c.Table[n]
		c.Printf("  %-9s %s\r\n", cmd.Name, cmd.Args)
	}
	c.Println("type 'help COMMAND' for details")
	return StatusOK
}

func pmodeCmd(c *Call) Status {
	pin, err := c.Int("PIN", 0, maxPin)
	if err != nil {
		return c.Fail(err)
	}
	tok, _ := c.Next()
	switch tok {
	case "i":
		c.Board.Pins.SetMode(pin, hal.Input)
	case "ip":
		c.Board.Pins.SetMode(pin, hal.InputPullup)
	case "o":
		c.Board.Pins.SetMode(pin, hal.Output)
	}
	return StatusOK
}

func prCmd(c *Call) Status {
	pin, err := c.Int("PIN", 0, maxPin)
	if err != nil {
		return c.Fail(err)
	}
	if c.Board.Pins.Read(pin) == hal.High {
		c.Println("1")
	} else {
		c.Println("0")
	}
	return StatusOK
}

func pwCmd(c *Call) Status {
	pin, err := c.Int("PIN", 0, maxPin)
	if err != nil {
		return c.Fail(err)
	}
	val, err := c.Int("VALUE", 0, 1)
	if err != nil {
		return c.Fail(err)
	}
	level := hal.Low
	if val == 1 {
		level = hal.High
	}
	c.Board.Pins.Write(pin, level)
	return StatusOK
}

func spistartCmd(c *Call) Status {
	order, mode := DefaultBitOrder, DefaultSPIMode
	tok, _ := c.Next()
	switch tok {
	case "lsbfirst":
		order = hal.LSBFirst
	case "msbfirst":
		order = hal.MSBFirst
	}
	tok, _ = c.Next()
	switch tok {
	case "mode0":
		mode = hal.Mode0
	case "mode1":
		mode = hal.Mode1
	case "mode2":
		mode = hal.Mode2
	case "mode3":
		mode = hal.Mode3
	}
	if err := c.Bus.Start(order, mode); err != nil {
		return c.Fail(err)
	}
	return StatusOK
}

func spirwCmd(c *Call) Status {
	val, err := c.Int("BYTE", 0, 0xff)
	if err != nil {
		return c.Fail(err)
	}
	in, err := c.Bus.Transfer(byte(val))
	if err != nil {
		return c.Fail(err)
	}
	c.Println(int(in))
	return StatusOK
}

func spirw16Cmd(c *Call) Status {
	val, err := c.Int("WORD", 0, 0xffff)
	if err != nil {
		return c.Fail(err)
	}
	in, err := c.Bus.Transfer16(uint16(val))
	if err != nil {
		return c.Fail(err)
	}
	c.Println(int(in))
	return StatusOK
}

func spiendCmd(c *Call) Status {
	if err := c.Bus.End(); err != nil {
		return c.Fail(err)
	}
	return StatusOK
}
