// Package sh provides an interactive client for a remote console.
package sh

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/pkg/errors"
	"golang.org/x/net/websocket"

	"github.com/robotalks/pinsh/pkg/cli/remote"
	"github.com/robotalks/pinsh/pkg/console"
	"github.com/robotalks/pinsh/pkg/hal/stream"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	Target      string
	BaudRate    int

	Shell   *ishell.Shell
	Session *remote.Session
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
	// remoteHelpName is the name of the console's help command in the
	// shell, which has its own help.
	remoteHelpName = "dev.help"
)

var (
	evalOnly bool
	target   string
	baudRate = stream.DefaultBaudRate
)

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.StringVar(&target, "target", target, "Serial device or ws:// URL of the console.")
	flag.IntVar(&baudRate, "baud", baudRate, "Serial baud rate.")
}

// New creates a new shell.
func New() *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		Target:      target,
		BaudRate:    baudRate,
		Shell:       ishell.New(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	s.Shell.AddCmd(&PortsCmd)
	s.Shell.AddCmd(&ConnectCmd)
	s.Shell.AddCmd(&DisconnectCmd)
	for _, cmd := range RemoteCmds(console.Commands) {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Session == nil {
			c.Err(errors.New("not connected"))
			return
		}
		fn(c)
	}
}

// RemoteCmds creates shell commands forwarding to the console commands.
func RemoteCmds(table console.Table) []*ishell.Cmd {
	cmds := make([]*ishell.Cmd, 0, len(table))
	for n := range table {
		cmd := &table[n]
		name := cmd.Name
		if name == "help" {
			name = remoteHelpName
		}
		var long strings.Builder
		cmd.Usage(&long)
		cmds = append(cmds, &ishell.Cmd{
			Name:     name,
			Help:     strings.TrimSpace(cmd.Args + "  " + cmd.Summary),
			LongHelp: strings.Replace(long.String(), "\r\n", "\n", -1),
			Func: MustBeConnected(func(c *ishell.Context) {
				DoCommand(c, strings.Join(append([]string{cmd.Name}, c.Args...), " "))
			}),
		})
	}
	return cmds
}

// DoCommand runs a line on the console and prints the response.
func DoCommand(c *ishell.Context, line string) error {
	lines, err := ShellFrom(c).Session.Exec(context.Background(), line)
	if err != nil {
		c.Err(err)
		return err
	}
	for _, l := range lines {
		c.Println(l)
	}
	return nil
}

// Dial opens the stream to a console: a ws:// or wss:// URL, or a serial
// device.
func Dial(target string, baud int) (io.ReadWriteCloser, error) {
	if strings.HasPrefix(target, "ws://") || strings.HasPrefix(target, "wss://") {
		origin := "http://localhost/"
		return websocket.Dial(target, "", origin)
	}
	return stream.OpenSerial(stream.SerialConfig{Device: target, BaudRate: baud})
}

// Connect connects to a console and synchronizes with its prompt.
func (s *Shell) Connect(target string) error {
	rw, err := Dial(target, s.BaudRate)
	if err != nil {
		return err
	}
	session := remote.NewSession(rw)
	if err = session.Sync(context.Background()); err != nil {
		session.Close()
		return errors.Wrapf(err, "sync %s", target)
	}
	s.Disconnect()
	s.Session, s.Target = session, target
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", target))
	return nil
}

// Disconnect closes the current session.
func (s *Shell) Disconnect() {
	if s.Session != nil {
		s.Session.Close()
		s.Session = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.Target != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Target)
		}
		if err := s.Connect(s.Target); err != nil {
			log.Fatalf("connect %q failed: %v", s.Target, err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"l"},
		Help:    "list serial ports",
		Func: func(c *ishell.Context) {
			ports, err := stream.SerialPorts()
			if err != nil {
				c.Err(err)
				return
			}
			if len(ports) == 0 {
				c.Println("No serial ports found")
				return
			}
			for _, port := range ports {
				c.Println(port)
			}
		},
	}

	// ConnectCmd connects a console.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "TARGET [BAUD]",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(errors.New("TARGET required"))
				return
			}
			s := ShellFrom(c)
			if len(c.Args) > 1 {
				baud, err := strconv.Atoi(c.Args[1])
				if err != nil {
					c.Err(errors.Wrap(err, "invalid BAUD"))
					return
				}
				s.BaudRate = baud
			}
			if err := s.Connect(c.Args[0]); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current console.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New().Run(flag.Args()...)
}
