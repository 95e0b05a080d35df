package remote

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/pinsh/pkg/console"
	"github.com/robotalks/pinsh/pkg/hal"
	"github.com/robotalks/pinsh/pkg/hal/sim"
	"github.com/robotalks/pinsh/pkg/hal/stream"
)

func startConsole(t *testing.T) (*Session, *sim.Pins, *sim.Bus, func()) {
	board, pins, bus := sim.NewBoard(false)
	local, peer := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	port := stream.NewPort(local)
	go port.Run(ctx)
	go console.New(port, board, console.DefaultOptions()).Run(ctx)

	s := NewSession(peer)
	s.Timeout = time.Second
	require.NoError(t, s.Sync(context.Background()))
	return s, pins, bus, func() {
		cancel()
		s.Close()
		local.Close()
	}
}

func TestSessionExec(t *testing.T) {
	s, pins, bus, stop := startConsole(t)
	defer stop()

	lines, err := s.Exec(context.Background(), "pw 13 1")
	require.NoError(t, err)
	require.Empty(t, lines)
	require.Equal(t, hal.High, pins.State(13).Output)

	pins.Drive(7, hal.High)
	lines, err = s.Exec(context.Background(), "pr 7")
	require.NoError(t, err)
	require.Equal(t, []string{"1"}, lines)

	bus.Respond(0x42)
	for _, line := range []string{"spistart msbfirst mode0", "spirw 170", "spiend"} {
		lines, err = s.Exec(context.Background(), line)
		require.NoError(t, err)
		if line == "spirw 170" {
			require.Equal(t, []string{"66"}, lines)
		}
	}

	lines, err = s.Exec(context.Background(), "help pw")
	require.NoError(t, err)
	require.Equal(t, "pw PIN VALUE", lines[0])
	require.True(t, len(lines) > 1)
}

func TestSessionLineTooLong(t *testing.T) {
	s := &Session{}
	_, err := s.Exec(context.Background(), strings.Repeat("a", console.LineCapacity))
	require.Equal(t, ErrLineTooLong, err)
}

func TestSessionTimeout(t *testing.T) {
	local, peer := net.Pipe()
	defer local.Close()
	go func() {
		buf := make([]byte, 16)
		for {
			if _, err := local.Read(buf); err != nil {
				return
			}
		}
	}()
	s := NewSession(peer)
	s.Timeout = 10 * time.Millisecond
	_, err := s.Exec(context.Background(), "pr 1")
	require.Equal(t, context.DeadlineExceeded, err)
}

func TestSessionSkipsLateResponse(t *testing.T) {
	local, peer := net.Pipe()
	defer local.Close()
	timedOut := make(chan struct{})
	go func() {
		r := bufio.NewReader(local)
		line, _ := r.ReadString(console.CR)
		assert.Equal(t, "pr 7\r", line)
		<-timedOut
		local.Write([]byte("pr 7\r\n0\r\n> "))
		line, _ = r.ReadString(console.CR)
		assert.Equal(t, "pr 8\r", line)
		local.Write([]byte("pr 8\r\n1\r\n> "))
	}()

	s := NewSession(peer)
	defer s.Close()
	s.Timeout = 10 * time.Millisecond
	_, err := s.Exec(context.Background(), "pr 7")
	require.Equal(t, context.DeadlineExceeded, err)
	close(timedOut)

	s.Timeout = time.Second
	lines, err := s.Exec(context.Background(), "pr 8")
	require.NoError(t, err)
	require.Equal(t, []string{"1"}, lines)
}

func TestSessionCloseStopsReader(t *testing.T) {
	local, peer := net.Pipe()
	s := NewSession(peer)
	go local.Write([]byte("unsolicited"))
	require.NoError(t, s.Close())
	_, err := s.Exec(context.Background(), "pr 1")
	require.Error(t, err)
	local.Close()
}
