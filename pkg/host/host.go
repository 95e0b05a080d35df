package host

import (
	"context"
	"io"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/robotalks/pinsh/pkg/comm/mqtt"
	"github.com/robotalks/pinsh/pkg/console"
	fx "github.com/robotalks/pinsh/pkg/framework"
	"github.com/robotalks/pinsh/pkg/hal"
	"github.com/robotalks/pinsh/pkg/hal/sim"
	"github.com/robotalks/pinsh/pkg/hal/stream"
	"github.com/robotalks/pinsh/pkg/hal/websocket"
)

// Host owns the board and the runnables exposing the console.
type Host struct {
	Config *Config
	Board  hal.Board

	runnables []fx.Runnable
	closers   []func() error
}

// NewHost creates a Host on a simulated board.
func (c *Config) NewHost() (*Host, error) {
	board, _, _ := sim.NewBoard(c.RealTime)
	h := &Host{Config: c, Board: board}
	if err := h.setup(); err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}

func (h *Host) setup() error {
	c := h.Config
	switch c.Transport {
	case TransportStdio:
		term, err := stream.OpenTerminal()
		if err != nil {
			return err
		}
		h.closers = append(h.closers, term.Close)
		h.addPort(stream.NewPort(term), nil)
	case TransportSerial:
		port, err := stream.OpenSerial(stream.SerialConfig{Device: c.Device, BaudRate: c.BaudRate})
		if err != nil {
			return err
		}
		glog.Infof("serial %s opened at %d baud", c.Device, c.BaudRate)
		p := stream.NewPort(port)
		h.closers = append(h.closers, p.Close)
		h.addPort(p, nil)
	case TransportWebsocket:
		h.runnables = append(h.runnables, fx.NamedRun("websocket", &websocket.Server{
			Addr:    c.Listen,
			Board:   h.Board,
			Options: c.Options(),
		}))
	case TransportMQTT:
		q, err := mqtt.NewQueueFromURL(c.MQTTBrokerURL)
		if err != nil {
			return err
		}
		if err = q.Connect(); err != nil {
			return errors.Wrapf(err, "connect %s", c.MQTTBrokerURL)
		}
		h.closers = append(h.closers, q.Close)
		device := c.DeviceName()
		glog.Infof("console on %s%s", q.TopicPrefix, device)
		t := mqtt.NewTransport(q, device)
		h.runnables = append(h.runnables, fx.NamedRun("mqtt", t))
		var observer console.Observer
		if c.Events {
			observer = &mqtt.EventPublisher{Queue: q, Device: device}
		}
		h.addInterpreter(t, observer)
	default:
		return errors.Errorf("unknown transport %q", c.Transport)
	}
	return nil
}

func (h *Host) addPort(p *stream.Port, observer console.Observer) {
	h.runnables = append(h.runnables, fx.NamedRun("port", fx.RunFunc(func(ctx context.Context) error {
		err := p.Run(ctx)
		if err != io.EOF {
			return err
		}
		// the console stops on its own once buffered input is drained.
		<-ctx.Done()
		return nil
	})))
	h.addInterpreter(p, observer)
}

func (h *Host) addInterpreter(t hal.Transport, observer console.Observer) {
	interp := console.New(t, h.Board, h.Config.Options())
	interp.Observer = observer
	h.runnables = append(h.runnables, fx.NamedRun("console", fx.RunFunc(func(ctx context.Context) error {
		defer interp.Close()
		return endOfInput(interp.Run(ctx))
	})))
}

// Run runs until a runnable fails or ctx is canceled.
func (h *Host) Run(ctx context.Context) error {
	defer h.Close()
	return fx.NewRunnerWith(ctx).HandleSignals().Go(h.runnables...).Wait()
}

// Close releases transports.
func (h *Host) Close() error {
	var errs fx.AggregatedError
	for n := len(h.closers) - 1; n >= 0; n-- {
		errs.Add(h.closers[n]())
	}
	h.closers = nil
	return errs.Aggregate()
}

// endOfInput treats the end of the input stream as a normal stop.
func endOfInput(err error) error {
	if err == io.EOF {
		return nil
	}
	return err
}
