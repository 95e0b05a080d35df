// Package websocket serves console sessions over websocket connections.
package websocket

import (
	"context"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/pinsh/pkg/console"
	fx "github.com/robotalks/pinsh/pkg/framework"
	"github.com/robotalks/pinsh/pkg/hal"
	"github.com/robotalks/pinsh/pkg/hal/stream"
)

// Server runs one console session per websocket connection. Only one
// session owns the board at a time, others are turned away.
type Server struct {
	Addr     string
	Board    hal.Board
	Options  console.Options
	Observer console.Observer

	lock sync.Mutex
}

// BusyMessage is sent to a connection rejected because of another session.
const BusyMessage = "busy: another session is active\r\n"

// Handler returns the websocket handler.
func (s *Server) Handler() http.Handler {
	return websocket.Handler(s.serve)
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/", s.Handler())
	srv := &http.Server{Addr: s.Addr, Handler: mux}
	glog.Infof("websocket console listening on %s", s.Addr)
	return fx.RunWithContextCancel(ctx, func() { srv.Close() }, srv.ListenAndServe)
}

func (s *Server) serve(ws *websocket.Conn) {
	defer ws.Close()
	ws.PayloadType = websocket.BinaryFrame
	if !s.lock.TryLock() {
		ws.Write([]byte(BusyMessage))
		return
	}
	defer s.lock.Unlock()

	glog.Infof("session %s started", ws.Request().RemoteAddr)
	ctx, cancel := context.WithCancel(ws.Request().Context())
	defer cancel()
	port := stream.NewPort(ws)
	go port.Run(ctx)

	interp := console.New(port, s.Board, s.Options)
	interp.Observer = s.Observer
	err := interp.Run(ctx)
	interp.Close()
	glog.Infof("session %s ended: %v", ws.Request().RemoteAddr, err)
}
