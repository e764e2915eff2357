package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/kspt-johs/disir-go/api/verdictbus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	watchWriteDeadline = 10 * time.Second
	watchReadDeadline  = 60 * time.Second
	watchPingInterval  = 54 * time.Second
)

// wsSubscriber adapts a *websocket.Conn to verdictbus.Subscriber,
// grounded on the teacher's silence_ws.go hub client pattern, but as a
// single-connection subscriber rather than a pool-wide hub: one
// WatchConfig handler registers exactly one subscriber for the
// connection it owns.
type wsSubscriber struct {
	id     string
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
}

func newWSSubscriber(id string, conn *websocket.Conn) *wsSubscriber {
	ctx, cancel := context.WithCancel(context.Background())
	return &wsSubscriber{id: id, conn: conn, ctx: ctx, cancel: cancel}
}

func (s *wsSubscriber) ID() string { return s.id }

func (s *wsSubscriber) Send(v verdictbus.Verdict) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(watchWriteDeadline))
	return s.conn.WriteJSON(v)
}

func (s *wsSubscriber) Close() error {
	s.cancel()
	return s.conn.Close()
}

func (s *wsSubscriber) Context() context.Context { return s.ctx }

// WatchConfig handles GET /v1/namespaces/{namespace}/configs/{name}/watch:
// upgrades to a websocket and streams every subsequent Validate verdict
// for this config as PutConfig publishes them (ValidateConfig does not
// publish to the bus).
//
// @Summary Stream live validation verdicts for a Config
// @Tags Configs
// @Router /v1/namespaces/{namespace}/configs/{name}/watch [get]
func (s *Service) WatchConfig(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	namespace, name := vars["namespace"], vars["name"]

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Warn("websocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	sub := newWSSubscriber(namespace+"/"+name+"/"+r.RemoteAddr, conn)
	s.Bus.Subscribe(namespace, name, sub)
	defer s.Bus.Unsubscribe(namespace, name, sub)

	s.readPump(sub)
}

// readPump keeps the connection alive with periodic pings and exits
// (unregistering the subscriber) once the client disconnects.
func (s *Service) readPump(sub *wsSubscriber) {
	conn := sub.conn
	_ = conn.SetReadDeadline(time.Now().Add(watchReadDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(watchReadDeadline))
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(watchPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(watchWriteDeadline))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
