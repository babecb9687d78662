package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vv031/Stock-Market/internal/contracts"
	"github.com/vv031/Stock-Market/pkg/logger"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ViewStream pushes every view-state transition to WebSocket clients. It
// relays what selections produce and never fetches on its own.
type ViewStream struct {
	selector Selector
	logger   *logger.Logger
}

// NewViewStream creates a new view-state relay
func NewViewStream(selector Selector, log *logger.Logger) *ViewStream {
	return &ViewStream{
		selector: selector,
		logger:   log,
	}
}

// ServeHTTP upgrades the connection and streams view-states until the
// client goes away
// GET /ws/view
func (s *ViewStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to upgrade websocket")
		return
	}

	updates, unsubscribe := s.selector.Subscribe()
	done := make(chan struct{})

	s.logger.WithField("remote", r.RemoteAddr).Debug("View stream client connected")

	go s.readPump(conn, done)
	s.writePump(conn, updates, done)

	unsubscribe()
	conn.Close()
	s.logger.WithField("remote", r.RemoteAddr).Debug("View stream client disconnected")
}

// readPump only watches the connection: pongs extend the deadline and any
// read error closes done. Client messages are ignored.
func (s *ViewStream) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.WithError(err).Debug("View stream read error")
			}
			return
		}
	}
}

func (s *ViewStream) writePump(conn *websocket.Conn, updates <-chan contracts.ViewState, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case state := <-updates:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(newViewResponse(state)); err != nil {
				s.logger.WithError(err).Debug("View stream write error")
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
