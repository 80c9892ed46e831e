package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	sendQueueSize = 16
	writeTimeout  = 10 * time.Second
)

// client wraps a websocket connection behind a buffered send queue and a
// write pump, so the game core can fan out payloads without ever blocking
// on a slow or dead socket. It implements game.Conn. The pump is the sole
// writer; close frames are routed through it as well.
type client struct {
	id      string
	conn    *websocket.Conn
	send    chan any
	closing chan string
	done    chan struct{}
	once    sync.Once
	log     zerolog.Logger
}

func newClient(conn *websocket.Conn, log zerolog.Logger) *client {
	id := uuid.NewString()
	return &client{
		id:      id,
		conn:    conn,
		send:    make(chan any, sendQueueSize),
		closing: make(chan string, 1),
		done:    make(chan struct{}),
		log:     log.With().Str("conn", id).Logger(),
	}
}

// Send enqueues a payload. A full queue means the peer stopped draining;
// the client is dropped rather than letting the room broadcast stall.
func (c *client) Send(payload any) {
	select {
	case <-c.done:
	case c.send <- payload:
	default:
		c.log.Warn().Msg("send queue full, dropping connection")
		c.shutdown()
	}
}

// Close asks the pump to emit a policy-violation close frame with the
// given reason and tear the connection down.
func (c *client) Close(reason string) {
	select {
	case c.closing <- reason:
	default:
	}
}

func (c *client) shutdown() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *client) writePump() {
	defer c.shutdown()
	for {
		select {
		case <-c.done:
			return
		case reason := <-c.closing:
			msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = c.conn.WriteMessage(websocket.CloseMessage, msg)
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(payload); err != nil {
				c.log.Debug().Err(err).Msg("write failed")
				return
			}
		}
	}
}
