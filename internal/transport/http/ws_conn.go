package http

import (
	"context"
	"sync/atomic"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"roomrelay/internal/core"
	"roomrelay/internal/proto"
)

// wsConn adapts a websocket connection to core.Conn. Outbound messages go
// through a buffered outbox drained by a single write pump, so Send never
// blocks: a slow consumer drops its own messages instead of stalling a
// broadcast in progress.
type wsConn struct {
	id     string
	sock   *websocket.Conn
	outbox chan *proto.Message
	closed atomic.Bool
	log    *zerolog.Logger
}

func newWSConn(sock *websocket.Conn, sendBuffer int, logger *zerolog.Logger) *wsConn {
	if sendBuffer <= 0 {
		sendBuffer = 32
	}
	return &wsConn{
		id:     uuid.NewString(),
		sock:   sock,
		outbox: make(chan *proto.Message, sendBuffer),
		log:    logger,
	}
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) IsOpen() bool { return !c.closed.Load() }

func (c *wsConn) Send(msg *proto.Message) error {
	if c.closed.Load() {
		return core.ErrConnClosed
	}
	select {
	case c.outbox <- msg:
		return nil
	default:
		return core.ErrSendBufferFull
	}
}

// markClosed flips the handle to its terminal state. Registry lookups that
// still hold this conn will skip it from now on.
func (c *wsConn) markClosed() {
	c.closed.Store(true)
}

// writePump drains the outbox onto the socket. A write failure closes the
// handle; messages still queued are discarded.
func (c *wsConn) writePump(ctx context.Context) error {
	for {
		select {
		case msg := <-c.outbox:
			if err := wsjson.Write(ctx, c.sock, msg); err != nil {
				c.markClosed()
				c.log.Debug().Err(err).Str("conn_id", c.id).Msg("write ws outbound")
				return err
			}
		case <-ctx.Done():
			c.markClosed()
			return ctx.Err()
		}
	}
}
