package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"roomrelay/internal/core"
	"roomrelay/internal/proto"
)

// WSHandler upgrades HTTP connections and bridges them to the hub. Each
// connection carries two pieces of session state: the user identity bound by
// the last join, and the most recently joined room, which gives message
// frames their default target.
type WSHandler struct {
	hub        *core.Hub
	sendBuffer int
	log        *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, sendBuffer int, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, sendBuffer: sendBuffer, log: logger}
}

// session is the per-connection protocol state. bound and roomSet are kept
// apart from the identifier values because the empty string is itself a valid
// user or room identifier.
type session struct {
	conn    *wsConn
	userID  string
	roomID  string
	bound   bool
	roomSet bool
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	sock, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer sock.Close(websocket.StatusInternalError, "internal error")

	sess := &session{conn: newWSConn(sock, h.sendBuffer, h.log)}
	h.log.Debug().Str("conn_id", sess.conn.ID()).Msg("ws connection accepted")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, sock, sess)
	}()
	go func() {
		errCh <- sess.conn.writePump(ctx)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	// Closure is the only cleanup trigger: leave every room the bound
	// identity belongs to, then drop it from the registry. Skipped when the
	// identity already rebound to a newer connection.
	sess.conn.markClosed()
	if sess.bound {
		h.hub.Disconnect(sess.userID, sess.conn)
	}

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("conn_id", sess.conn.ID()).Msg("ws connection closed with error")
		}
	}

	sock.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, sock *websocket.Conn, sess *session) error {
	for {
		_, data, err := sock.Read(ctx)
		if err != nil {
			return err
		}

		var msg proto.Message
		if decodeErr := json.Unmarshal(data, &msg); decodeErr != nil || !proto.KnownType(msg.Type) {
			// Malformed frames cost the sender one error notice, nothing
			// more; the session continues.
			h.log.Debug().Str("conn_id", sess.conn.ID()).Msg("undecodable inbound frame")
			if sendErr := sess.conn.Send(proto.DecodeError()); sendErr != nil {
				h.log.Debug().Err(sendErr).Str("conn_id", sess.conn.ID()).Msg("error notice not delivered")
			}
			continue
		}

		h.dispatch(sess, &msg)
	}
}

// dispatch routes one decoded frame. Identifiers are taken as-is: opaque,
// case-sensitive, empty string included.
func (h *WSHandler) dispatch(sess *session, msg *proto.Message) {
	switch msg.Type {
	case proto.TypeJoin:
		sess.userID = msg.UserID
		sess.roomID = msg.RoomID
		sess.bound = true
		sess.roomSet = true
		h.hub.Join(msg.UserID, msg.RoomID, sess.conn)

	case proto.TypeMessage:
		if !sess.bound {
			return
		}
		roomID := msg.RoomID
		if roomID == "" {
			// An omitted roomId falls back to the session's current room.
			if !sess.roomSet {
				return
			}
			roomID = sess.roomID
		}
		h.hub.Broadcast(roomID, &proto.Message{
			Type:   proto.TypeMessage,
			RoomID: roomID,
			UserID: sess.userID,
			Text:   msg.Text,
		})

	case proto.TypeLeave:
		if !sess.bound {
			return
		}
		h.hub.Leave(sess.userID, msg.RoomID)
		sess.roomID = ""
		sess.roomSet = false

	case proto.TypeSystem:
		// Clients have no business sending system frames; ignored.
	}
}
