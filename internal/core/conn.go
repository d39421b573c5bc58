package core

import (
	"errors"

	"roomrelay/internal/proto"
)

var (
	// ErrConnClosed is returned by Send once a connection is no longer open.
	ErrConnClosed = errors.New("connection closed")
	// ErrSendBufferFull is returned when a slow consumer's outbox is full
	// and the message was dropped.
	ErrSendBufferFull = errors.New("send buffer full")
)

// Conn is the core's view of a client connection. The transport owns the
// underlying socket; the registry only holds this handle and must tolerate
// it going stale at any moment. A closed handle is a normal state, not a
// fault: callers check IsOpen before writing and treat a Send error as a
// skipped delivery.
type Conn interface {
	// ID identifies the connection for logging.
	ID() string
	// IsOpen reports whether the connection can still accept writes.
	IsOpen() bool
	// Send enqueues a message for delivery. It never blocks; it reports
	// ErrConnClosed or ErrSendBufferFull when delivery is impossible.
	Send(msg *proto.Message) error
}
