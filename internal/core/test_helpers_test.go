package core

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"roomrelay/internal/proto"
)

func newTestHub() *Hub {
	logger := zerolog.Nop()
	return NewHub(&logger)
}

// fakeConn records everything sent to it and can be flipped closed to stand
// in for a dropped peer.
type fakeConn struct {
	id string

	mu   sync.Mutex
	open bool
	sent []proto.Message
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id, open: true}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *fakeConn) Send(msg *proto.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return ErrConnClosed
	}
	c.sent = append(c.sent, *msg)
	return nil
}

func (c *fakeConn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
}

func (c *fakeConn) messages() []proto.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]proto.Message, len(c.sent))
	copy(out, c.sent)
	return out
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = nil
}

func mustLastMessage(t *testing.T, c *fakeConn, want proto.Message) {
	t.Helper()

	msgs := c.messages()
	if len(msgs) == 0 {
		t.Fatalf("conn %s received no messages, want %+v", c.id, want)
	}
	got := msgs[len(msgs)-1]
	if got != want {
		t.Fatalf("conn %s last message = %+v, want %+v", c.id, got, want)
	}
}
