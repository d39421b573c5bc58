package core

import (
	"fmt"
	"testing"

	"roomrelay/internal/proto"
)

func benchmarkRoomBroadcast(b *testing.B, recipients int) {
	hub := newTestHub()

	for i := 0; i < recipients; i++ {
		id := fmt.Sprintf("user%d", i)
		hub.Join(id, "bench", &discardConn{id: id})
	}

	msg := &proto.Message{Type: proto.TypeMessage, RoomID: "bench", UserID: "user0", Text: "payload"}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		hub.Broadcast("bench", msg)
	}
}

func BenchmarkRoomBroadcast_10(b *testing.B)  { benchmarkRoomBroadcast(b, 10) }
func BenchmarkRoomBroadcast_100(b *testing.B) { benchmarkRoomBroadcast(b, 100) }
func BenchmarkRoomBroadcast_500(b *testing.B) { benchmarkRoomBroadcast(b, 500) }

type discardConn struct {
	id string
}

func (c *discardConn) ID() string                  { return c.id }
func (c *discardConn) IsOpen() bool                { return true }
func (c *discardConn) Send(_ *proto.Message) error { return nil }
