package http

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"roomrelay/internal/config"
	"roomrelay/internal/core"
	"roomrelay/internal/proto"
)

func startTestServer(t *testing.T) (*httptest.Server, *core.Hub) {
	t.Helper()

	logger := zerolog.Nop()
	hub := core.NewHub(&logger)

	server := NewServer(hub, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
		SendBuffer:        32,
	}, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, hub
}

func dialWS(t *testing.T, ctx context.Context, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	return conn
}

func sendFrame(t *testing.T, ctx context.Context, conn *websocket.Conn, msg proto.Message) {
	t.Helper()

	if err := wsjson.Write(ctx, conn, msg); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func readFrame(t *testing.T, ctx context.Context, conn *websocket.Conn) proto.Message {
	t.Helper()

	var msg proto.Message
	if err := wsjson.Read(ctx, conn, &msg); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return msg
}

func TestJoinMessageLeaveScenario(t *testing.T) {
	ts, _ := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dialWS(t, ctx, ts)
	defer alice.Close(websocket.StatusNormalClosure, "done")
	bob := dialWS(t, ctx, ts)
	defer bob.Close(websocket.StatusNormalClosure, "done")

	// Alice joins; she is the whole room and receives her own join notice.
	sendFrame(t, ctx, alice, proto.Message{Type: proto.TypeJoin, RoomID: "lobby", UserID: "alice"})
	got := readFrame(t, ctx, alice)
	want := proto.Message{Type: proto.TypeSystem, RoomID: "lobby", UserID: proto.SystemUser, Text: "alice has joined the room."}
	if got != want {
		t.Fatalf("alice join notice = %+v, want %+v", got, want)
	}

	// Bob joins; both members see his notice.
	sendFrame(t, ctx, bob, proto.Message{Type: proto.TypeJoin, RoomID: "lobby", UserID: "bob"})
	want = proto.Message{Type: proto.TypeSystem, RoomID: "lobby", UserID: proto.SystemUser, Text: "bob has joined the room."}
	if got := readFrame(t, ctx, alice); got != want {
		t.Fatalf("alice missed bob's join notice: %+v", got)
	}
	if got := readFrame(t, ctx, bob); got != want {
		t.Fatalf("bob missed his own join notice: %+v", got)
	}

	// Alice sends a message with no roomId; it targets her current room and
	// echoes back to her as well.
	sendFrame(t, ctx, alice, proto.Message{Type: proto.TypeMessage, UserID: "alice", Text: "hi"})
	want = proto.Message{Type: proto.TypeMessage, RoomID: "lobby", UserID: "alice", Text: "hi"}
	if got := readFrame(t, ctx, bob); got != want {
		t.Fatalf("bob's copy = %+v, want %+v", got, want)
	}
	if got := readFrame(t, ctx, alice); got != want {
		t.Fatalf("alice's echo = %+v, want %+v", got, want)
	}

	// Bob leaves: alice gets the room notice, bob gets the direct ack.
	sendFrame(t, ctx, bob, proto.Message{Type: proto.TypeLeave, RoomID: "lobby", UserID: "bob"})
	if got := readFrame(t, ctx, alice); got.Text != "bob has left the room." {
		t.Fatalf("alice's leave notice = %+v", got)
	}
	if got := readFrame(t, ctx, bob); got.Text != "You have left room lobby" {
		t.Fatalf("bob's leave ack = %+v", got)
	}
}

func TestMalformedFrameProducesSingleErrorNotice(t *testing.T) {
	ts, _ := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	if err := conn.Write(ctx, websocket.MessageText, []byte("this is not json")); err != nil {
		t.Fatalf("write raw frame: %v", err)
	}

	got := readFrame(t, ctx, conn)
	want := proto.Message{Type: proto.TypeSystem, UserID: proto.SystemUser, Text: proto.DecodeErrorText}
	if got != want {
		t.Fatalf("error notice = %+v, want %+v", got, want)
	}

	// The connection stays usable: the very next frame after the error
	// notice is the join notice, so exactly one notice was sent.
	sendFrame(t, ctx, conn, proto.Message{Type: proto.TypeJoin, RoomID: "lobby", UserID: "carol"})
	if got := readFrame(t, ctx, conn); got.Text != "carol has joined the room." {
		t.Fatalf("frame after error = %+v", got)
	}
}

func TestUnknownTypeCountsAsDecodeFailure(t *testing.T) {
	ts, _ := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	sendFrame(t, ctx, conn, proto.Message{Type: "shout", RoomID: "lobby", UserID: "alice"})

	if got := readFrame(t, ctx, conn); got.Text != proto.DecodeErrorText {
		t.Fatalf("unknown type response = %+v", got)
	}
}

func TestMessageBeforeJoinIsDropped(t *testing.T) {
	ts, _ := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	// No identity bound yet; the message vanishes without a reply.
	sendFrame(t, ctx, conn, proto.Message{Type: proto.TypeMessage, RoomID: "lobby", UserID: "alice", Text: "anyone?"})

	// The first frame the server ever sends is the join notice below.
	sendFrame(t, ctx, conn, proto.Message{Type: proto.TypeJoin, RoomID: "lobby", UserID: "alice"})
	if got := readFrame(t, ctx, conn); got.Text != "alice has joined the room." {
		t.Fatalf("expected join notice first, got %+v", got)
	}
}

func TestAbruptDisconnectCleansUpMembership(t *testing.T) {
	ts, hub := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dialWS(t, ctx, ts)
	defer alice.Close(websocket.StatusNormalClosure, "done")
	bob := dialWS(t, ctx, ts)

	sendFrame(t, ctx, alice, proto.Message{Type: proto.TypeJoin, RoomID: "lobby", UserID: "alice"})
	readFrame(t, ctx, alice)
	sendFrame(t, ctx, bob, proto.Message{Type: proto.TypeJoin, RoomID: "lobby", UserID: "bob"})
	readFrame(t, ctx, alice)
	readFrame(t, ctx, bob)

	// Bob vanishes without a leave frame.
	bob.Close(websocket.StatusNormalClosure, "gone")

	if got := readFrame(t, ctx, alice); got.Text != "bob has left the room." {
		t.Fatalf("alice's disconnect notice = %+v", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		members, _ := hub.RoomMembers("lobby")
		if len(members) == 1 && members[0] == "alice" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("lobby members after disconnect = %v, want [alice]", members)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
