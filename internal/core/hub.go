package core

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"roomrelay/internal/proto"
)

// Hub coordinates presence: it owns the user registry and room directory,
// keeps them mutually consistent across joins, leaves and disconnects, and
// emits the system notices that accompany presence changes. The transport
// runs a goroutine per connection, so every state transition is serialized
// behind the hub mutex; the broadcaster reads the shared maps only while the
// mutex is held.
type Hub struct {
	mu          sync.Mutex
	registry    *Registry
	directory   *Directory
	broadcaster *Broadcaster
	log         *zerolog.Logger
}

// NewHub constructs a hub with empty registry and directory.
func NewHub(logger *zerolog.Logger) *Hub {
	registry := NewRegistry()
	directory := NewDirectory()
	return &Hub{
		registry:    registry,
		directory:   directory,
		broadcaster: NewBroadcaster(registry, directory, logger),
		log:         logger,
	}
}

// Join binds userID to conn (creating the user on first sight, re-pointing
// the handle on reconnect) and adds it to roomID, creating the room if
// absent. Joining a room the user already belongs to leaves membership
// untouched. A join notice is broadcast to the room either way, joiner
// included.
func (h *Hub) Join(userID, roomID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	user := h.registry.Bind(userID, conn)
	if _, member := user.Rooms[roomID]; !member {
		user.Rooms[roomID] = struct{}{}
		h.directory.Add(roomID, userID)
	}

	h.log.Info().Str("user", userID).Str("room", roomID).Msg("user joined room")
	h.broadcaster.Deliver(roomID, proto.SystemNotice(roomID, fmt.Sprintf("%s has joined the room.", userID)))
}

// Leave removes userID from roomID on both sides of the membership mapping,
// dropping the room once its member set empties. Leaving a room the user
// never joined is a no-op: no notice, no error. Otherwise the remaining
// members are told the user left, and the leaver's own connection receives a
// direct acknowledgment if it is still open.
func (h *Hub) Leave(userID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(userID, roomID)
}

func (h *Hub) leaveLocked(userID, roomID string) {
	user, ok := h.registry.Lookup(userID)
	if !ok {
		return
	}
	if _, member := user.Rooms[roomID]; !member {
		return
	}

	delete(user.Rooms, roomID)
	h.directory.Remove(roomID, userID)

	h.log.Info().Str("user", userID).Str("room", roomID).Msg("user left room")
	h.broadcaster.Deliver(roomID, proto.SystemNotice(roomID, fmt.Sprintf("%s has left the room.", userID)))

	if user.Conn != nil && user.Conn.IsOpen() {
		if err := user.Conn.Send(proto.SystemNotice(roomID, fmt.Sprintf("You have left room %s", roomID))); err != nil {
			h.log.Debug().Err(err).Str("user", userID).Msg("leave ack not delivered")
		}
	}
}

// Disconnect runs the cleanup for a closed connection: the user leaves every
// room it belonged to and is then removed from the registry. When conn is
// non-nil and no longer the user's current handle (the identity reconnected
// elsewhere before the old socket's close fired), the cleanup is skipped so
// the live session stays registered.
func (h *Hub) Disconnect(userID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	user, ok := h.registry.Lookup(userID)
	if !ok {
		return
	}
	if conn != nil && user.Conn != conn {
		h.log.Debug().Str("user", userID).Msg("stale close ignored, user rebound")
		return
	}

	rooms := make([]string, 0, len(user.Rooms))
	for roomID := range user.Rooms {
		rooms = append(rooms, roomID)
	}
	for _, roomID := range rooms {
		h.leaveLocked(userID, roomID)
	}

	h.registry.Remove(userID)
	h.log.Info().Str("user", userID).Msg("user disconnected")
}

// Broadcast fans msg out to every live member of roomID. The full fan-out
// completes before Broadcast returns, so notices and messages issued by
// sequential operations reach each member in operation order.
func (h *Hub) Broadcast(roomID string, msg *proto.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcaster.Deliver(roomID, msg)
}

// RoomSnapshot describes one room's current occupancy.
type RoomSnapshot struct {
	RoomID  string `json:"roomId"`
	Members int    `json:"members"`
}

// Rooms returns a snapshot of all current rooms, sorted by identifier.
func (h *Hub) Rooms() []RoomSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := h.directory.Rooms()
	out := make([]RoomSnapshot, 0, len(ids))
	for _, id := range ids {
		out = append(out, RoomSnapshot{RoomID: id, Members: h.directory.MemberCount(id)})
	}
	return out
}

// RoomMembers returns the member identities of roomID, sorted, and whether
// the room currently exists.
func (h *Hub) RoomMembers(roomID string) ([]string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := h.directory.Members(roomID)
	if members == nil {
		return nil, false
	}
	sort.Strings(members)
	return members, true
}
