package core

import (
	"github.com/rs/zerolog"

	"roomrelay/internal/proto"
)

// Broadcaster fans one message out to every live connection in a room.
// It only reads the directory and registry; all mutation stays with the Hub,
// which also serializes calls into Deliver.
type Broadcaster struct {
	registry  *Registry
	directory *Directory
	log       *zerolog.Logger
}

// NewBroadcaster constructs a broadcaster over the given registry and directory.
func NewBroadcaster(registry *Registry, directory *Directory, logger *zerolog.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, directory: directory, log: logger}
}

// Deliver sends msg to every member of roomID whose connection is currently
// open. Members without a live connection are skipped silently; a failed
// enqueue on one connection never aborts delivery to the rest. Delivering to
// an unknown room is a no-op.
func (b *Broadcaster) Deliver(roomID string, msg *proto.Message) {
	for _, userID := range b.directory.Members(roomID) {
		user, ok := b.registry.Lookup(userID)
		if !ok || user.Conn == nil {
			continue
		}
		if !user.Conn.IsOpen() {
			continue
		}
		if err := user.Conn.Send(msg); err != nil {
			b.log.Debug().
				Err(err).
				Str("conn_id", user.Conn.ID()).
				Str("user", userID).
				Str("room", roomID).
				Msg("skipped delivery")
		}
	}
}
