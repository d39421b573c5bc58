package proto

// Message kinds carried in the "type" field.
const (
	TypeJoin    = "join"
	TypeMessage = "message"
	TypeLeave   = "leave"
	TypeSystem  = "system"
)

// SystemUser is the sentinel identity on server-generated notices.
const SystemUser = "system"

// DecodeErrorText is sent back to a connection whose frame could not be decoded.
const DecodeErrorText = "Error processing your message. Please check the format."

// Message is the wire record exchanged with clients, inbound and outbound.
// Identifiers are opaque, case-sensitive strings; the empty string is a valid
// room or user identifier.
type Message struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId,omitempty"`
	UserID string `json:"userId"`
	Text   string `json:"text,omitempty"`
}

// KnownType reports whether t is one of the protocol's message kinds.
func KnownType(t string) bool {
	switch t {
	case TypeJoin, TypeMessage, TypeLeave, TypeSystem:
		return true
	}
	return false
}

// SystemNotice builds a system-kind message addressed to a room.
func SystemNotice(roomID, text string) *Message {
	return &Message{
		Type:   TypeSystem,
		RoomID: roomID,
		UserID: SystemUser,
		Text:   text,
	}
}

// DecodeError builds the single error notice sent to a connection whose
// inbound frame failed to decode. It carries no room.
func DecodeError() *Message {
	return &Message{
		Type:   TypeSystem,
		UserID: SystemUser,
		Text:   DecodeErrorText,
	}
}
