package core

// User is a logical identity bound to at most one live connection at a time.
// The connection handle is non-owning and is replaced wholesale when the same
// identity connects again.
type User struct {
	ID    string
	Conn  Conn
	Rooms map[string]struct{}
}

// Registry maps user identities to their current connection and room set.
// It is not safe for concurrent use; the Hub serializes access.
type Registry struct {
	users map[string]*User
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{users: make(map[string]*User)}
}

// Lookup returns the user for id, if registered.
func (r *Registry) Lookup(id string) (*User, bool) {
	u, ok := r.users[id]
	return u, ok
}

// Bind returns the user for id, creating it on first sight, and points its
// connection handle at conn. Rebinding an existing identity overwrites the
// handle rather than adding a second entry.
func (r *Registry) Bind(id string, conn Conn) *User {
	u, ok := r.users[id]
	if !ok {
		u = &User{ID: id, Rooms: make(map[string]struct{})}
		r.users[id] = u
	}
	u.Conn = conn
	return u
}

// Remove drops the user entry for id, if present.
func (r *Registry) Remove(id string) {
	delete(r.users, id)
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	return len(r.users)
}
