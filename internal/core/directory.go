package core

import "sort"

// Directory maps room identifiers to their member user identities. Rooms come
// into existence on first join and vanish when their last member is removed.
// It is not safe for concurrent use; the Hub serializes access.
type Directory struct {
	rooms map[string]map[string]struct{}
}

// NewDirectory constructs an empty directory.
func NewDirectory() *Directory {
	return &Directory{rooms: make(map[string]map[string]struct{})}
}

// Add inserts userID into roomID's member set, creating the room if absent.
// Returns true if the membership is new.
func (d *Directory) Add(roomID, userID string) bool {
	members, ok := d.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		d.rooms[roomID] = members
	}
	if _, exists := members[userID]; exists {
		return false
	}
	members[userID] = struct{}{}
	return true
}

// Remove deletes userID from roomID's member set and drops the room entirely
// once the set empties. Returns true if the user was a member.
func (d *Directory) Remove(roomID, userID string) bool {
	members, ok := d.rooms[roomID]
	if !ok {
		return false
	}
	if _, exists := members[userID]; !exists {
		return false
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(d.rooms, roomID)
	}
	return true
}

// Contains reports whether userID is a member of roomID.
func (d *Directory) Contains(roomID, userID string) bool {
	members, ok := d.rooms[roomID]
	if !ok {
		return false
	}
	_, exists := members[userID]
	return exists
}

// Members returns a snapshot of roomID's member identities. Membership changes
// after the snapshot do not affect a delivery already in progress.
func (d *Directory) Members(roomID string) []string {
	members, ok := d.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}

// Rooms returns the current room identifiers, sorted.
func (d *Directory) Rooms() []string {
	out := make([]string, 0, len(d.rooms))
	for id := range d.rooms {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MemberCount returns the size of roomID's member set, or 0 if the room does
// not exist.
func (d *Directory) MemberCount(roomID string) int {
	return len(d.rooms[roomID])
}

// Len returns the number of rooms.
func (d *Directory) Len() int {
	return len(d.rooms)
}
