package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roomrelay/internal/core"
)

// ErrorResponse is the JSON body for REST errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomsResponse lists the rooms that currently exist.
type RoomsResponse struct {
	Rooms []core.RoomSnapshot `json:"rooms"`
}

// RoomMembersResponse lists one room's current members.
type RoomMembersResponse struct {
	RoomID  string   `json:"roomId"`
	Members []string `json:"members"`
}

// listRoomsHandler returns a snapshot of all rooms with member counts. Rooms
// exist only while occupied, so an idle relay reports an empty list.
func listRoomsHandler(hub *core.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		rooms := hub.Rooms()
		if rooms == nil {
			rooms = []core.RoomSnapshot{}
		}
		c.JSON(http.StatusOK, RoomsResponse{Rooms: rooms})
	}
}

// roomMembersHandler returns the member identities of one room, 404 when the
// room has no members and therefore does not exist.
func roomMembersHandler(hub *core.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Param("room")
		members, ok := hub.RoomMembers(roomID)
		if !ok {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		c.JSON(http.StatusOK, RoomMembersResponse{RoomID: roomID, Members: members})
	}
}
