// Package realtime implements the chat gateway: per-user rooms, event relay
// and optional cross-instance fan-out.
package realtime

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Event names exchanged over the socket
const (
	EventConnected      = "connected"
	EventJoinRoom       = "joinRoom"
	EventPrivateMessage = "privateMessage"
	EventTyping         = "typing"
	EventStopTyping     = "stopTyping"
)

// Frame is one socket message: {"event": "...", "data": {...}}
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewFrame marshals data into a frame for event
func NewFrame(event string, data any) (Frame, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	return Frame{Event: event, Data: raw}, nil
}

// ConnectedEvent is sent to a connection once it has joined its personal room
type ConnectedEvent struct {
	SocketID string `json:"socketId"`
	UserID   string `json:"userId"`
}

// JoinRoomRequest is the joinRoom payload
type JoinRoomRequest struct {
	UserID      string `json:"userId"`
	OtherUserID string `json:"otherUserId"`
}

// PrivateMessageRequest is the privateMessage payload sent by clients
type PrivateMessageRequest struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Content  string `json:"content"`
	ClientID string `json:"clientId,omitempty"`
}

// PersonalRoom is the room every connection of userID joins
func PersonalRoom(userID string) string {
	return userID
}

// LegacyRoom is the deterministic two-party room: both ids sorted and joined with "-"
func LegacyRoom(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "-")
}
