package model

import "time"

// Message represents a persisted chat message between two users
type Message struct {
	ID        string    `json:"_id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PrivateMessageEvent is the realtime relay payload for privateMessage.
// It is never persisted; ClientID lets a sender match it to its optimistic copy.
type PrivateMessageEvent struct {
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Content   string    `json:"content"`
	ClientID  string    `json:"clientId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TypingEvent is used for typing / stopTyping notifications
type TypingEvent struct {
	To   string `json:"to,omitempty"`
	From string `json:"from"`
}
