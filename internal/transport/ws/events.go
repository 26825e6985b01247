package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Samuliej/mobilechat/internal/domain"
	"github.com/Samuliej/mobilechat/pkg/msgcipher"
)

// Event types - Client → Server
const (
	EventTypeSendFriendRequest   = "sendFriendRequest"
	EventTypeAcceptFriendRequest = "acceptFriendRequest"
	EventTypePing                = "ping"
)

// Event types - Server → Client
const (
	EventTypeFriendRequestSent     = "friendRequestSent"
	EventTypeFriendRequest         = "friendRequest"
	EventTypeFriendRequestAccepted = "friendRequestAccepted"
	EventTypePong                  = "pong"
	EventTypeError                 = "error"
)

// EventTypeMessage flows both ways: the sender submits one, the relay pushes
// the persisted copy to both participants.
const EventTypeMessage = "message"

// Event is the envelope for all WebSocket traffic. The type tag selects which
// payload struct applies; anything outside the closed set is rejected before
// dispatch.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type SendFriendRequestPayload struct {
	Username string `json:"username"`
}

type AcceptFriendRequestPayload struct {
	RequestID uuid.UUID `json:"request_id"`
}

type SendMessagePayload struct {
	ConversationID uuid.UUID            `json:"conversation_id"`
	Content        string               `json:"content"`
	Emojis         []msgcipher.EmojiRef `json:"emojis,omitempty"`
	Timestamp      *time.Time           `json:"timestamp,omitempty"`
}

// --- Server → Client payloads ---

type FriendRequestPayload struct {
	domain.Friendship
}

type MessagePayload struct {
	domain.Message
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
