package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipDeclined = "declined"
)

// Friendship is the single record for an unordered user pair. SenderID is
// whoever issued the most recent request; a declined row is retained and can
// be flipped back to pending by a later request.
type Friendship struct {
	ID          uuid.UUID  `json:"id"`
	SenderID    uuid.UUID  `json:"sender_id"`
	ReceiverID  uuid.UUID  `json:"receiver_id"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	// Joined fields
	SenderUsername      string `json:"sender_username,omitempty"`
	SenderDisplayName   string `json:"sender_display_name,omitempty"`
	ReceiverUsername    string `json:"receiver_username,omitempty"`
	ReceiverDisplayName string `json:"receiver_display_name,omitempty"`
}

// Friend is a user's view of one accepted friendship.
type Friend struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	FriendsAt   time.Time `json:"friends_at"`
}
