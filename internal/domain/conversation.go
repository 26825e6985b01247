package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversation holds the message history between exactly two users. The
// symmetric key is generated at creation and handed to both participants in
// API responses; messages are stored as the ciphertext the sender produced
// with it.
type Conversation struct {
	ID            uuid.UUID `json:"id"`
	User1ID       uuid.UUID `json:"user1_id"`
	User2ID       uuid.UUID `json:"user2_id"`
	EncryptionKey []byte    `json:"encryption_key"`
	CreatedAt     time.Time `json:"created_at"`
	LastMessageAt time.Time `json:"last_message_at"`
	// Joined fields for conversation lists
	OtherUserID          uuid.UUID `json:"other_user_id"`
	OtherUserUsername    string    `json:"other_username"`
	OtherUserDisplayName string    `json:"other_display_name"`
}

// Participant reports whether userID is one of the two parties.
func (c *Conversation) Participant(userID uuid.UUID) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OtherParty returns the participant that is not userID.
func (c *Conversation) OtherParty(userID uuid.UUID) uuid.UUID {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}
