package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/Samuliej/mobilechat/pkg/msgcipher"
)

// Message is immutable once created. Content is whatever the sender produced
// with the conversation key; the server never decrypts it. Emoji glyphs travel
// alongside as {glyph, index} pairs to be re-spliced after decryption.
type Message struct {
	ID             uuid.UUID            `json:"id"`
	ConversationID uuid.UUID            `json:"conversation_id"`
	SenderID       uuid.UUID            `json:"sender_id"`
	ReceiverID     uuid.UUID            `json:"receiver_id"`
	Content        string               `json:"content"`
	Emojis         []msgcipher.EmojiRef `json:"emojis,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	// Joined fields
	SenderUsername    string `json:"sender_username,omitempty"`
	SenderDisplayName string `json:"sender_display_name,omitempty"`
}
