package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxContentLen bounds message content, in runes.
const MaxContentLen = 512

type ChatMessage struct {
	ID          uuid.UUID  `json:"id"`
	Content     string     `json:"content"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
	IsEdited    bool       `json:"is_edited"`
	IsDeleted   bool       `json:"is_deleted"`
	SenderID    uuid.UUID  `json:"sender_id"`
	RecipientID uuid.UUID  `json:"recipient_id"`
}

// ConversationItem is one entry of a user's conversation list: the partner
// plus the latest non-deleted message exchanged with them.
type ConversationItem struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
}
