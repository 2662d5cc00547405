package domain

import (
	"time"
)

// Conversation is the unique channel between exactly two users.
// The unordered participant pair is unique across all conversations.
type Conversation struct {
	ID           string    `json:"id"`
	ParticipantA string    `json:"participant_a"`
	ParticipantB string    `json:"participant_b"`
	CreatedAt    time.Time `json:"created_at"`
}

// Peer returns the other participant of the conversation.
func (c *Conversation) Peer(userID string) string {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}

// PairKey normalizes an unordered participant pair into a stable key.
// The unique index on this key is what makes get-or-create race-safe.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

// ConversationModel is the GORM model for the conversations table.
type ConversationModel struct {
	ID           string    `gorm:"type:varchar(36);primaryKey"`
	ParticipantA string    `gorm:"type:varchar(36);index;not null"`
	ParticipantB string    `gorm:"type:varchar(36);index;not null"`
	PairKey      string    `gorm:"type:varchar(73);uniqueIndex;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for ConversationModel.
func (ConversationModel) TableName() string {
	return "conversations"
}

// ToDomain converts ConversationModel to domain Conversation.
func (m *ConversationModel) ToDomain() *Conversation {
	return &Conversation{
		ID:           m.ID,
		ParticipantA: m.ParticipantA,
		ParticipantB: m.ParticipantB,
		CreatedAt:    m.CreatedAt,
	}
}

// ConversationSummary pairs a conversation with the peer's display name,
// as returned by the representative listing.
type ConversationSummary struct {
	ConversationID string `json:"conversation_id"`
	UserName       string `json:"user_name"`
}
