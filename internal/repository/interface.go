package repository

import (
	"context"
	"errors"

	"github.com/Abhishekshinde12/Conv-AI/internal/domain"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrConversationNotFound = errors.New("conversation not found")
)

// UserRepository reads users. The users table is owned by the auth
// service; Create exists for seeding and tests only.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetRepresentative returns the first user with the representative
	// role. No availability signal is consulted.
	GetRepresentative(ctx context.Context) (*domain.User, error)
}

// ConversationRepository persists the unique channel between two users.
type ConversationRepository interface {
	// GetOrCreate returns the conversation between the two participants,
	// creating it if absent. Concurrent calls for the same pair resolve
	// to a single row.
	GetOrCreate(ctx context.Context, participantA, participantB string) (*domain.Conversation, error)
	GetByID(ctx context.Context, id string) (*domain.Conversation, error)
	ListByParticipant(ctx context.Context, userID string) ([]domain.Conversation, error)
}

// MessageRepository persists ordered conversation messages.
type MessageRepository interface {
	// Create stores a new message with a server-assigned timestamp and
	// returns it. Fails with ErrConversationNotFound / ErrUserNotFound
	// if the referenced rows are missing.
	Create(ctx context.Context, conversationID, senderID, text string) (*domain.Message, error)
	// ListByConversation returns messages ordered by created_at ascending.
	ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error)
}
