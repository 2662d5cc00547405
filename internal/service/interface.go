package service

import (
	"context"

	"github.com/Abhishekshinde12/Conv-AI/internal/domain"
	"github.com/Abhishekshinde12/Conv-AI/internal/hub"
)

// DirectoryService resolves the unique conversation between a customer and
// a representative and lists a representative's conversations.
type DirectoryService interface {
	GetOrCreateConversation(ctx context.Context, customerID string) (string, error)
	ListConversationsForRepresentative(ctx context.Context, representativeID string) ([]domain.ConversationSummary, error)
}

// ChatService handles the realtime path: joining a conversation group and
// processing inbound messages.
type ChatService interface {
	HandleConnect(ctx context.Context, c *hub.Client) error
	HandleInbound(ctx context.Context, c *hub.Client, raw []byte)
	HandleDisconnect(ctx context.Context, c *hub.Client)
}

// HistoryService serves ordered conversation transcripts.
type HistoryService interface {
	GetTranscript(ctx context.Context, conversationID string) ([]domain.Message, error)
}
