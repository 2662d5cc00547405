package cache

import (
	"context"
	"errors"
	"time"

	"github.com/Abhishekshinde12/Conv-AI/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// TranscriptCache caches the ordered message transcript of a conversation.
// Entries are invalidated whenever a new message is persisted.
type TranscriptCache interface {
	Get(ctx context.Context, conversationID string) ([]domain.Message, error)
	Set(ctx context.Context, conversationID string, messages []domain.Message, ttl time.Duration) error
	Invalidate(ctx context.Context, conversationID string) error
	Close() error
}
