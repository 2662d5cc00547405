package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Abhishekshinde12/Conv-AI/internal/cache"
	"github.com/Abhishekshinde12/Conv-AI/internal/domain"
	"github.com/Abhishekshinde12/Conv-AI/internal/repository"
	"github.com/Abhishekshinde12/Conv-AI/pkg/log"
)

// historyServiceImpl serves transcripts cache-aside: redis first, then the
// message repository, with singleflight collapsing concurrent identical reads.
type historyServiceImpl struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	transcript    cache.TranscriptCache
	cacheTTL      time.Duration
	sf            singleflight.Group
}

// NewHistoryService creates a new history service.
func NewHistoryService(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	transcript cache.TranscriptCache,
	cacheTTL time.Duration,
) HistoryService {
	return &historyServiceImpl{
		conversations: conversations,
		messages:      messages,
		transcript:    transcript,
		cacheTTL:      cacheTTL,
	}
}

// GetTranscript returns the conversation's messages ordered by created_at
// ascending. Unknown conversations yield ErrConversationNotFound.
func (s *historyServiceImpl) GetTranscript(ctx context.Context, conversationID string) ([]domain.Message, error) {
	if _, err := s.conversations.GetByID(ctx, conversationID); err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	result, err, _ := s.sf.Do(conversationID, func() (interface{}, error) {
		return s.fetchWithCache(ctx, conversationID)
	})
	if err != nil {
		return nil, err
	}

	messages, ok := result.([]domain.Message)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from singleflight")
	}
	return messages, nil
}

func (s *historyServiceImpl) fetchWithCache(ctx context.Context, conversationID string) ([]domain.Message, error) {
	cached, err := s.transcript.Get(ctx, conversationID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("cache get error")
	}

	messages, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages from repository: %w", err)
	}

	// Store in cache (async to avoid blocking the response).
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.transcript.Set(cacheCtx, conversationID, messages, s.cacheTTL); err != nil {
			l := log.L()
			l.Warn().Err(err).Msg("cache set error")
		}
	}()

	return messages, nil
}
