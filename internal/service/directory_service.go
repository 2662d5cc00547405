package service

import (
	"context"
	"errors"

	"github.com/Abhishekshinde12/Conv-AI/internal/audit"
	"github.com/Abhishekshinde12/Conv-AI/internal/domain"
	"github.com/Abhishekshinde12/Conv-AI/internal/repository"
	"github.com/Abhishekshinde12/Conv-AI/pkg/log"
)

var (
	ErrCustomerNotFound       = errors.New("customer not found")
	ErrRepresentativeNotFound = errors.New("representative not found")
	ErrNoRepresentative       = errors.New("no representative available")
	ErrConversationNotFound   = errors.New("conversation not found")
)

// directoryServiceImpl implements DirectoryService.
type directoryServiceImpl struct {
	users         repository.UserRepository
	conversations repository.ConversationRepository
}

// NewDirectoryService creates a new directory service.
func NewDirectoryService(users repository.UserRepository, conversations repository.ConversationRepository) DirectoryService {
	return &directoryServiceImpl{
		users:         users,
		conversations: conversations,
	}
}

// GetOrCreateConversation returns the id of the conversation between the
// customer and the representative, creating it on first call. The
// representative is simply the first one found; no availability signal is
// consulted.
func (s *directoryServiceImpl) GetOrCreateConversation(ctx context.Context, customerID string) (string, error) {
	customer, err := s.users.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrCustomerNotFound
		}
		return "", err
	}

	representative, err := s.users.GetRepresentative(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrNoRepresentative
		}
		return "", err
	}

	conversation, err := s.conversations.GetOrCreate(ctx, customer.ID, representative.ID)
	if err != nil {
		return "", err
	}

	audit.LogWithDetail(ctx, audit.ActionCreateConversation, customer.ID, conversation.ID, "conversation resolved")
	return conversation.ID, nil
}

// ListConversationsForRepresentative returns every conversation the
// representative takes part in, each with the peer's display name. A
// representative with no conversations gets an empty list, not an error.
func (s *directoryServiceImpl) ListConversationsForRepresentative(ctx context.Context, representativeID string) ([]domain.ConversationSummary, error) {
	l := log.Ctx(ctx)

	representative, err := s.users.GetByID(ctx, representativeID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrRepresentativeNotFound
		}
		return nil, err
	}
	if representative.Role != domain.RoleRepresentative {
		return nil, ErrRepresentativeNotFound
	}

	conversations, err := s.conversations.ListByParticipant(ctx, representative.ID)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		peerID := conv.Peer(representative.ID)
		peer, err := s.users.GetByID(ctx, peerID)
		if err != nil {
			// Peer deleted out from under the conversation; skip it.
			l.Warn().Err(err).Str(log.FieldConversationID, conv.ID).Msg("failed to resolve conversation peer")
			continue
		}
		summaries = append(summaries, domain.ConversationSummary{
			ConversationID: conv.ID,
			UserName:       peer.DisplayName(),
		})
	}

	return summaries, nil
}
