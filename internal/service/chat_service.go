package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Abhishekshinde12/Conv-AI/internal/audit"
	"github.com/Abhishekshinde12/Conv-AI/internal/cache"
	"github.com/Abhishekshinde12/Conv-AI/internal/domain"
	"github.com/Abhishekshinde12/Conv-AI/internal/hub"
	"github.com/Abhishekshinde12/Conv-AI/internal/repository"
	"github.com/Abhishekshinde12/Conv-AI/pkg/log"
)

// chatServiceImpl implements ChatService.
type chatServiceImpl struct {
	hub        *hub.Hub
	messages   repository.MessageRepository
	transcript cache.TranscriptCache
}

// NewChatService creates a new chat service.
func NewChatService(h *hub.Hub, messages repository.MessageRepository, transcript cache.TranscriptCache) ChatService {
	return &chatServiceImpl{
		hub:        h,
		messages:   messages,
		transcript: transcript,
	}
}

// HandleConnect joins the already-authenticated client into its
// conversation's group and acknowledges the join.
func (s *chatServiceImpl) HandleConnect(ctx context.Context, c *hub.Client) error {
	s.hub.Join(c, c.ConversationID)
	audit.LogWithDetail(ctx, audit.ActionConnect, c.UserID, c.ConversationID, "client connected")
	return c.SendMessage(domain.NewJoinedAck(c.ConversationID))
}

// HandleInbound processes one raw frame from a joined connection:
// parse, persist, then broadcast the enriched envelope to the group.
//
// A malformed payload is dropped without closing the connection. A failed
// persist is logged and broadcast still proceeds with the data at hand;
// the sender is never told. Both behaviors are deliberate.
func (s *chatServiceImpl) HandleInbound(ctx context.Context, c *hub.Client, raw []byte) {
	l := log.Ctx(ctx)

	var in domain.InboundMessage
	if err := json.Unmarshal(raw, &in); err != nil {
		l.Warn().Err(err).Str(log.FieldClientID, c.ID).Msg("dropping malformed inbound payload")
		return
	}
	if !in.Valid() {
		l.Warn().Str(log.FieldClientID, c.ID).Msg("dropping inbound payload with missing fields")
		return
	}

	timestamp := time.Now().UTC()

	if _, err := s.messages.Create(ctx, in.ConversationID, in.Sender, in.Text); err != nil {
		l.Error().Err(err).
			Str(log.FieldConversationID, in.ConversationID).
			Str(log.FieldSenderID, in.Sender).
			Msg("failed to persist message")
	} else if err := s.transcript.Invalidate(ctx, in.ConversationID); err != nil {
		l.Warn().Err(err).Str(log.FieldConversationID, in.ConversationID).Msg("failed to invalidate transcript cache")
	}

	envelope := &domain.Envelope{
		Type:           domain.MsgTypeChatMessage,
		ConversationID: in.ConversationID,
		Sender:         in.Sender,
		Text:           in.Text,
		Timestamp:      timestamp.Format(time.RFC3339),
	}

	if err := s.hub.Broadcast(in.ConversationID, envelope); err != nil {
		l.Error().Err(err).Str(log.FieldConversationID, in.ConversationID).Msg("failed to broadcast message")
		return
	}

	audit.LogWithDetail(ctx, audit.ActionSendMessage, in.Sender, in.ConversationID, "message broadcast")
}

// HandleDisconnect removes the client from its group. Safe to call for
// clients that never joined.
func (s *chatServiceImpl) HandleDisconnect(ctx context.Context, c *hub.Client) {
	s.hub.Leave(c)
	audit.LogWithDetail(ctx, audit.ActionDisconnect, c.UserID, c.ConversationID, "client disconnected")
}
