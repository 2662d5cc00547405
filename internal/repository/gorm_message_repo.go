package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Abhishekshinde12/Conv-AI/internal/domain"
	"github.com/Abhishekshinde12/Conv-AI/pkg/log"
)

// GormMessageRepository implements MessageRepository using GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM-based message repository.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Create stores a new message with a server-assigned UTC timestamp after
// checking that the referenced conversation and sender exist.
func (r *GormMessageRepository) Create(ctx context.Context, conversationID, senderID, text string) (*domain.Message, error) {
	l := log.Ctx(ctx)

	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.ConversationModel{}).
		Where("id = ?", conversationID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrConversationNotFound
	}

	if err := r.db.WithContext(ctx).Model(&domain.UserModel{}).
		Where("id = ?", senderID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrUserNotFound
	}

	model := domain.MessageModel{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		CreatedAt:      time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		l.Error().Err(err).Str(log.FieldConversationID, conversationID).Msg("failed to create message in db")
		return nil, err
	}

	return model.ToDomain(), nil
}

// ListByConversation returns the conversation transcript ordered by
// created_at ascending; the insert id breaks timestamp ties.
func (r *GormMessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	l := log.Ctx(ctx)

	var models []domain.MessageModel
	result := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at, id").
		Find(&models)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldConversationID, conversationID).Msg("failed to list messages")
		return nil, result.Error
	}

	messages := make([]domain.Message, len(models))
	for i, model := range models {
		messages[i] = *model.ToDomain()
	}
	return messages, nil
}
