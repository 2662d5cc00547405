package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Abhishekshinde12/Conv-AI/internal/domain"
	"github.com/Abhishekshinde12/Conv-AI/pkg/log"
)

// GormConversationRepository implements ConversationRepository using GORM.
type GormConversationRepository struct {
	db *gorm.DB
}

// NewGormConversationRepository creates a new GORM-based conversation repository.
func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

// GetOrCreate returns the conversation between the two participants,
// creating it if absent. The insert is ON CONFLICT DO NOTHING against the
// pair_key unique index; a zero-row result means another caller won the
// race, so the existing row is fetched instead. At most one conversation
// exists per unordered pair.
func (r *GormConversationRepository) GetOrCreate(ctx context.Context, participantA, participantB string) (*domain.Conversation, error) {
	l := log.Ctx(ctx)

	pairKey := domain.PairKey(participantA, participantB)

	var existing domain.ConversationModel
	result := r.db.WithContext(ctx).First(&existing, "pair_key = ?", pairKey)
	if result.Error == nil {
		return existing.ToDomain(), nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		l.Error().Err(result.Error).Msg("failed to look up conversation by pair")
		return nil, result.Error
	}

	model := domain.ConversationModel{
		ID:           uuid.New().String(),
		ParticipantA: participantA,
		ParticipantB: participantB,
		PairKey:      pairKey,
	}

	insert := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair_key"}},
			DoNothing: true,
		}).
		Create(&model)
	if insert.Error != nil {
		l.Error().Err(insert.Error).Msg("failed to create conversation in db")
		return nil, insert.Error
	}

	if insert.RowsAffected == 0 {
		// Lost the race; fetch the row the winner created.
		if err := r.db.WithContext(ctx).First(&model, "pair_key = ?", pairKey).Error; err != nil {
			return nil, fmt.Errorf("conversation conflict fetch failed: %w", err)
		}
		return model.ToDomain(), nil
	}

	l.Debug().Str(log.FieldConversationID, model.ID).Msg("conversation created in db")
	return model.ToDomain(), nil
}

// GetByID retrieves a conversation by ID.
func (r *GormConversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	l := log.Ctx(ctx)

	var model domain.ConversationModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		l.Error().Err(result.Error).Str(log.FieldConversationID, id).Msg("failed to get conversation by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// ListByParticipant retrieves every conversation the user takes part in.
func (r *GormConversationRepository) ListByParticipant(ctx context.Context, userID string) ([]domain.Conversation, error) {
	l := log.Ctx(ctx)

	var models []domain.ConversationModel
	result := r.db.WithContext(ctx).
		Where("participant_a = ? OR participant_b = ?", userID, userID).
		Order("created_at").
		Find(&models)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldUserID, userID).Msg("failed to list conversations")
		return nil, result.Error
	}

	conversations := make([]domain.Conversation, len(models))
	for i, model := range models {
		conversations[i] = *model.ToDomain()
	}
	return conversations, nil
}
