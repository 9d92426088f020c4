package services

import (
	"context"
	"fmt"

	"github.com/jasonoc/plato/internal/database"
	"gorm.io/gorm"
)

// ConversationService persists chat turns so the LLM gets a bounded recency
// window of context.
type ConversationService struct {
	db *gorm.DB
}

func NewConversationService(db *gorm.DB) *ConversationService {
	return &ConversationService{db: db}
}

func (s *ConversationService) Save(ctx context.Context, role, content string) error {
	record := &database.Conversation{Role: role, Content: content}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to save conversation turn: %w", err)
	}
	return nil
}

// Recent returns the last limit turns in chronological order.
func (s *ConversationService) Recent(ctx context.Context, limit int) ([]database.Conversation, error) {
	var turns []database.Conversation
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&turns).Error; err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}
	// reverse into chronological order
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func (s *ConversationService) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&database.Conversation{}).Error; err != nil {
		return fmt.Errorf("failed to clear conversation history: %w", err)
	}
	return nil
}
