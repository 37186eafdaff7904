package repository

import (
	"errors"
	"time"

	"mailmind-backend/internal/conversation/domain"

	"gorm.io/gorm"
)

// gormConversationRepository implements ConversationRepository using GORM
type gormConversationRepository struct {
	db *gorm.DB
}

func NewGormConversationRepository(db *gorm.DB) ConversationRepository {
	return &gormConversationRepository{db: db}
}

func (r *gormConversationRepository) GetOrCreateForUser(userID int64) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.Where("user_id = ?", userID).Order("last_message_at DESC").First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conv = domain.Conversation{
		UserID:        userID,
		Title:         "New conversation",
		CreatedAt:     time.Now(),
		LastMessageAt: time.Now(),
	}
	if err := r.db.Create(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *gormConversationRepository) InsertMessage(conversationID int64, role, content, fileURLs string) (*domain.Message, error) {
	msg := &domain.Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		FileURLs:       fileURLs,
		CreatedAt:      time.Now(),
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Conversation{}).
			Where("id = ?", conversationID).
			Update("last_message_at", msg.CreatedAt).Error
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *gormConversationRepository) CountMessages(conversationID int64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error
	return count, err
}

func (r *gormConversationRepository) UpdateTitle(conversationID int64, title string) error {
	return r.db.Model(&domain.Conversation{}).
		Where("id = ?", conversationID).
		Update("title", title).Error
}

func (r *gormConversationRepository) ListMessages(conversationID int64, limit int) ([]*domain.Message, error) {
	var messages []*domain.Message
	query := r.db.Where("conversation_id = ?", conversationID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}

	// Reverse to oldest first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *gormConversationRepository) ListByUser(userID int64) ([]*domain.Conversation, error) {
	var conversations []*domain.Conversation
	err := r.db.Where("user_id = ?", userID).
		Order("last_message_at DESC").
		Find(&conversations).Error
	return conversations, err
}
