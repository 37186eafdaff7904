package repository

import (
	"mailmind-backend/internal/conversation/domain"
)

// ConversationRepository defines data access for conversations and
// their messages
type ConversationRepository interface {
	// GetOrCreateForUser returns the user's active conversation,
	// creating one when none exists
	GetOrCreateForUser(userID int64) (*domain.Conversation, error)

	// InsertMessage appends a message and bumps the conversation's
	// last message timestamp. fileURLs is optional.
	InsertMessage(conversationID int64, role, content, fileURLs string) (*domain.Message, error)

	// CountMessages returns the number of messages in a conversation
	CountMessages(conversationID int64) (int64, error)

	// UpdateTitle sets the conversation title
	UpdateTitle(conversationID int64, title string) error

	// ListMessages returns the most recent messages, oldest first
	ListMessages(conversationID int64, limit int) ([]*domain.Message, error)

	// ListByUser returns the user's conversations, most recent first
	ListByUser(userID int64) ([]*domain.Conversation, error)
}
