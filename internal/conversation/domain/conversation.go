package domain

import "time"

// Conversation groups the exchange history between a user and the
// assistant
type Conversation struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID        int64     `json:"user_id" gorm:"index;not null"`
	Title         string    `json:"title"`
	CreatedAt     time.Time `json:"created_at"`
	LastMessageAt time.Time `json:"last_message_at" gorm:"index"`
}

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a conversation
type Message struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ConversationID int64     `json:"conversation_id" gorm:"index;not null"`
	Role           string    `json:"role" gorm:"not null"`
	Content        string    `json:"content"`
	FileURLs       string    `json:"file_urls,omitempty"` // Comma-separated uploaded file references
	CreatedAt      time.Time `json:"created_at"`
}
