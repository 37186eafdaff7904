package domain

import "time"

// EmailRecord is the persisted outcome of processing an incoming email
type EmailRecord struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     int64     `json:"user_id" gorm:"index;not null"`
	MailID     string    `json:"mail_id" gorm:"uniqueIndex;not null"`
	Subject    string    `json:"subject"`
	Sender     string    `json:"sender"`
	Category   string    `json:"category" gorm:"index"`
	Summary    string    `json:"summary"`
	Outcome    string    `json:"outcome"`
	DraftReply string    `json:"draft_reply,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
