package domain

import "time"

// Task is an actionable item extracted from an email
type Task struct {
	ID           int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       int64      `json:"user_id" gorm:"index;not null"`
	MailID       string     `json:"mail_id,omitempty" gorm:"index"` // Source email, when extracted from one
	Title        string     `json:"title" gorm:"not null"`
	Detail       string     `json:"detail,omitempty"`
	DueAt        *time.Time `json:"due_at,omitempty"`
	IsDone       bool       `json:"is_done" gorm:"default:false"`
	ReminderSent bool       `json:"reminder_sent" gorm:"default:false"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Extraction is the AI-extracted task data from an email body
type Extraction struct {
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
	Due    string `json:"due,omitempty"`
}
