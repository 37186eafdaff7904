package repository

import (
	"time"

	"mailmind-backend/internal/task/domain"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *domain.Task) error

	// FindByID finds a task by its ID
	FindByID(id int64) (*domain.Task, error)

	// FindByUserID returns a user's tasks ordered by due time, tasks
	// without a due time last
	FindByUserID(userID int64, done *bool, limit, offset int) ([]*domain.Task, int64, error)

	// UpdateStatus marks a task done or not done
	UpdateStatus(id int64, isDone bool) error

	// MailIDByTaskID returns the source mail ID of a task, empty when
	// the task was not extracted from an email
	MailIDByTaskID(id int64) (string, error)

	// FindDueUnnotified finds tasks due before now whose reminder has
	// not been sent yet
	FindDueUnnotified(now time.Time) ([]*domain.Task, error)

	// MarkReminderSent marks a task's reminder as sent
	MarkReminderSent(id int64) error
}
