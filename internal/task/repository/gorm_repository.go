package repository

import (
	"errors"
	"time"

	"mailmind-backend/internal/task/domain"

	"gorm.io/gorm"
)

// gormTaskRepository implements TaskRepository using GORM
type gormTaskRepository struct {
	db *gorm.DB
}

func NewGormTaskRepository(db *gorm.DB) TaskRepository {
	return &gormTaskRepository{db: db}
}

func (r *gormTaskRepository) Create(task *domain.Task) error {
	task.CreatedAt = time.Now()
	task.UpdatedAt = time.Now()
	return r.db.Create(task).Error
}

func (r *gormTaskRepository) FindByID(id int64) (*domain.Task, error) {
	var task domain.Task
	err := r.db.Where("id = ?", id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *gormTaskRepository) FindByUserID(userID int64, done *bool, limit, offset int) ([]*domain.Task, int64, error) {
	var tasks []*domain.Task
	var total int64

	query := r.db.Model(&domain.Task{}).Where("user_id = ?", userID)
	if done != nil {
		query = query.Where("is_done = ?", *done)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Due tasks first, undated tasks last
	err := query.Order("CASE WHEN due_at IS NULL THEN 1 ELSE 0 END, due_at ASC, created_at DESC").
		Limit(limit).Offset(offset).Find(&tasks).Error

	return tasks, total, err
}

func (r *gormTaskRepository) UpdateStatus(id int64, isDone bool) error {
	return r.db.Model(&domain.Task{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_done":    isDone,
			"updated_at": time.Now(),
		}).Error
}

func (r *gormTaskRepository) MailIDByTaskID(id int64) (string, error) {
	task, err := r.FindByID(id)
	if err != nil {
		return "", err
	}
	if task == nil {
		return "", nil
	}
	return task.MailID, nil
}

func (r *gormTaskRepository) FindDueUnnotified(now time.Time) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.Where("due_at <= ? AND reminder_sent = ? AND is_done = ?",
		now, false, false).Find(&tasks).Error
	return tasks, err
}

func (r *gormTaskRepository) MarkReminderSent(id int64) error {
	return r.db.Model(&domain.Task{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"reminder_sent": true,
			"updated_at":    time.Now(),
		}).Error
}
