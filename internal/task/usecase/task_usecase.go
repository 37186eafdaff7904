package usecase

import (
	"errors"
	"strings"
	"time"

	"mailmind-backend/internal/task/domain"
	"mailmind-backend/internal/task/repository"
	"mailmind-backend/pkg/dates"
)

// Default due time for extracted tasks without an explicit deadline
const defaultDueOffset = 72 * time.Hour

// TaskUsecase defines task business logic
type TaskUsecase interface {
	// CreateFromExtractions persists AI-extracted tasks. Due
	// expressions are parsed relative to the anchor; tasks without a
	// parseable deadline default to three days after the anchor.
	CreateFromExtractions(userID int64, mailID string, extractions []domain.Extraction, anchor time.Time) ([]*domain.Task, error)

	// CreateTask creates a task manually
	CreateTask(userID int64, title, detail string, dueAt *time.Time) (*domain.Task, error)

	// GetUserTasks lists a user's tasks with an optional done filter
	GetUserTasks(userID int64, done *bool, limit, offset int) ([]*domain.Task, int64, error)

	// SetStatus marks a task done or not done, with ownership check
	SetStatus(userID, taskID int64, isDone bool) (*domain.Task, error)
}

type taskUsecase struct {
	repo repository.TaskRepository
}

func NewTaskUsecase(repo repository.TaskRepository) TaskUsecase {
	return &taskUsecase{repo: repo}
}

func (u *taskUsecase) CreateFromExtractions(userID int64, mailID string, extractions []domain.Extraction, anchor time.Time) ([]*domain.Task, error) {
	tasks := make([]*domain.Task, 0, len(extractions))

	for _, ext := range extractions {
		title := strings.TrimSpace(ext.Title)
		if title == "" {
			continue
		}

		due := dates.Normalize(ext.Due, anchor)
		if due == nil {
			fallback := anchor.Add(defaultDueOffset)
			due = &fallback
		}

		task := &domain.Task{
			UserID: userID,
			MailID: mailID,
			Title:  title,
			Detail: ext.Detail,
			DueAt:  due,
		}
		if err := u.repo.Create(task); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

func (u *taskUsecase) CreateTask(userID int64, title, detail string, dueAt *time.Time) (*domain.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("task title is required")
	}

	task := &domain.Task{
		UserID: userID,
		Title:  strings.TrimSpace(title),
		Detail: detail,
		DueAt:  dueAt,
	}
	if err := u.repo.Create(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (u *taskUsecase) GetUserTasks(userID int64, done *bool, limit, offset int) ([]*domain.Task, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	return u.repo.FindByUserID(userID, done, limit, offset)
}

func (u *taskUsecase) SetStatus(userID, taskID int64, isDone bool) (*domain.Task, error) {
	task, err := u.repo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil || task.UserID != userID {
		return nil, errors.New("task not found")
	}

	if err := u.repo.UpdateStatus(taskID, isDone); err != nil {
		return nil, err
	}
	task.IsDone = isDone
	return task, nil
}
