package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailmind-backend/internal/task/domain"
)

type fakeTaskRepository struct {
	tasks  []*domain.Task
	nextID int64
}

func (r *fakeTaskRepository) Create(task *domain.Task) error {
	r.nextID++
	task.ID = r.nextID
	r.tasks = append(r.tasks, task)
	return nil
}

func (r *fakeTaskRepository) FindByID(id int64) (*domain.Task, error) {
	for _, task := range r.tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return nil, nil
}

func (r *fakeTaskRepository) FindByUserID(userID int64, done *bool, limit, offset int) ([]*domain.Task, int64, error) {
	var out []*domain.Task
	for _, task := range r.tasks {
		if task.UserID != userID {
			continue
		}
		if done != nil && task.IsDone != *done {
			continue
		}
		out = append(out, task)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTaskRepository) UpdateStatus(id int64, isDone bool) error {
	for _, task := range r.tasks {
		if task.ID == id {
			task.IsDone = isDone
		}
	}
	return nil
}

func (r *fakeTaskRepository) MailIDByTaskID(id int64) (string, error) {
	task, _ := r.FindByID(id)
	if task == nil {
		return "", nil
	}
	return task.MailID, nil
}

func (r *fakeTaskRepository) FindDueUnnotified(now time.Time) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, task := range r.tasks {
		if task.DueAt != nil && !task.DueAt.After(now) && !task.ReminderSent && !task.IsDone {
			out = append(out, task)
		}
	}
	return out, nil
}

func (r *fakeTaskRepository) MarkReminderSent(id int64) error {
	for _, task := range r.tasks {
		if task.ID == id {
			task.ReminderSent = true
		}
	}
	return nil
}

func TestCreateFromExtractionsDueDefaults(t *testing.T) {
	repo := &fakeTaskRepository{}
	uc := NewTaskUsecase(repo)

	anchor := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)
	extractions := []domain.Extraction{
		{Title: "send report", Detail: "quarterly numbers", Due: "2025-01-20"},
		{Title: "ping vendor", Detail: "", Due: ""},
		{Title: "", Detail: "no title, skipped", Due: "tomorrow"},
	}

	tasks, err := uc.CreateFromExtractions(7, "mail-1", extractions, anchor)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	// Explicit due date is honored
	require.NotNil(t, tasks[0].DueAt)
	assert.Equal(t, 20, tasks[0].DueAt.Day())
	assert.Equal(t, "mail-1", tasks[0].MailID)

	// Missing due date falls back to three days after the anchor
	require.NotNil(t, tasks[1].DueAt)
	assert.Equal(t, anchor.Add(72*time.Hour), *tasks[1].DueAt)
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	uc := NewTaskUsecase(&fakeTaskRepository{})

	_, err := uc.CreateTask(1, "   ", "detail", nil)
	assert.Error(t, err)

	task, err := uc.CreateTask(1, "  water plants  ", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "water plants", task.Title)
}

func TestSetStatusOwnership(t *testing.T) {
	repo := &fakeTaskRepository{}
	uc := NewTaskUsecase(repo)

	created, err := uc.CreateTask(1, "review PR", "", nil)
	require.NoError(t, err)

	_, err = uc.SetStatus(2, created.ID, true)
	assert.EqualError(t, err, "task not found")

	task, err := uc.SetStatus(1, created.ID, true)
	require.NoError(t, err)
	assert.True(t, task.IsDone)
}
