package google

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"
)

// CreateTodoTask inserts a task into the user's default task list.
// The due time is optional.
func (s *Service) CreateTodoTask(ctx context.Context, accessToken, refreshToken, title, notes string, due *time.Time, onTokenRefresh TokenUpdateFunc) (string, error) {
	client := s.httpClient(ctx, accessToken, refreshToken, onTokenRefresh)
	srv, err := tasks.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", fmt.Errorf("unable to create Tasks service: %v", err)
	}

	task := &tasks.Task{
		Title: title,
		Notes: notes,
	}
	if due != nil {
		task.Due = due.UTC().Format(time.RFC3339)
	}

	created, err := srv.Tasks.Insert("@default", task).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create task: %v", err)
	}

	return created.Id, nil
}
