package scheduler

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	authrepo "mailmind-backend/internal/auth/repository"
	"mailmind-backend/internal/task/repository"
	"mailmind-backend/pkg/fcm"
)

// TaskReminderScheduler sends FCM reminders for tasks that reached
// their due time
type TaskReminderScheduler struct {
	taskRepo  repository.TaskRepository
	fcmRepo   authrepo.FCMTokenRepository
	fcmClient *fcm.Client
	interval  time.Duration
	stopChan  chan struct{}
}

func NewTaskReminderScheduler(
	taskRepo repository.TaskRepository,
	fcmRepo authrepo.FCMTokenRepository,
	fcmClient *fcm.Client,
) *TaskReminderScheduler {
	return &TaskReminderScheduler{
		taskRepo:  taskRepo,
		fcmRepo:   fcmRepo,
		fcmClient: fcmClient,
		interval:  1 * time.Minute,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *TaskReminderScheduler) Start() {
	if s.fcmClient == nil {
		log.Println("[TaskScheduler] FCM client not available, scheduler disabled")
		return
	}

	log.Println("[TaskScheduler] Starting task reminder scheduler (interval: 1 minute)")

	go func() {
		// Run immediately on start
		s.checkAndSendReminders()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.checkAndSendReminders()
			case <-s.stopChan:
				log.Println("[TaskScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *TaskReminderScheduler) Stop() {
	close(s.stopChan)
}

func (s *TaskReminderScheduler) checkAndSendReminders() {
	now := time.Now()

	tasks, err := s.taskRepo.FindDueUnnotified(now)
	if err != nil {
		log.Printf("[TaskScheduler] Error finding due tasks: %v", err)
		return
	}

	if len(tasks) == 0 {
		return
	}

	log.Printf("[TaskScheduler] Found %d tasks with pending reminders", len(tasks))

	for _, task := range tasks {
		tokens, err := s.fcmRepo.GetTokensByUserID(task.UserID)
		if err != nil {
			log.Printf("[TaskScheduler] Error getting FCM tokens for user %d: %v", task.UserID, err)
			continue
		}

		if len(tokens) == 0 {
			log.Printf("[TaskScheduler] No FCM tokens for user %d, marking reminder as sent", task.UserID)
			s.taskRepo.MarkReminderSent(task.ID)
			continue
		}

		body := task.Detail
		if body == "" {
			body = "You have a task due"
		}
		if task.DueAt != nil {
			body = fmt.Sprintf("%s\nDue: %s", body, task.DueAt.Format("02/01/2006 15:04"))
		}

		var tokenStrings []string
		for _, t := range tokens {
			tokenStrings = append(tokenStrings, t.Token)
		}

		notification := fcm.Notification{
			Title: "Reminder: " + task.Title,
			Body:  body,
			Data: map[string]string{
				"type":         "task_reminder",
				"task_id":      strconv.FormatInt(task.ID, 10),
				"click_action": "/tasks",
			},
		}

		failedTokens, err := s.fcmClient.SendToDevices(context.Background(), tokenStrings, notification)
		if err != nil {
			log.Printf("[TaskScheduler] Error sending reminder for task %d: %v", task.ID, err)
		} else {
			log.Printf("[TaskScheduler] Sent reminder for task '%s' to %d devices", task.Title, len(tokenStrings)-len(failedTokens))
		}

		// Prune tokens that can no longer receive notifications
		for _, token := range failedTokens {
			s.fcmRepo.DeleteToken(token)
		}

		// Mark sent regardless of delivery outcome to avoid spamming
		if err := s.taskRepo.MarkReminderSent(task.ID); err != nil {
			log.Printf("[TaskScheduler] Error marking reminder as sent for task %d: %v", task.ID, err)
		}
	}
}
