package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	authdomain "mailmind-backend/internal/auth/domain"
	authrepo "mailmind-backend/internal/auth/repository"
	"mailmind-backend/internal/orchestrator"
	"mailmind-backend/pkg/fcm"
	"mailmind-backend/pkg/google"
)

// GmailNotification is the payload Gmail publishes on the Pub/Sub topic
// when a watched mailbox changes.
type GmailNotification struct {
	EmailAddress string `json:"emailAddress"`
	HistoryID    uint64 `json:"historyId"`
}

// Service listens on the Gmail push subscription and feeds new inbox
// messages into the dispatcher, then notifies the user's devices with
// the outcome.
type Service struct {
	pubsubClient  *pubsub.Client
	userRepo      authrepo.UserRepository
	fcmRepo       authrepo.FCMTokenRepository
	fcmClient     *fcm.Client
	googleService *google.Service
	dispatcher    *orchestrator.Dispatcher
	projectID     string
	topicName     string
	subName       string

	// Deduplication: track last historyId per user to avoid
	// reprocessing the same mailbox change
	mu            sync.Mutex
	lastHistoryID map[int64]uint64
}

func NewService(projectID, topicName, credentialsFile string, userRepo authrepo.UserRepository, fcmRepo authrepo.FCMTokenRepository, fcmClient *fcm.Client, googleService *google.Service, dispatcher *orchestrator.Dispatcher) (*Service, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %v", err)
	}

	return &Service{
		pubsubClient:  client,
		userRepo:      userRepo,
		fcmRepo:       fcmRepo,
		fcmClient:     fcmClient,
		googleService: googleService,
		dispatcher:    dispatcher,
		projectID:     projectID,
		topicName:     topicName,
		subName:       topicName + "-sub", // Convention: topic-sub
		lastHistoryID: make(map[int64]uint64),
	}, nil
}

func (s *Service) Start(ctx context.Context) {
	log.Printf("[PubSub] Starting notification service with topic: %s, subscription: %s", s.topicName, s.subName)

	sub := s.pubsubClient.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[PubSub] Error checking subscription existence: %v", err)
		return
	}

	if !exists {
		topic := s.pubsubClient.Topic(s.topicName)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			log.Printf("[PubSub] Error checking topic existence: %v", err)
			return
		}
		if !topicExists {
			log.Printf("[PubSub] Topic %s does not exist, cannot create subscription", s.topicName)
			return
		}

		sub, err = s.pubsubClient.CreateSubscription(ctx, s.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 10 * time.Second,
		})
		if err != nil {
			log.Printf("[PubSub] Failed to create subscription: %v", err)
			return
		}
		log.Printf("[PubSub] Created subscription: %s", s.subName)
	}

	log.Printf("[PubSub] Listening for messages on subscription: %s", s.subName)
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		s.handleMessage(ctx, msg)
		msg.Ack()
	})
	if err != nil {
		log.Printf("[PubSub] Error receiving messages: %v", err)
	}
}

func (s *Service) handleMessage(ctx context.Context, msg *pubsub.Message) {
	var notification GmailNotification
	if err := json.Unmarshal(msg.Data, &notification); err != nil {
		log.Printf("[PubSub] Failed to unmarshal notification: %v", err)
		return
	}

	log.Printf("[PubSub] Notification for %s (historyId: %d)", notification.EmailAddress, notification.HistoryID)

	user, err := s.userRepo.FindByEmail(notification.EmailAddress)
	if err != nil {
		log.Printf("[PubSub] Error finding user by email %s: %v", notification.EmailAddress, err)
		return
	}
	if user == nil {
		log.Printf("[PubSub] User not found for email: %s", notification.EmailAddress)
		return
	}

	if s.isDuplicate(user.ID, notification.HistoryID) {
		log.Printf("[PubSub] Skipping duplicate notification for user %d (historyId %d)", user.ID, notification.HistoryID)
		return
	}

	email, err := s.fetchLatestEmail(ctx, user)
	if err != nil {
		log.Printf("[PubSub] Could not fetch latest email for %s: %v", user.Email, err)
		return
	}

	event := &orchestrator.Event{
		ID:               email.ID,
		Subject:          email.Subject,
		BodyPreview:      email.BodyPreview,
		Body:             email.Body,
		Receiver:         user.Email,
		ReceivedDateTime: email.ReceivedAt.Format(time.RFC3339),
		Sender:           email.From,
		UserID:           user.ID,
	}

	result, err := s.dispatcher.Dispatch(ctx, event)
	if err != nil {
		log.Printf("[PubSub] Dispatch failed for mail %s: %v", email.ID, err)
		return
	}
	log.Printf("[PubSub] Mail %s handled as %s", email.ID, result.Type)

	s.pushOutcome(user.ID, email, result)
}

func (s *Service) isDuplicate(userID int64, historyID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.lastHistoryID[userID]; ok && historyID <= last {
		return true
	}
	s.lastHistoryID[userID] = historyID
	return false
}

func (s *Service) fetchLatestEmail(ctx context.Context, user *authdomain.User) (*google.Email, error) {
	if user.GoogleAccessToken == "" {
		return nil, fmt.Errorf("account %s is not linked to Google", user.Email)
	}
	onTokenRefresh := func(token *oauth2.Token) error {
		return s.userRepo.UpdateGoogleTokens(user.ID, token.AccessToken, token.RefreshToken)
	}
	return s.googleService.LatestInboxMessage(ctx, user.GoogleAccessToken, user.GoogleRefreshToken, onTokenRefresh)
}

// pushOutcome sends the dispatch result to the user's registered
// devices. Delivery failures only cost the notification.
func (s *Service) pushOutcome(userID int64, email *google.Email, result *orchestrator.BranchResult) {
	if s.fcmClient == nil || s.fcmRepo == nil {
		return
	}

	go func() {
		tokens, err := s.fcmRepo.GetTokensByUserID(userID)
		if err != nil {
			log.Printf("[FCM] Error getting tokens for user %d: %v", userID, err)
			return
		}
		if len(tokens) == 0 {
			return
		}

		tokenStrings := make([]string, 0, len(tokens))
		for _, t := range tokens {
			tokenStrings = append(tokenStrings, t.Token)
		}

		sender := email.FromName
		if sender == "" {
			sender = email.From
		}
		subject := email.Subject
		if len(subject) > 100 {
			subject = subject[:97] + "..."
		}
		if subject == "" {
			subject = "(no subject)"
		}

		failedTokens, err := s.fcmClient.SendToDevices(context.Background(), tokenStrings, fcm.Notification{
			Title: fmt.Sprintf("Email from %s", sender),
			Body:  subject,
			Data: map[string]string{
				"type":      "email_processed",
				"messageId": email.ID,
				"outcome":   result.Type,
			},
		})
		if err != nil {
			log.Printf("[FCM] Error sending notifications: %v", err)
			return
		}

		for _, token := range failedTokens {
			if err := s.fcmRepo.DeleteToken(token); err != nil {
				log.Printf("[FCM] Failed to delete stale token: %v", err)
			}
		}
	}()
}
