package main

import (
	"context"
	"log"
	"strings"

	api "mailmind-backend/cmd/api"
	authdomain "mailmind-backend/internal/auth/domain"
	authrepo "mailmind-backend/internal/auth/repository"
	authusecase "mailmind-backend/internal/auth/usecase"
	"mailmind-backend/internal/connector"
	conversationdomain "mailmind-backend/internal/conversation/domain"
	conversationrepo "mailmind-backend/internal/conversation/repository"
	conversationusecase "mailmind-backend/internal/conversation/usecase"
	recorddomain "mailmind-backend/internal/emailrecord/domain"
	recordrepo "mailmind-backend/internal/emailrecord/repository"
	recordusecase "mailmind-backend/internal/emailrecord/usecase"
	"mailmind-backend/internal/notification"
	"mailmind-backend/internal/orchestrator"
	taskdomain "mailmind-backend/internal/task/domain"
	taskrepo "mailmind-backend/internal/task/repository"
	"mailmind-backend/internal/task/scheduler"
	taskusecase "mailmind-backend/internal/task/usecase"
	"mailmind-backend/pkg/ai"
	"mailmind-backend/pkg/chroma"
	"mailmind-backend/pkg/config"
	"mailmind-backend/pkg/database"
	"mailmind-backend/pkg/fcm"
	"mailmind-backend/pkg/google"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&authdomain.FCMToken{},
		&conversationdomain.Conversation{},
		&conversationdomain.Message{},
		&taskdomain.Task{},
		&recorddomain.EmailRecord{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authrepo.NewUserRepository(db)
	fcmTokenRepo := authrepo.NewFCMTokenRepository(db)
	conversationRepo := conversationrepo.NewGormConversationRepository(db)
	taskRepository := taskrepo.NewGormTaskRepository(db)
	recordRepo := recordrepo.NewGormEmailRecordRepository(db)

	// Initialize Chroma client for semantic search (optional)
	var chromaClient *chroma.ChromaClient
	if cfg.ChromaAPIKey != "" {
		chromaClient, err = chroma.NewChromaClient(cfg)
		if err != nil {
			log.Printf("[WARN] Failed to initialize Chroma client (semantic search disabled): %v", err)
			chromaClient = nil
		} else {
			log.Println("Chroma client initialized successfully")
		}
	} else {
		log.Println("[WARN] CHROMA_API_KEY not set, semantic search disabled")
	}

	// Initialize use cases
	authUsecaseInstance := authusecase.NewAuthUsecase(userRepo, cfg)
	conversationUsecaseInstance := conversationusecase.NewConversationUsecase(conversationRepo)
	taskUsecaseInstance := taskusecase.NewTaskUsecase(taskRepository)
	recordUsecaseInstance := recordusecase.NewEmailRecordUsecase(recordRepo, chromaClient)

	// AI provider with automatic fallback
	aiService := ai.NewCapability(cfg)

	// Google Workspace services and their orchestrator adapter
	googleService := google.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret)
	googleConnector := connector.NewGoogleConnector(googleService, userRepo)

	// Build the dispatcher over the branch pipelines
	dispatcher := orchestrator.NewDispatcher(orchestrator.Deps{
		Classifier:    aiService,
		Generator:     aiService,
		Connectors:    googleConnector,
		Conversations: conversationUsecaseInstance,
		Tasks:         taskUsecaseInstance,
		Records:       recordUsecaseInstance,
		Users:         authUsecaseInstance,
	})

	// Initialize FCM client (optional, reminders and push disabled without it)
	var fcmClient *fcm.Client
	if cfg.FirebaseCredentials != "" {
		fcmClient, err = fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
			fcmClient = nil
		}
	} else {
		log.Println("[WARN] No Firebase credentials configured, FCM disabled")
	}

	// Task reminder scheduler
	reminderScheduler := scheduler.NewTaskReminderScheduler(taskRepository, fcmTokenRepo, fcmClient)
	reminderScheduler.Start()

	// Gmail push notifications via Pub/Sub
	if cfg.GoogleProjectID != "" {
		topicName := cfg.GooglePubSubTopic
		if parts := strings.Split(topicName, "/"); len(parts) > 1 {
			topicName = parts[len(parts)-1]
		}

		notifService, err := notification.NewService(cfg.GoogleProjectID, topicName, cfg.GoogleCredentials, userRepo, fcmTokenRepo, fcmClient, googleService, dispatcher)
		if err != nil {
			log.Printf("[ERROR] Failed to initialize notification service: %v", err)
		} else {
			go notifService.Start(context.Background())
		}
	} else {
		log.Println("[WARN] GoogleProjectID not configured, notification service disabled")
	}

	// Initialize HTTP handler
	handler := api.NewHandler(cfg, authUsecaseInstance, fcmTokenRepo, dispatcher, taskUsecaseInstance, conversationUsecaseInstance, recordUsecaseInstance)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
