package api

import (
	"net/http"

	authdelivery "mailmind-backend/internal/auth/delivery"
	authusecase "mailmind-backend/internal/auth/usecase"
	conversationdelivery "mailmind-backend/internal/conversation/delivery"
	recorddelivery "mailmind-backend/internal/emailrecord/delivery"
	orchestratordelivery "mailmind-backend/internal/orchestrator/delivery"
	taskdelivery "mailmind-backend/internal/task/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUsecase authusecase.AuthUsecase, authHandler *authdelivery.AuthHandler, dispatchHandler *orchestratordelivery.DispatchHandler, taskHandler *taskdelivery.TaskHandler, conversationHandler *conversationdelivery.ConversationHandler, recordHandler *recorddelivery.RecordHandler, uploadHandler *UploadHandler) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Webhook entry point for incoming mail (no auth; the user is
		// resolved from the receiver address)
		api.POST("/incoming_email", dispatchHandler.IncomingEmail)

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/google", authHandler.GoogleSignIn)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", authdelivery.AuthMiddleware(authUsecase), authHandler.Me)
		}

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(authdelivery.AuthMiddleware(authUsecase))
		{
			fcm.POST("/register", authHandler.RegisterFCMToken)
			fcm.DELETE("/:token", authHandler.UnregisterFCMToken)
		}

		// Assistant routes (protected)
		assistant := api.Group("")
		assistant.Use(authdelivery.AuthMiddleware(authUsecase))
		{
			assistant.POST("/ask", dispatchHandler.Ask)
			assistant.POST("/sendEmail", dispatchHandler.SendEmail)
			assistant.POST("/writeEmail", dispatchHandler.WriteEmail)
			assistant.POST("/replyMail", dispatchHandler.ReplyMail)
			assistant.POST("/draftReplyPreview", dispatchHandler.DraftReplyPreview)
			assistant.POST("/todoTask", dispatchHandler.TodoTask)
			assistant.POST("/reminder", dispatchHandler.Reminder)
			assistant.POST("/event", dispatchHandler.Event)
			assistant.POST("/upload", uploadHandler.Upload)
		}

		// Uploaded files are served statically
		r.Static("/"+uploadDir, "./"+uploadDir)

		// Conversation routes (protected)
		conversations := api.Group("/conversations")
		conversations.Use(authdelivery.AuthMiddleware(authUsecase))
		{
			conversations.GET("", conversationHandler.ListConversations)
			conversations.GET("/:id/messages", conversationHandler.ListMessages)
		}

		// Processed email records (protected)
		emails := api.Group("/emails")
		emails.Use(authdelivery.AuthMiddleware(authUsecase))
		{
			emails.GET("/records", recordHandler.ListRecords)
			emails.GET("/search", recordHandler.Search)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(authdelivery.AuthMiddleware(authUsecase))
		{
			tasks.GET("", taskHandler.GetTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.PATCH("/:id/status", taskHandler.UpdateTaskStatus)
		}
	}
}
