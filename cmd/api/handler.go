package api

import (
	authdelivery "mailmind-backend/internal/auth/delivery"
	authrepo "mailmind-backend/internal/auth/repository"
	authusecase "mailmind-backend/internal/auth/usecase"
	conversationdelivery "mailmind-backend/internal/conversation/delivery"
	conversationusecase "mailmind-backend/internal/conversation/usecase"
	recorddelivery "mailmind-backend/internal/emailrecord/delivery"
	recordusecase "mailmind-backend/internal/emailrecord/usecase"
	"mailmind-backend/internal/orchestrator"
	orchestratordelivery "mailmind-backend/internal/orchestrator/delivery"
	taskdelivery "mailmind-backend/internal/task/delivery"
	taskusecase "mailmind-backend/internal/task/usecase"
	"mailmind-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase authusecase.AuthUsecase
	config      *config.Config

	authHandler         *authdelivery.AuthHandler
	dispatchHandler     *orchestratordelivery.DispatchHandler
	taskHandler         *taskdelivery.TaskHandler
	conversationHandler *conversationdelivery.ConversationHandler
	recordHandler       *recorddelivery.RecordHandler
	uploadHandler       *UploadHandler
}

func NewHandler(cfg *config.Config, authUc authusecase.AuthUsecase, fcmRepo authrepo.FCMTokenRepository, dispatcher *orchestrator.Dispatcher, taskUc taskusecase.TaskUsecase, conversationUc conversationusecase.ConversationUsecase, recordUc recordusecase.EmailRecordUsecase) *Handler {
	return &Handler{
		authUsecase:         authUc,
		config:              cfg,
		authHandler:         authdelivery.NewAuthHandler(authUc, fcmRepo),
		dispatchHandler:     orchestratordelivery.NewDispatchHandler(dispatcher),
		taskHandler:         taskdelivery.NewTaskHandler(taskUc),
		conversationHandler: conversationdelivery.NewConversationHandler(conversationUc),
		recordHandler:       recorddelivery.NewRecordHandler(recordUc),
		uploadHandler:       NewUploadHandler(cfg.FileServerBaseURL),
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.authHandler, h.dispatchHandler, h.taskHandler, h.conversationHandler, h.recordHandler, h.uploadHandler)

	return r.Run(addr)
}
