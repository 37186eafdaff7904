package delivery

import (
	"net/http"
	"strconv"

	authdelivery "mailmind-backend/internal/auth/delivery"
	"mailmind-backend/internal/conversation/usecase"

	"github.com/gin-gonic/gin"
)

// ConversationHandler handles conversation HTTP requests
type ConversationHandler struct {
	conversationUsecase usecase.ConversationUsecase
}

func NewConversationHandler(conversationUsecase usecase.ConversationUsecase) *ConversationHandler {
	return &ConversationHandler{conversationUsecase: conversationUsecase}
}

// GET /api/conversations
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conversations, err := h.conversationUsecase.ListConversations(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// GET /api/conversations/:id/messages?limit=50
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	// Ownership check: the conversation must belong to the caller
	conversations, err := h.conversationUsecase.ListConversations(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	owned := false
	for _, conv := range conversations {
		if conv.ID == conversationID {
			owned = true
			break
		}
	}
	if !owned {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}

	messages, err := h.conversationUsecase.ListMessages(conversationID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
