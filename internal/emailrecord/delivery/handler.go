package delivery

import (
	"net/http"
	"strconv"

	authdelivery "mailmind-backend/internal/auth/delivery"
	"mailmind-backend/internal/emailrecord/usecase"

	"github.com/gin-gonic/gin"
)

// RecordHandler handles processed-email record HTTP requests
type RecordHandler struct {
	recordUsecase usecase.EmailRecordUsecase
}

func NewRecordHandler(recordUsecase usecase.EmailRecordUsecase) *RecordHandler {
	return &RecordHandler{recordUsecase: recordUsecase}
}

// GET /api/emails/records?limit=50&offset=0
func (h *RecordHandler) ListRecords(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, total, err := h.recordUsecase.ListRecords(user.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"total":   total,
	})
}

// GET /api/emails/search?q=...&limit=10
func (h *RecordHandler) Search(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	records, err := h.recordUsecase.Search(c.Request.Context(), user.ID, query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records})
}
