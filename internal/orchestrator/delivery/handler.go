package delivery

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	authdelivery "mailmind-backend/internal/auth/delivery"
	"mailmind-backend/internal/orchestrator"

	"github.com/gin-gonic/gin"
)

// DispatchHandler exposes the dispatcher over HTTP
type DispatchHandler struct {
	dispatcher *orchestrator.Dispatcher
}

func NewDispatchHandler(dispatcher *orchestrator.Dispatcher) *DispatchHandler {
	return &DispatchHandler{dispatcher: dispatcher}
}

// POST /api/incoming_email
// Unauthenticated entry point for mail webhooks. The payload carries
// the mail fields; the user is resolved from the receiver address.
func (h *DispatchHandler) IncomingEmail(c *gin.Context) {
	var event orchestrator.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// This endpoint only accepts the incoming-email shape
	event.Question = ""

	result, err := h.dispatcher.Dispatch(c.Request.Context(), &event)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": result.Type, "detail": result.Answer})
}

// POST /api/ask
// Authenticated chat entry point. Accepts multipart form data so the
// question can carry file attachments.
func (h *DispatchHandler) Ask(c *gin.Context) {
	event, ok := h.userRequestFromForm(c)
	if !ok {
		return
	}

	result, err := h.dispatcher.Dispatch(c.Request.Context(), event)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// POST /api/sendEmail
func (h *DispatchHandler) SendEmail(c *gin.Context) {
	event, ok := h.userRequestFromForm(c)
	if !ok {
		return
	}

	result, err := h.dispatcher.RunSendEmail(c.Request.Context(), event)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// POST /api/writeEmail
func (h *DispatchHandler) WriteEmail(c *gin.Context) {
	event, ok := h.userRequestFromForm(c)
	if !ok {
		return
	}

	result, err := h.dispatcher.RunWriteEmail(c.Request.Context(), event)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// POST /api/replyMail
// Replies to a mail in its thread. An empty comment returns the draft
// reply instead of sending.
func (h *DispatchHandler) ReplyMail(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	mailID := c.PostForm("mail_id")
	if mailID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mail_id is required"})
		return
	}
	comment := c.PostForm("comment")

	attachments, err := h.formAttachments(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.dispatcher.ReplyMail(c.Request.Context(), user.ID, user.Email, mailID, comment, attachments)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// POST /api/draftReplyPreview
func (h *DispatchHandler) DraftReplyPreview(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	mailID := c.PostForm("mail_id")
	if mailID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mail_id is required"})
		return
	}

	draft, err := h.dispatcher.DraftReplyPreview(c.Request.Context(), user.ID, user.Email, mailID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

// POST /api/todoTask
func (h *DispatchHandler) TodoTask(c *gin.Context) {
	h.runJSONRequest(c, h.dispatcher.RunTodo)
}

// POST /api/reminder
func (h *DispatchHandler) Reminder(c *gin.Context) {
	h.runJSONRequest(c, h.dispatcher.RunReminder)
}

// POST /api/event
func (h *DispatchHandler) Event(c *gin.Context) {
	h.runJSONRequest(c, h.dispatcher.RunEvent)
}

type questionRequest struct {
	Question string `json:"question" binding:"required"`
}

func (h *DispatchHandler) runJSONRequest(c *gin.Context, run func(ctx context.Context, event *orchestrator.Event) (*orchestrator.BranchResult, error)) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := &orchestrator.Event{
		Question: req.Question,
		Sender:   user.Email,
		UserID:   user.ID,
	}

	result, err := run(c.Request.Context(), event)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// userRequestFromForm builds a user-request event from a multipart
// form. Responds with an error and returns false when the form is
// invalid.
func (h *DispatchHandler) userRequestFromForm(c *gin.Context) (*orchestrator.Event, bool) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}

	question := c.PostForm("question")
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return nil, false
	}

	attachments, err := h.formAttachments(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	return &orchestrator.Event{
		Question:    question,
		Sender:      user.Email,
		UserID:      user.ID,
		Attachments: attachments,
	}, true
}

func (h *DispatchHandler) formAttachments(c *gin.Context) ([]orchestrator.Attachment, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body is fine; the request just has no files
		return nil, nil
	}

	files := form.File["files"]
	attachments := make([]orchestrator.Attachment, 0, len(files))
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, err
		}

		attachments = append(attachments, orchestrator.Attachment{
			Filename: fileHeader.Filename,
			MimeType: fileHeader.Header.Get("Content-Type"),
			Content:  data,
		})
	}
	return attachments, nil
}

func (h *DispatchHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, orchestrator.ErrMalformedEvent) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var stepErr *orchestrator.BranchStepFailure
	if errors.As(err, &stepErr) {
		log.Printf("[Orchestrator] %v", stepErr)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
