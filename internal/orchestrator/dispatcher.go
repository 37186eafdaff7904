package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"

	"mailmind-backend/pkg/ai/prompts"
)

// Dispatcher routes an inbound event to exactly one branch pipeline
// based on its type and classified category, and persists the
// resulting exchange for user requests.
type Dispatcher struct {
	deps      Deps
	pipelines *Pipelines
}

func NewDispatcher(deps Deps) *Dispatcher {
	return &Dispatcher{
		deps:      deps,
		pipelines: NewPipelines(deps),
	}
}

// Dispatch runs one event through classification and its branch
// pipeline. It returns ErrMalformedEvent for events with neither mail
// ID nor question; branch step failures propagate as errors.
func (d *Dispatcher) Dispatch(ctx context.Context, event *Event) (*BranchResult, error) {
	eventType, err := event.ResolveType()
	if err != nil {
		return nil, err
	}

	c := d.seedContext(event, eventType)
	content := classificationContent(event)

	rawCategory, err := d.deps.Classifier.Classify(ctx, content, prompts.KindCategory)
	if err != nil {
		return nil, fmt.Errorf("category classification: %w", err)
	}
	category := normalizeLabel(rawCategory)
	log.Printf("[Orchestrator] %s event classified as %q", eventType, category)

	if !routeAllowed(category, eventType) {
		return &BranchResult{Type: OutcomeUnknown, Answer: unknownCategoryMessage, Question: event.Question}, nil
	}

	switch category {
	case CategorySpam:
		// Terminal fixed message; no generation happens for spam
		return &BranchResult{Type: OutcomeSpam, Answer: spamMessage}, nil

	case CategoryRequiresResponse:
		return d.dispatchIntent(ctx, event, c, content)

	case CategoryActionableTask:
		return d.run(ctx, d.pipelines.ActionableTask, c, OutcomeActionableTask, event, eventType)

	case CategoryNoAction:
		return d.run(ctx, d.pipelines.NoAction, c, OutcomeNoAction, event, eventType)

	case CategoryReminder:
		kind, err := d.deps.Classifier.Classify(ctx, content, prompts.KindReminder)
		if err != nil {
			return nil, fmt.Errorf("reminder sub-classification: %w", err)
		}
		if normalizeLabel(kind) == ReminderEvent {
			return d.run(ctx, d.pipelines.ReminderEvent, c, OutcomeEventCreated, event, eventType)
		}
		return d.run(ctx, d.pipelines.ReminderTodo, c, OutcomeReminderCreated, event, eventType)

	case CategoryScheduleEvent:
		return d.run(ctx, d.pipelines.ReminderEvent, c, OutcomeEventCreated, event, eventType)

	default:
		return &BranchResult{Type: OutcomeUnknown, Answer: unknownCategoryMessage, Question: event.Question}, nil
	}
}

// dispatchIntent sub-routes a requires_response user request
func (d *Dispatcher) dispatchIntent(ctx context.Context, event *Event, c Context, content string) (*BranchResult, error) {
	rawIntent, err := d.deps.Classifier.Classify(ctx, content, prompts.KindIntent)
	if err != nil {
		return nil, fmt.Errorf("intent classification: %w", err)
	}
	intent := normalizeLabel(rawIntent)
	log.Printf("[Orchestrator] intent classified as %q", intent)

	switch intent {
	case IntentWriteEmail:
		return d.run(ctx, d.pipelines.WriteEmail, c, OutcomeEmailWritten, event, EventUserRequest)
	case IntentSendEmail:
		return d.run(ctx, d.pipelines.SendEmail, c, OutcomeEmailSent, event, EventUserRequest)
	default:
		// general and "can you send email" both answer conversationally
		return d.run(ctx, d.pipelines.Casual, c, OutcomeCasualReply, event, EventUserRequest)
	}
}

// RunSendEmail triggers the send-email branch directly, bypassing
// classification
func (d *Dispatcher) RunSendEmail(ctx context.Context, event *Event) (*BranchResult, error) {
	c := d.seedContext(event, EventUserRequest)
	return d.run(ctx, d.pipelines.SendEmail, c, OutcomeEmailSent, event, EventUserRequest)
}

// RunWriteEmail triggers the write-email branch directly
func (d *Dispatcher) RunWriteEmail(ctx context.Context, event *Event) (*BranchResult, error) {
	c := d.seedContext(event, EventUserRequest)
	return d.run(ctx, d.pipelines.WriteEmail, c, OutcomeEmailWritten, event, EventUserRequest)
}

// RunTodo triggers the reminder-todo branch directly
func (d *Dispatcher) RunTodo(ctx context.Context, event *Event) (*BranchResult, error) {
	c := d.seedContext(event, EventUserRequest)
	return d.run(ctx, d.pipelines.ReminderTodo, c, OutcomeReminderCreated, event, EventUserRequest)
}

// RunEvent triggers the calendar-event branch directly
func (d *Dispatcher) RunEvent(ctx context.Context, event *Event) (*BranchResult, error) {
	c := d.seedContext(event, EventUserRequest)
	return d.run(ctx, d.pipelines.ReminderEvent, c, OutcomeEventCreated, event, EventUserRequest)
}

// RunReminder sub-classifies the request as todo or event, then runs
// the matching branch
func (d *Dispatcher) RunReminder(ctx context.Context, event *Event) (*BranchResult, error) {
	kind, err := d.deps.Classifier.Classify(ctx, event.Question, prompts.KindReminder)
	if err != nil {
		return nil, fmt.Errorf("reminder sub-classification: %w", err)
	}
	if normalizeLabel(kind) == ReminderEvent {
		return d.RunEvent(ctx, event)
	}
	return d.RunTodo(ctx, event)
}

// ReplyMail sends a reply in a mail's thread. An empty comment falls
// back to the stored draft reply, or a freshly generated one.
func (d *Dispatcher) ReplyMail(ctx context.Context, userID int64, userEmail, mailID, comment string, attachments []Attachment) (*BranchResult, error) {
	body := strings.TrimSpace(comment)
	if body == "" {
		draft, err := d.DraftReplyPreview(ctx, userID, userEmail, mailID)
		if err != nil {
			return nil, err
		}
		body = draft
	}

	if err := d.deps.Connectors.ReplyMail(ctx, userEmail, mailID, body, attachments); err != nil {
		return nil, err
	}
	return &BranchResult{Type: OutcomeEmailSent, Answer: "Reply sent."}, nil
}

// DraftReplyPreview returns the stored draft reply for a mail, or
// generates and stores a fresh one from the last inbound thread
// message
func (d *Dispatcher) DraftReplyPreview(ctx context.Context, userID int64, userEmail, mailID string) (string, error) {
	draft, err := d.deps.Records.DraftReply(mailID)
	if err != nil {
		return "", err
	}
	if draft != "" {
		return draft, nil
	}

	msg, err := d.deps.Connectors.LastInboundMessage(ctx, userEmail, mailID)
	if err != nil {
		return "", err
	}

	raw, err := d.deps.Generator.Generate(ctx, fmt.Sprintf(draftReplyPrompt, msg.Sender, msg.Subject, msg.Body))
	if err != nil {
		return "", err
	}
	draft = strings.TrimSpace(raw)

	if err := d.deps.Records.SaveDraftReply(userID, mailID, draft); err != nil {
		return "", err
	}
	return draft, nil
}

// run executes a branch pipeline and persists the exchange for user
// requests
func (d *Dispatcher) run(ctx context.Context, p *Pipeline, c Context, outcome string, event *Event, eventType EventType) (*BranchResult, error) {
	if _, err := p.Run(ctx, c); err != nil {
		return nil, err
	}

	answer := c.GetString(KeyAnswer)
	result := &BranchResult{Type: outcome, Answer: answer}

	if eventType == EventUserRequest {
		result.Question = event.Question
		if err := d.persistExchange(ctx, c, event, answer); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (d *Dispatcher) persistExchange(ctx context.Context, c Context, event *Event, answer string) error {
	userID := c.GetInt64(KeyUserID)
	if d.deps.Conversations == nil || userID == 0 || event.Question == "" {
		return nil
	}

	var fileURLs []string
	for _, att := range event.Attachments {
		fileURLs = append(fileURLs, att.Filename)
	}
	return d.deps.Conversations.AppendExchange(ctx, userID, event.Question, answer, fileURLs)
}

// seedContext builds the initial pipeline context from the event.
// Every key a branch may read is present, with explicit empty values
// for absent fields.
func (d *Dispatcher) seedContext(event *Event, eventType EventType) Context {
	c := NewContext()
	c.Set(KeyQuestion, event.Question)
	c.Set(KeyMailID, event.ID)
	c.Set(KeySubject, event.Subject)
	c.Set(KeyBody, event.Body)
	c.Set(KeyBodyPreview, event.BodyPreview)
	c.Set(KeySender, event.Sender)
	c.Set(KeyReceiver, event.Receiver)
	c.Set(KeyReceivedAt, event.ReceivedDateTime)
	c.Set(KeyUserID, d.resolveUserID(event, eventType))
	c.Set(KeyCurrentDate, d.deps.now())

	attachments := event.Attachments
	if attachments == nil {
		attachments = []Attachment{}
	}
	c.Set(KeyAttachments, attachments)

	return c
}

// resolveUserID prefers the event's explicit user ID, then resolves by
// the acting user's email address
func (d *Dispatcher) resolveUserID(event *Event, eventType EventType) int64 {
	if event.UserID != 0 {
		return event.UserID
	}

	email := event.Sender
	if eventType == EventIncomingEmail {
		email = event.Receiver
	}
	if email == "" || d.deps.Users == nil {
		return 0
	}

	user, err := d.deps.Users.GetOrCreateUser(email, "")
	if err != nil || user == nil {
		log.Printf("[Orchestrator] user resolution for %s failed: %v", email, err)
		return 0
	}
	return user.ID
}

// classificationContent picks the text to classify: the question for
// user requests, else the full body, else the preview
func classificationContent(event *Event) string {
	if event.Question != "" {
		return event.Question
	}
	if event.Body != "" {
		return event.Body
	}
	return event.BodyPreview
}
