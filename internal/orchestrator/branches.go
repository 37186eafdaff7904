package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	recdomain "mailmind-backend/internal/emailrecord/domain"
	taskdomain "mailmind-backend/internal/task/domain"
	"mailmind-backend/pkg/dates"
)

// Pipelines holds every branch pipeline, built once at startup and
// injected into the dispatcher
type Pipelines struct {
	Casual         *Pipeline
	WriteEmail     *Pipeline
	SendEmail      *Pipeline
	ActionableTask *Pipeline
	NoAction       *Pipeline
	ReminderTodo   *Pipeline
	ReminderEvent  *Pipeline
}

type emailDraft struct {
	Receiver string `json:"receiver"`
	Subject  string `json:"subject"`
	Content  string `json:"content"`
}

type eventFields struct {
	Subject   string   `json:"subject"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Location  string   `json:"location"`
	Attendees []string `json:"attendees"`
}

// NewPipelines builds the branch pipelines over the given
// dependencies
func NewPipelines(deps Deps) *Pipelines {
	return &Pipelines{
		Casual:         casualPipeline(deps),
		WriteEmail:     writeEmailPipeline(deps),
		SendEmail:      sendEmailPipeline(deps),
		ActionableTask: actionableTaskPipeline(deps),
		NoAction:       noActionPipeline(deps),
		ReminderTodo:   reminderTodoPipeline(deps),
		ReminderEvent:  reminderEventPipeline(deps),
	}
}

func casualPipeline(deps Deps) *Pipeline {
	return &Pipeline{
		Name: "casual",
		Steps: []Step{
			{
				Name:    "conversational-reply",
				Inputs:  []string{KeyQuestion, KeySender, KeyUserID},
				Outputs: []string{KeyAnswer},
				Run: func(ctx context.Context, c Context) (StepResult, error) {
					history := ""
					if deps.Conversations != nil {
						h, err := deps.Conversations.RecentHistory(c.GetInt64(KeyUserID), 10)
						if err != nil {
							log.Printf("[Orchestrator] history lookup failed: %v", err)
						} else {
							history = h
						}
					}

					prompt := fmt.Sprintf(casualReplyPrompt, c.GetString(KeySender), history, c.GetString(KeyQuestion))
					reply, err := deps.Generator.Generate(ctx, prompt)
					if err != nil {
						return StepResult{}, err
					}
					return TextResult(strings.TrimSpace(reply)), nil
				},
			},
		},
	}
}

// draftEmailStep generates the email fields from the user's
// instruction, enriched with the sender's profile when available
func draftEmailStep(deps Deps, name string) Step {
	return Step{
		Name:    name,
		Inputs:  []string{KeyQuestion, KeySender},
		Outputs: []string{KeyReceiver, KeySubject, KeyContent},
		Run: func(ctx context.Context, c Context) (StepResult, error) {
			sender := c.GetString(KeySender)

			profile := ""
			if deps.Connectors != nil {
				if p, err := deps.Connectors.UserProfile(ctx, sender); err == nil {
					profile = p
				}
			}

			prompt := fmt.Sprintf(draftEmailPrompt, sender, c.GetString(KeyQuestion), profile)
			raw, err := deps.Generator.Generate(ctx, prompt)
			if err != nil {
				return StepResult{}, err
			}

			var draft emailDraft
			if err := DecodeModelJSON(raw, &draft); err != nil {
				return StepResult{}, err
			}

			return StructuredResult(map[string]any{
				KeyReceiver: draft.Receiver,
				KeySubject:  draft.Subject,
				KeyContent:  draft.Content,
			}), nil
		},
	}
}

// resolveReceiverStep passes an address through untouched and resolves
// a bare name through the contact lookup connector
func resolveReceiverStep(deps Deps) Step {
	return Step{
		Name:    "resolve-receiver",
		Inputs:  []string{KeyReceiver, KeySender},
		Outputs: []string{KeyReceiver},
		Run: func(ctx context.Context, c Context) (StepResult, error) {
			receiver := strings.TrimSpace(c.GetString(KeyReceiver))
			if strings.Contains(receiver, "@") {
				return StructuredResult(map[string]any{KeyReceiver: receiver}), nil
			}

			email, err := deps.Connectors.LookupContactEmail(ctx, c.GetString(KeySender), receiver)
			if err != nil {
				return StepResult{}, err
			}
			if email == "" {
				return StepResult{}, fmt.Errorf("no email address found for %q", receiver)
			}
			return StructuredResult(map[string]any{KeyReceiver: email}), nil
		},
	}
}

func writeEmailPipeline(deps Deps) *Pipeline {
	return &Pipeline{
		Name: "write-email",
		Steps: []Step{
			draftEmailStep(deps, "draft"),
			resolveReceiverStep(deps),
			{
				Name:    "review",
				Inputs:  []string{KeySubject, KeyContent},
				Outputs: []string{KeyReviewFeedback},
				Run: func(ctx context.Context, c Context) (StepResult, error) {
					prompt := fmt.Sprintf(reviewEmailPrompt, c.GetString(KeySubject), c.GetString(KeyContent))
					raw, err := deps.Generator.Generate(ctx, prompt)
					if err != nil {
						return StepResult{}, err
					}

					var review struct {
						Approved bool   `json:"approved"`
						Feedback string `json:"feedback"`
					}
					if err := DecodeModelJSON(raw, &review); err != nil {
						// A reviewer that answers in prose is kept as
						// feedback rather than failing the branch
						return StructuredResult(map[string]any{KeyReviewFeedback: strings.TrimSpace(raw)}), nil
					}
					if review.Approved {
						return StructuredResult(map[string]any{KeyReviewFeedback: ""}), nil
					}
					return StructuredResult(map[string]any{KeyReviewFeedback: review.Feedback}), nil
				},
			},
			{
				Name:    "extract-fields",
				Inputs:  []string{KeyReceiver, KeySubject, KeyContent, KeySender},
				Outputs: []string{KeyEmail},
				Run: func(ctx context.Context, c Context) (StepResult, error) {
					return StructuredResult(map[string]any{
						KeyEmail: map[string]string{
							"receiver": c.GetString(KeyReceiver),
							"subject":  c.GetString(KeySubject),
							"content":  c.GetString(KeyContent),
							"sender":   c.GetString(KeySender),
						},
					}), nil
				},
			},
			{
				Name:    "format",
				Inputs:  []string{KeyEmail, KeyReviewFeedback},
				Outputs: []string{KeyAnswer},
				Run: func(ctx context.Context, c Context) (StepResult, error) {
					fields, ok := c.Get(KeyEmail).(map[string]string)
					if !ok {
						return StepResult{}, fmt.Errorf("email fields have unexpected shape")
					}

					answer := fmt.Sprintf("To : %s,\n\nSubject : %s,\n\n%s",
						fields["receiver"], fields["subject"], fields["content"])
					if feedback := c.GetString(KeyReviewFeedback); feedback != "" {
						answer += "\n\nReviewer notes: " + feedback
					}
					return TextResult(answer), nil
				},
			},
		},
	}
}

func sendEmailPipeline(deps Deps) *Pipeline {
	return &Pipeline{
		Name: "send-email",
		Steps: []Step{
			draftEmailStep(deps, "draft"),
			resolveReceiverStep(deps),
			{
				Name:   "onboard-receiver",
				Inputs: []string{KeyReceiver},
				Run: func(ctx context.Context, c Context) (StepResult, error) {
					if deps.Users != nil {
						if _, err := deps.Users.GetOrCreateUser(c.GetString(KeyReceiver), ""); err != nil {
							return StepResult{}, err
						}
					}
					return TextResult(""), nil
				},
			},
			{
				Name:    "send",
				Inputs:  []string{KeySender, KeyReceiver, KeySubject, KeyContent, KeyAttachments},
				Outputs: []string{KeyAnswer},
				Run: func(ctx context.Context, c Context) (StepResult, error) {
					receiver := c.GetString(KeyReceiver)
					err := deps.Connectors.SendMail(ctx,
						c.GetString(KeySender),
						receiver,
						c.GetString(KeySubject),
						c.GetString(KeyContent),
						c.GetAttachments(KeyAttachments),
					)
					if err != nil {
						return StepResult{}, err
					}
					return TextResult(fmt.Sprintf("Email sent to %s.", receiver)), nil
				},
			},
		},
	}
}

func actionableTaskPipeline(deps Deps) *Pipeline {
	return &Pipeline{
		Name: "actionable-task",
		Steps: []Step{
			{
				Name:    "draft-reply",
				Inputs:  []string{KeyMailID, KeyBody, KeySender, KeySubject, KeyUserID},
				Outputs: []string{KeyDraftReply},
				Run: func(ctx context.Context, c Context) (StepResult, error) {
					mailID := c.GetString(KeyMailID)
					sender := c.GetString(KeySender)
					subject := c.GetString(KeySubject)
					source := emailText(c)

					// Prefer the actual last inbound thread message
					// when the mailbox is reachable
					if userEmail := c.GetString(KeyReceiver); userEmail != "" && deps.Connectors != nil {
						if msg, err := deps.Connectors.LastInboundMessage(ctx, userEmail, mailID); err == nil && msg != nil {
							source = msg.Body
							sender = msg.Sender
							subject = msg.Subject
						}
					}

					raw, err := deps.Generator.Generate(ctx, fmt.Sprintf(draftReplyPrompt, sender, subject, source))
					if err != nil {
						return StepResult{}, err
					}
					draft := strings.TrimSpace(raw)

					if err := deps.Records.SaveDraftReply(c.GetInt64(KeyUserID), mailID, draft); err != nil {
						return StepResult{}, err
					}
					return TextResult(draft), nil
				},
			},
			summarizeRecordStep(deps, CategoryActionableTask, OutcomeActionableTask, KeySummary),
			{
				Name:    "extract-items",
				Inputs:  []string{KeyBody, KeyCurrentDate},
				Outputs: []string{KeyExtractedItems},
				Run: func(ctx context.Context, c Context) (StepResult, error) {
					anchor := c.GetTime(KeyCurrentDate)
					prompt := fmt.Sprintf(extractTasksPrompt, anchor.Format("2006-01-02"), emailText(c))
					raw, err := deps.Generator.Generate(ctx, prompt)
					if err != nil {
						return StepResult{}, err
					}

					// An empty array is a valid outcome, not a failure
					var items []taskdomain.Extraction
					if err := DecodeModelJSON(raw, &items); err != nil {
						return StepResult{}, err
					}
					return StructuredResult(map[string]any{KeyExtractedItems: items}), nil
				},
			},
			{
				Name:    "normalize-dates",
				Inputs:  []string{KeyExtractedItems, KeyCurrentDate},
				Outputs: []string{KeyExtractedItems},
				Run: func(ctx context.Context, c Context) (StepResult, error) {
					items, ok := c.Get(KeyExtractedItems).([]taskdomain.Extraction)
					if !ok {
						return StepResult{}, fmt.Errorf("extracted items have unexpected shape")
					}

					anchor := c.GetTime(KeyCurrentDate)
					for i := range items {
						if items[i].Due == "" {
							continue
						}
						if t := dates.Normalize(items[i].Due, anchor); t != nil {
							items[i].Due = t.Format(time.RFC3339)
						} else {
							// Unparseable expressions are dropped, not
							// stored as literal strings
							items[i].Due = ""
						}
					}
					return StructuredResult(map[string]any{KeyExtractedItems: items}), nil
				},
			},
			{
				Name:    "persist-tasks",
				Inputs:  []string{KeyExtractedItems, KeyUserID, KeyMailID, KeyCurrentDate},
				Outputs: []string{KeyAnswer},
				Run: func(ctx context.Context, c Context) (StepResult, error) {
					items, ok := c.Get(KeyExtractedItems).([]taskdomain.Extraction)
					if !ok {
						return StepResult{}, fmt.Errorf("extracted items have unexpected shape")
					}

					tasks, err := deps.Tasks.CreateFromExtractions(
						c.GetInt64(KeyUserID),
						c.GetString(KeyMailID),
						items,
						c.GetTime(KeyCurrentDate),
					)
					if err != nil {
						return StepResult{}, err
					}

					answer := fmt.Sprintf("Processed email %s: created %d task(s).", c.GetString(KeyMailID), len(tasks))
					return TextResult(answer), nil
				},
			},
		},
	}
}

func noActionPipeline(deps Deps) *Pipeline {
	return &Pipeline{
		Name: "no-action",
		Steps: []Step{
			summarizeRecordStep(deps, CategoryNoAction, OutcomeNoAction, KeyAnswer),
		},
	}
}

// summarizeRecordStep generates a summary of the email and persists a
// processed-email record with it
func summarizeRecordStep(deps Deps, category, outcome, outputKey string) Step {
	return Step{
		Name:    "summarize-record",
		Inputs:  []string{KeyMailID, KeyBody, KeySubject, KeySender, KeyUserID},
		Outputs: []string{outputKey},
		Run: func(ctx context.Context, c Context) (StepResult, error) {
			prompt := fmt.Sprintf(summarizeEmailPrompt, c.GetString(KeySubject), emailText(c))
			raw, err := deps.Generator.Generate(ctx, prompt)
			if err != nil {
				return StepResult{}, err
			}
			summary := strings.TrimSpace(raw)

			record := &recdomain.EmailRecord{
				UserID:   c.GetInt64(KeyUserID),
				MailID:   c.GetString(KeyMailID),
				Subject:  c.GetString(KeySubject),
				Sender:   c.GetString(KeySender),
				Category: category,
				Summary:  summary,
				Outcome:  outcome,
			}
			if err := deps.Records.Record(ctx, record); err != nil {
				return StepResult{}, err
			}
			return TextResult(summary), nil
		},
	}
}

func reminderTodoPipeline(deps Deps) *Pipeline {
	return &Pipeline{
		Name: "reminder-todo",
		Steps: []Step{
			{
				Name:    "extract-todo",
				Inputs:  []string{KeyQuestion, KeyCurrentDate},
				Outputs: []string{KeyTitle, KeyDetail, KeyDue},
				Run: func(ctx context.Context, c Context) (StepResult, error) {
					anchor := c.GetTime(KeyCurrentDate)
					prompt := fmt.Sprintf(extractTodoPrompt, anchor.Format("2006-01-02"), c.GetString(KeyQuestion))
					raw, err := deps.Generator.Generate(ctx, prompt)
					if err != nil {
						return StepResult{}, err
					}

					var todo struct {
						Title  string `json:"title"`
						Detail string `json:"detail"`
						Due    string `json:"due"`
					}
					if err := DecodeModelJSON(raw, &todo); err != nil {
						return StepResult{}, err
					}
					return StructuredResult(map[string]any{
						KeyTitle:  todo.Title,
						KeyDetail: todo.Detail,
						KeyDue:    todo.Due,
					}), nil
				},
			},
			{
				Name:    "create-todo",
				Inputs:  []string{KeyTitle, KeyDetail, KeyDue, KeySender, KeyCurrentDate},
				Outputs: []string{KeyAnswer},
				Run: func(ctx context.Context, c Context) (StepResult, error) {
					anchor := c.GetTime(KeyCurrentDate)

					due := dates.Normalize(c.GetString(KeyDue), anchor)
					if due == nil {
						// Reminders without a resolvable date are due today
						today := anchor
						due = &today
					}

					title := c.GetString(KeyTitle)
					if _, err := deps.Connectors.CreateTodoTask(ctx, c.GetString(KeySender), title, c.GetString(KeyDetail), due); err != nil {
						return StepResult{}, err
					}

					return TextResult(fmt.Sprintf("Reminder created: %s (due %s)", title, due.Format("2006-01-02"))), nil
				},
			},
		},
	}
}

func reminderEventPipeline(deps Deps) *Pipeline {
	return &Pipeline{
		Name: "reminder-event",
		Steps: []Step{
			{
				Name:    "extract-event",
				Inputs:  []string{KeyQuestion, KeyCurrentDate},
				Outputs: []string{KeyEventFields},
				Run: func(ctx context.Context, c Context) (StepResult, error) {
					anchor := c.GetTime(KeyCurrentDate)
					prompt := fmt.Sprintf(extractEventPrompt, anchor.Format("2006-01-02"), c.GetString(KeyQuestion))
					raw, err := deps.Generator.Generate(ctx, prompt)
					if err != nil {
						return StepResult{}, err
					}

					var fields eventFields
					if err := DecodeModelJSON(raw, &fields); err != nil {
						return StepResult{}, err
					}
					return StructuredResult(map[string]any{KeyEventFields: fields}), nil
				},
			},
			{
				Name:    "create-event",
				Inputs:  []string{KeyEventFields, KeySender, KeyCurrentDate},
				Outputs: []string{KeyAnswer},
				Run: func(ctx context.Context, c Context) (StepResult, error) {
					fields, ok := c.Get(KeyEventFields).(eventFields)
					if !ok {
						return StepResult{}, fmt.Errorf("event fields have unexpected shape")
					}

					anchor := c.GetTime(KeyCurrentDate)
					start := dates.Normalize(fields.Start, anchor)
					if start == nil {
						return StepResult{}, fmt.Errorf("could not resolve event start time from %q", fields.Start)
					}

					end := time.Time{}
					if e := dates.Normalize(fields.End, anchor); e != nil {
						end = *e
					}
					if end.IsZero() || !end.After(*start) {
						end = start.Add(time.Hour)
					}

					location := fields.Location
					if location == "" {
						location = "Not specified"
					}

					event := CalendarEvent{
						Subject:   fields.Subject,
						Location:  location,
						Start:     *start,
						End:       end,
						Attendees: fields.Attendees,
					}
					link, err := deps.Connectors.CreateCalendarEvent(ctx, c.GetString(KeySender), event)
					if err != nil {
						return StepResult{}, err
					}

					answer := fmt.Sprintf("Event created: %s on %s.", fields.Subject, start.Format("2006-01-02 15:04"))
					if link != "" {
						answer += " " + link
					}
					return TextResult(answer), nil
				},
			},
		},
	}
}

// emailText picks the richest available text for a mail, preferring
// the full body over the preview
func emailText(c Context) string {
	if body := c.GetString(KeyBody); body != "" {
		return body
	}
	return c.GetString(KeyBodyPreview)
}
