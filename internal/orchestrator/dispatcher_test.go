package orchestrator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailmind-backend/pkg/ai/prompts"
)

func fixedNow() time.Time {
	return time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
}

func testDeps(classifier *stubClassifier, generator *stubGenerator) (Deps, *stubConnectors, *stubConversations, *stubTasks, *stubRecords) {
	connectors := &stubConnectors{}
	conversations := &stubConversations{}
	tasks := &stubTasks{}
	records := &stubRecords{}

	deps := Deps{
		Classifier:    classifier,
		Generator:     generator,
		Connectors:    connectors,
		Conversations: conversations,
		Tasks:         tasks,
		Records:       records,
		Users:         &stubUsers{},
		Now:           fixedNow,
	}
	return deps, connectors, conversations, tasks, records
}

func TestDispatchMalformedEvent(t *testing.T) {
	deps, _, _, _, _ := testDeps(&stubClassifier{}, &stubGenerator{})
	d := NewDispatcher(deps)

	_, err := d.Dispatch(context.Background(), &Event{Sender: "a@x.com"})
	require.ErrorIs(t, err, ErrMalformedEvent)
}

func TestDispatchGateTable(t *testing.T) {
	incoming := &Event{ID: "m1", Body: "hello", Sender: "s@x.com", UserID: 1}
	request := &Event{Question: "hello", Sender: "a@x.com", UserID: 1}

	disallowed := []struct {
		category string
		event    *Event
	}{
		{CategoryRequiresResponse, incoming},
		{CategoryReminder, incoming},
		{CategoryScheduleEvent, incoming},
		{CategoryActionableTask, request},
		{CategorySpam, request},
		{CategoryNoAction, request},
		{"nonsense_label", incoming},
		{"nonsense_label", request},
	}

	for _, tt := range disallowed {
		t.Run(tt.category+"/"+tt.event.Question+tt.event.ID, func(t *testing.T) {
			classifier := &stubClassifier{labels: map[string]string{prompts.KindCategory: tt.category}}
			deps, _, _, _, _ := testDeps(classifier, &stubGenerator{})
			d := NewDispatcher(deps)

			result, err := d.Dispatch(context.Background(), tt.event)
			require.NoError(t, err)
			assert.Equal(t, OutcomeUnknown, result.Type)
			assert.Equal(t, unknownCategoryMessage, result.Answer)
		})
	}
}

func TestDispatchSpamFixedMessage(t *testing.T) {
	classifier := &stubClassifier{labels: map[string]string{prompts.KindCategory: CategorySpam}}
	generator := &stubGenerator{}
	deps, _, _, _, records := testDeps(classifier, generator)
	d := NewDispatcher(deps)

	result, err := d.Dispatch(context.Background(), &Event{
		ID: "m9", Body: "buy now", Sender: "spam@x.com", UserID: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSpam, result.Type)
	assert.Equal(t, spamMessage, result.Answer)
	assert.Zero(t, generator.calls, "spam must not invoke generation")
	assert.Empty(t, records.records)
}

func TestDispatchCasualReply(t *testing.T) {
	classifier := &stubClassifier{labels: map[string]string{
		prompts.KindCategory: "Requires_Response ", // label normalization is exercised here
		prompts.KindIntent:   IntentGeneral,
	}}
	generator := &stubGenerator{respond: func(string) string { return "Hi there!" }}
	deps, _, conversations, _, _ := testDeps(classifier, generator)
	d := NewDispatcher(deps)

	result, err := d.Dispatch(context.Background(), &Event{
		Question: "how are you?", Sender: "a@x.com", UserID: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCasualReply, result.Type)
	assert.Equal(t, "Hi there!", result.Answer)
	assert.Equal(t, "how are you?", result.Question)

	require.Len(t, conversations.exchanges, 1)
	assert.Equal(t, int64(7), conversations.exchanges[0].UserID)
	assert.Equal(t, "how are you?", conversations.exchanges[0].Question)
	assert.Equal(t, "Hi there!", conversations.exchanges[0].Answer)
}

func TestDispatchReminderTodoScenario(t *testing.T) {
	classifier := &stubClassifier{labels: map[string]string{
		prompts.KindCategory: CategoryReminder,
		prompts.KindReminder: ReminderTodo,
	}}
	generator := &stubGenerator{respond: func(prompt string) string {
		return `{"title": "call Bob", "detail": "", "due": "tomorrow"}`
	}}
	deps, connectors, _, _, _ := testDeps(classifier, generator)
	d := NewDispatcher(deps)

	result, err := d.Dispatch(context.Background(), &Event{
		Question: "Remind me to call Bob tomorrow", Sender: "a@x.com", UserID: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeReminderCreated, result.Type)
	assert.Contains(t, result.Answer, "call Bob")

	require.NotNil(t, connectors.todo)
	assert.Equal(t, "call Bob", connectors.todo.Title)
	require.NotNil(t, connectors.todo.Due)
	assert.Equal(t, 2025, connectors.todo.Due.Year())
	assert.Equal(t, time.January, connectors.todo.Due.Month())
	assert.Equal(t, 11, connectors.todo.Due.Day())
}

func TestDispatchNoActionScenario(t *testing.T) {
	classifier := &stubClassifier{labels: map[string]string{prompts.KindCategory: CategoryNoAction}}
	generator := &stubGenerator{respond: func(string) string { return "The server was updated." }}
	deps, _, _, _, records := testDeps(classifier, generator)
	d := NewDispatcher(deps)

	result, err := d.Dispatch(context.Background(), &Event{
		ID: "m1", Subject: "FYI", BodyPreview: "server updated", Sender: "s@x.com", UserID: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoAction, result.Type)
	assert.Equal(t, "The server was updated.", result.Answer)

	require.Len(t, records.records, 1)
	assert.Equal(t, int64(5), records.records[0].UserID)
	assert.Equal(t, "m1", records.records[0].MailID)
	assert.Equal(t, CategoryNoAction, records.records[0].Category)
}

func TestDispatchActionableTaskZeroItems(t *testing.T) {
	classifier := &stubClassifier{labels: map[string]string{prompts.KindCategory: CategoryActionableTask}}
	generator := &stubGenerator{respond: func(prompt string) string {
		switch {
		case strings.Contains(prompt, "JSON array"):
			return "[]"
		case strings.Contains(prompt, "Summarize"):
			return "Nothing to do here."
		default:
			return "Thanks, noted."
		}
	}}
	deps, _, _, tasks, records := testDeps(classifier, generator)
	d := NewDispatcher(deps)

	result, err := d.Dispatch(context.Background(), &Event{
		ID: "m2", Subject: "Update", Body: "All systems nominal.", Sender: "s@x.com", Receiver: "me@x.com", UserID: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeActionableTask, result.Type)
	assert.Contains(t, result.Answer, "0 task")
	assert.Empty(t, tasks.extractions)

	// Draft reply and summary record are still persisted
	assert.Equal(t, "Thanks, noted.", records.drafts["m2"])
	require.Len(t, records.records, 1)
	assert.Equal(t, CategoryActionableTask, records.records[0].Category)
}

func TestDispatchActionableTaskDatesNormalized(t *testing.T) {
	classifier := &stubClassifier{labels: map[string]string{prompts.KindCategory: CategoryActionableTask}}
	generator := &stubGenerator{respond: func(prompt string) string {
		switch {
		case strings.Contains(prompt, "JSON array"):
			return `[{"title": "send report", "detail": "", "due": "tomorrow"},
				{"title": "vague thing", "detail": "", "due": "whenever it rains"}]`
		case strings.Contains(prompt, "Summarize"):
			return "Report requested."
		default:
			return "Will do."
		}
	}}
	deps, _, _, tasks, _ := testDeps(classifier, generator)
	d := NewDispatcher(deps)

	result, err := d.Dispatch(context.Background(), &Event{
		ID: "m3", Subject: "Report", Body: "Please send the report tomorrow.", Sender: "s@x.com", UserID: 4,
	})
	require.NoError(t, err)
	assert.Contains(t, result.Answer, "2 task")

	require.Len(t, tasks.extractions, 2)
	// Parseable expression becomes ISO-8601 relative to the anchor
	assert.True(t, strings.HasPrefix(tasks.extractions[0].Due, "2025-01-11"), "got %q", tasks.extractions[0].Due)
	// Unparseable expression is dropped, not stored verbatim
	assert.Empty(t, tasks.extractions[1].Due)
}

func TestSendEmailAttachmentRoundTrip(t *testing.T) {
	generator := &stubGenerator{respond: func(prompt string) string {
		return `{"receiver": "bob@x.com", "subject": "Report", "content": "Here you go."}`
	}}
	deps, connectors, _, _, _ := testDeps(&stubClassifier{}, generator)
	d := NewDispatcher(deps)

	content := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0x01}
	event := &Event{
		Question: "send the report to bob",
		Sender:   "a@x.com",
		UserID:   7,
		Attachments: []Attachment{
			{Filename: "report.pdf", MimeType: "application/pdf", Content: content},
		},
	}

	result, err := d.RunSendEmail(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, OutcomeEmailSent, result.Type)

	require.NotNil(t, connectors.mail)
	assert.Equal(t, "bob@x.com", connectors.mail.Receiver)
	require.Len(t, connectors.mail.Attachments, 1)
	assert.Equal(t, "report.pdf", connectors.mail.Attachments[0].Filename)
	// The payload reaches the send step byte-identical
	assert.Equal(t, content, connectors.mail.Attachments[0].Content)
}

func TestWriteEmailContactLookup(t *testing.T) {
	generator := &stubGenerator{respond: func(prompt string) string {
		switch {
		case strings.Contains(prompt, "Review"):
			return `{"approved": true, "feedback": ""}`
		default:
			return `{"receiver": "Bob", "subject": "Lunch", "content": "Lunch on Friday?"}`
		}
	}}
	deps, connectors, _, _, _ := testDeps(&stubClassifier{}, generator)
	connectors.contactEmail = "bob@corp.com"
	d := NewDispatcher(deps)

	result, err := d.RunWriteEmail(context.Background(), &Event{
		Question: "write an email to Bob about lunch", Sender: "a@x.com", UserID: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeEmailWritten, result.Type)
	assert.Contains(t, result.Answer, "To : bob@corp.com")
	assert.Contains(t, result.Answer, "Subject : Lunch")
	assert.NotContains(t, result.Answer, "Reviewer notes")
}

func TestWriteEmailReviewFeedbackSurfaced(t *testing.T) {
	generator := &stubGenerator{respond: func(prompt string) string {
		switch {
		case strings.Contains(prompt, "Review"):
			return `{"approved": false, "feedback": "Too terse."}`
		default:
			return `{"receiver": "bob@corp.com", "subject": "Hi", "content": "Hi."}`
		}
	}}
	deps, _, _, _, _ := testDeps(&stubClassifier{}, generator)
	d := NewDispatcher(deps)

	result, err := d.RunWriteEmail(context.Background(), &Event{
		Question: "write to bob", Sender: "a@x.com", UserID: 7,
	})
	require.NoError(t, err)
	assert.Contains(t, result.Answer, "Reviewer notes: Too terse.")
}

func TestScheduleEventDefaults(t *testing.T) {
	classifier := &stubClassifier{labels: map[string]string{prompts.KindCategory: CategoryScheduleEvent}}
	generator := &stubGenerator{respond: func(string) string {
		return `{"subject": "Standup", "start": "2025-01-13 10:00", "end": "", "location": "", "attendees": []}`
	}}
	deps, connectors, _, _, _ := testDeps(classifier, generator)
	d := NewDispatcher(deps)

	result, err := d.Dispatch(context.Background(), &Event{
		Question: "schedule standup Monday at 10", Sender: "a@x.com", UserID: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeEventCreated, result.Type)

	require.NotNil(t, connectors.event)
	assert.Equal(t, "Standup", connectors.event.Subject)
	assert.Equal(t, "Not specified", connectors.event.Location)
	assert.Equal(t, time.Hour, connectors.event.End.Sub(connectors.event.Start))
}

func TestDraftReplyPreviewStoredDraft(t *testing.T) {
	deps, _, _, _, records := testDeps(&stubClassifier{}, &stubGenerator{})
	records.drafts = map[string]string{"m5": "Stored draft."}
	d := NewDispatcher(deps)

	draft, err := d.DraftReplyPreview(context.Background(), 7, "me@x.com", "m5")
	require.NoError(t, err)
	assert.Equal(t, "Stored draft.", draft)
}
