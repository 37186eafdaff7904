package orchestrator

import (
	"context"
	"time"

	authdomain "mailmind-backend/internal/auth/domain"
	recdomain "mailmind-backend/internal/emailrecord/domain"
	taskdomain "mailmind-backend/internal/task/domain"
	"mailmind-backend/pkg/ai"
)

// EmailMessage is the connector-level view of a mail message
type EmailMessage struct {
	MailID      string
	Subject     string
	Body        string
	Sender      string
	ReceivedAt  time.Time
	Attachments []Attachment
}

// CalendarEvent describes an event to create on the user's calendar
type CalendarEvent struct {
	Subject     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

// Connectors are the side-effecting operations the branch pipelines
// invoke against external systems. All operations are keyed by the
// acting user's email address. Send and create operations are not
// retried here; transient-failure handling lives inside the
// implementation where applicable (contact lookup).
type Connectors interface {
	SendMail(ctx context.Context, userEmail, receiver, subject, content string, attachments []Attachment) error
	ReplyMail(ctx context.Context, userEmail, mailID, comment string, attachments []Attachment) error
	ReadEmail(ctx context.Context, userEmail, mailID string) (*EmailMessage, error)
	FetchThread(ctx context.Context, userEmail, mailID string) ([]*EmailMessage, error)
	LastInboundMessage(ctx context.Context, userEmail, mailID string) (*EmailMessage, error)
	LookupContactEmail(ctx context.Context, userEmail, name string) (string, error)
	CreateCalendarEvent(ctx context.Context, userEmail string, event CalendarEvent) (string, error)
	CreateTodoTask(ctx context.Context, userEmail, title, notes string, due *time.Time) (string, error)
	UserProfile(ctx context.Context, userEmail string) (string, error)
}

// ConversationStore persists question/answer exchanges
type ConversationStore interface {
	AppendExchange(ctx context.Context, userID int64, question, answer string, fileURLs []string) error
	RecentHistory(userID int64, limit int) (string, error)
}

// TaskStore persists extracted tasks
type TaskStore interface {
	CreateFromExtractions(userID int64, mailID string, extractions []taskdomain.Extraction, anchor time.Time) ([]*taskdomain.Task, error)
}

// RecordStore persists processed email records and draft replies
type RecordStore interface {
	Record(ctx context.Context, record *recdomain.EmailRecord) error
	SaveDraftReply(userID int64, mailID, draft string) error
	DraftReply(mailID string) (string, error)
}

// UserResolver maps email addresses to accounts, onboarding unknown
// ones
type UserResolver interface {
	GetOrCreateUser(email, name string) (*authdomain.User, error)
}

// Deps carries everything the dispatcher and its pipelines need. The
// pipelines are built once from these at startup and injected; there
// are no package-level registries.
type Deps struct {
	Classifier    ai.Classifier
	Generator     ai.Generator
	Connectors    Connectors
	Conversations ConversationStore
	Tasks         TaskStore
	Records       RecordStore
	Users         UserResolver

	// Now anchors relative date resolution; defaults to time.Now
	Now func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
