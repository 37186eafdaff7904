package orchestrator

import (
	"context"
	"errors"
	"time"

	authdomain "mailmind-backend/internal/auth/domain"
	recdomain "mailmind-backend/internal/emailrecord/domain"
	taskdomain "mailmind-backend/internal/task/domain"
)

// stubClassifier returns a fixed label per classification kind
type stubClassifier struct {
	labels map[string]string
	calls  []string
}

func (s *stubClassifier) Classify(_ context.Context, _, kind string) (string, error) {
	s.calls = append(s.calls, kind)
	return s.labels[kind], nil
}

// stubGenerator answers through a prompt-inspecting function
type stubGenerator struct {
	respond func(prompt string) string
	calls   int
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.calls++
	if s.respond == nil {
		return "", errors.New("unexpected generator call")
	}
	return s.respond(prompt), nil
}

type sentMail struct {
	UserEmail   string
	Receiver    string
	Subject     string
	Content     string
	Attachments []Attachment
}

type createdTodo struct {
	UserEmail string
	Title     string
	Notes     string
	Due       *time.Time
}

// stubConnectors records side effects instead of performing them
type stubConnectors struct {
	contactEmail string
	mail         *sentMail
	todo         *createdTodo
	event        *CalendarEvent
	replied      bool
}

func (s *stubConnectors) SendMail(_ context.Context, userEmail, receiver, subject, content string, attachments []Attachment) error {
	s.mail = &sentMail{UserEmail: userEmail, Receiver: receiver, Subject: subject, Content: content, Attachments: attachments}
	return nil
}

func (s *stubConnectors) ReplyMail(_ context.Context, _, _, _ string, _ []Attachment) error {
	s.replied = true
	return nil
}

func (s *stubConnectors) ReadEmail(_ context.Context, _, _ string) (*EmailMessage, error) {
	return nil, errors.New("not available")
}

func (s *stubConnectors) FetchThread(_ context.Context, _, _ string) ([]*EmailMessage, error) {
	return nil, errors.New("not available")
}

func (s *stubConnectors) LastInboundMessage(_ context.Context, _, _ string) (*EmailMessage, error) {
	return nil, errors.New("not available")
}

func (s *stubConnectors) LookupContactEmail(_ context.Context, _, _ string) (string, error) {
	if s.contactEmail == "" {
		return "", errors.New("no contact found")
	}
	return s.contactEmail, nil
}

func (s *stubConnectors) CreateCalendarEvent(_ context.Context, _ string, event CalendarEvent) (string, error) {
	s.event = &event
	return "https://calendar.example/e/1", nil
}

func (s *stubConnectors) CreateTodoTask(_ context.Context, userEmail, title, notes string, due *time.Time) (string, error) {
	s.todo = &createdTodo{UserEmail: userEmail, Title: title, Notes: notes, Due: due}
	return "todo-1", nil
}

func (s *stubConnectors) UserProfile(_ context.Context, _ string) (string, error) {
	return "", errors.New("no profile")
}

type exchange struct {
	UserID   int64
	Question string
	Answer   string
	FileURLs []string
}

type stubConversations struct {
	exchanges []exchange
}

func (s *stubConversations) AppendExchange(_ context.Context, userID int64, question, answer string, fileURLs []string) error {
	s.exchanges = append(s.exchanges, exchange{UserID: userID, Question: question, Answer: answer, FileURLs: fileURLs})
	return nil
}

func (s *stubConversations) RecentHistory(int64, int) (string, error) {
	return "", nil
}

type stubTasks struct {
	userID      int64
	mailID      string
	anchor      time.Time
	extractions []taskdomain.Extraction
}

func (s *stubTasks) CreateFromExtractions(userID int64, mailID string, extractions []taskdomain.Extraction, anchor time.Time) ([]*taskdomain.Task, error) {
	s.userID = userID
	s.mailID = mailID
	s.anchor = anchor
	s.extractions = extractions

	tasks := make([]*taskdomain.Task, 0, len(extractions))
	for _, ext := range extractions {
		if ext.Title == "" {
			continue
		}
		tasks = append(tasks, &taskdomain.Task{UserID: userID, MailID: mailID, Title: ext.Title})
	}
	return tasks, nil
}

type stubRecords struct {
	records []*recdomain.EmailRecord
	drafts  map[string]string
}

func (s *stubRecords) Record(_ context.Context, record *recdomain.EmailRecord) error {
	s.records = append(s.records, record)
	return nil
}

func (s *stubRecords) SaveDraftReply(_ int64, mailID, draft string) error {
	if s.drafts == nil {
		s.drafts = make(map[string]string)
	}
	s.drafts[mailID] = draft
	return nil
}

func (s *stubRecords) DraftReply(mailID string) (string, error) {
	return s.drafts[mailID], nil
}

type stubUsers struct {
	created []string
}

func (s *stubUsers) GetOrCreateUser(email, _ string) (*authdomain.User, error) {
	s.created = append(s.created, email)
	return &authdomain.User{ID: 99, Email: email}, nil
}
