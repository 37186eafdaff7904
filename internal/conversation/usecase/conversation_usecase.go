package usecase

import (
	"context"
	"strings"

	"mailmind-backend/internal/conversation/domain"
	"mailmind-backend/internal/conversation/repository"
)

// ConversationUsecase persists question and answer exchanges and
// maintains conversation titles
type ConversationUsecase interface {
	// AppendExchange stores the user's question and the assistant's
	// answer in the user's conversation. After the first exchange the
	// conversation is titled with the opening question. fileURLs are
	// attached to the user message.
	AppendExchange(ctx context.Context, userID int64, question, answer string, fileURLs []string) error

	ListConversations(userID int64) ([]*domain.Conversation, error)
	ListMessages(conversationID int64, limit int) ([]*domain.Message, error)

	// RecentHistory formats the latest messages for use as prompt
	// context
	RecentHistory(userID int64, limit int) (string, error)
}

type conversationUsecase struct {
	repo repository.ConversationRepository
}

func NewConversationUsecase(repo repository.ConversationRepository) ConversationUsecase {
	return &conversationUsecase{
		repo: repo,
	}
}

func (u *conversationUsecase) AppendExchange(ctx context.Context, userID int64, question, answer string, fileURLs []string) error {
	conv, err := u.repo.GetOrCreateForUser(userID)
	if err != nil {
		return err
	}

	if _, err := u.repo.InsertMessage(conv.ID, domain.RoleUser, question, strings.Join(fileURLs, ",")); err != nil {
		return err
	}
	if _, err := u.repo.InsertMessage(conv.ID, domain.RoleAssistant, answer, ""); err != nil {
		return err
	}

	return u.retitleIfFirst(conv.ID, question)
}

// retitleIfFirst titles the conversation with its opening question.
// The count check only matches right after the first exchange, so the
// title is set exactly once.
func (u *conversationUsecase) retitleIfFirst(conversationID int64, question string) error {
	count, err := u.repo.CountMessages(conversationID)
	if err != nil {
		return err
	}
	if count != 2 {
		return nil
	}

	title := strings.TrimSpace(question)
	if runes := []rune(title); len(runes) > 80 {
		title = string(runes[:80])
	}
	if title == "" {
		return nil
	}
	return u.repo.UpdateTitle(conversationID, title)
}

func (u *conversationUsecase) ListConversations(userID int64) ([]*domain.Conversation, error) {
	return u.repo.ListByUser(userID)
}

func (u *conversationUsecase) ListMessages(conversationID int64, limit int) ([]*domain.Message, error) {
	return u.repo.ListMessages(conversationID, limit)
}

func (u *conversationUsecase) RecentHistory(userID int64, limit int) (string, error) {
	conv, err := u.repo.GetOrCreateForUser(userID)
	if err != nil {
		return "", err
	}

	messages, err := u.repo.ListMessages(conv.ID, limit)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, msg := range messages {
		b.WriteString(msg.Role)
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return b.String(), nil
}
