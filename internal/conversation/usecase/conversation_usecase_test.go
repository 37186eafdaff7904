package usecase

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailmind-backend/internal/conversation/domain"
)

type fakeConversationRepository struct {
	conversations map[int64]*domain.Conversation
	messages      map[int64][]*domain.Message
	nextID        int64
}

func newFakeConversationRepository() *fakeConversationRepository {
	return &fakeConversationRepository{
		conversations: make(map[int64]*domain.Conversation),
		messages:      make(map[int64][]*domain.Message),
	}
}

func (r *fakeConversationRepository) GetOrCreateForUser(userID int64) (*domain.Conversation, error) {
	for _, conv := range r.conversations {
		if conv.UserID == userID {
			return conv, nil
		}
	}
	r.nextID++
	conv := &domain.Conversation{ID: r.nextID, UserID: userID}
	r.conversations[conv.ID] = conv
	return conv, nil
}

func (r *fakeConversationRepository) InsertMessage(conversationID int64, role, content, fileURLs string) (*domain.Message, error) {
	r.nextID++
	msg := &domain.Message{
		ID:             r.nextID,
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		FileURLs:       fileURLs,
	}
	r.messages[conversationID] = append(r.messages[conversationID], msg)
	return msg, nil
}

func (r *fakeConversationRepository) CountMessages(conversationID int64) (int64, error) {
	return int64(len(r.messages[conversationID])), nil
}

func (r *fakeConversationRepository) UpdateTitle(conversationID int64, title string) error {
	r.conversations[conversationID].Title = title
	return nil
}

func (r *fakeConversationRepository) ListMessages(conversationID int64, limit int) ([]*domain.Message, error) {
	msgs := r.messages[conversationID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (r *fakeConversationRepository) ListByUser(userID int64) ([]*domain.Conversation, error) {
	var out []*domain.Conversation
	for _, conv := range r.conversations {
		if conv.UserID == userID {
			out = append(out, conv)
		}
	}
	return out, nil
}

func TestAppendExchangeTitlesWithFirstQuestion(t *testing.T) {
	repo := newFakeConversationRepository()
	uc := NewConversationUsecase(repo)
	ctx := context.Background()

	require.NoError(t, uc.AppendExchange(ctx, 1, "  what's on my calendar today?  ", "Nothing scheduled.", nil))

	conv, err := repo.GetOrCreateForUser(1)
	require.NoError(t, err)
	assert.Equal(t, "what's on my calendar today?", conv.Title)

	// Later exchanges must not retitle
	require.NoError(t, uc.AppendExchange(ctx, 1, "and tomorrow?", "One meeting at 10.", nil))
	assert.Equal(t, "what's on my calendar today?", conv.Title)
}

func TestAppendExchangeTruncatesLongTitle(t *testing.T) {
	repo := newFakeConversationRepository()
	uc := NewConversationUsecase(repo)

	question := strings.Repeat("remind me about the thing ", 10)
	require.NoError(t, uc.AppendExchange(context.Background(), 1, question, "Sure.", nil))

	conv, _ := repo.GetOrCreateForUser(1)
	assert.Len(t, conv.Title, 80)
}

func TestAppendExchangeTruncatesTitleOnRuneBoundary(t *testing.T) {
	repo := newFakeConversationRepository()
	uc := NewConversationUsecase(repo)

	question := strings.Repeat("é", 100)
	require.NoError(t, uc.AppendExchange(context.Background(), 1, question, "Sure.", nil))

	conv, _ := repo.GetOrCreateForUser(1)
	assert.True(t, utf8.ValidString(conv.Title))
	assert.Equal(t, 80, utf8.RuneCountInString(conv.Title))
}

func TestAppendExchangeStoresFileURLs(t *testing.T) {
	repo := newFakeConversationRepository()
	uc := NewConversationUsecase(repo)

	require.NoError(t, uc.AppendExchange(context.Background(), 1, "send this", "Done.", []string{"a.pdf", "b.png"}))

	conv, _ := repo.GetOrCreateForUser(1)
	msgs := repo.messages[conv.ID]
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Equal(t, "a.pdf,b.png", msgs[0].FileURLs)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
	assert.Empty(t, msgs[1].FileURLs)
}

func TestRecentHistoryFormat(t *testing.T) {
	repo := newFakeConversationRepository()
	uc := NewConversationUsecase(repo)

	require.NoError(t, uc.AppendExchange(context.Background(), 1, "hello", "Hi!", nil))

	history, err := uc.RecentHistory(1, 10)
	require.NoError(t, err)
	assert.Equal(t, "user: hello\nassistant: Hi!\n", history)
}
