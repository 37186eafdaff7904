package usecase

import (
	"context"
	"log"
	"strconv"

	"mailmind-backend/internal/emailrecord/domain"
	"mailmind-backend/internal/emailrecord/repository"
	"mailmind-backend/pkg/chroma"
)

// EmailRecordUsecase records processing outcomes and serves semantic
// search over them
type EmailRecordUsecase interface {
	// Record persists the processing outcome for a mail and indexes
	// it for semantic search
	Record(ctx context.Context, record *domain.EmailRecord) error

	// SaveDraftReply stores a draft reply for a mail
	SaveDraftReply(userID int64, mailID, draft string) error

	// DraftReply returns the stored draft for a mail, empty when none
	DraftReply(mailID string) (string, error)

	// ListRecords returns a user's records, most recent first
	ListRecords(userID int64, limit, offset int) ([]*domain.EmailRecord, int64, error)

	// Search finds the user's records most similar to the query
	Search(ctx context.Context, userID int64, query string, limit int) ([]*domain.EmailRecord, error)
}

type emailRecordUsecase struct {
	repo   repository.EmailRecordRepository
	chroma *chroma.ChromaClient
}

// NewEmailRecordUsecase creates the usecase. The chroma client may be
// nil, in which case indexing and search are disabled.
func NewEmailRecordUsecase(repo repository.EmailRecordRepository, chromaClient *chroma.ChromaClient) EmailRecordUsecase {
	return &emailRecordUsecase{
		repo:   repo,
		chroma: chromaClient,
	}
}

func (u *emailRecordUsecase) Record(ctx context.Context, record *domain.EmailRecord) error {
	if err := u.repo.Upsert(record); err != nil {
		return err
	}

	if u.chroma != nil {
		userID := strconv.FormatInt(record.UserID, 10)
		if err := u.chroma.UpsertRecord(ctx, record.MailID, userID, record.Category, record.Summary); err != nil {
			// Indexing failures never fail the pipeline
			log.Printf("[EmailRecord] failed to index record for mail %s: %v", record.MailID, err)
		}
	}

	return nil
}

func (u *emailRecordUsecase) SaveDraftReply(userID int64, mailID, draft string) error {
	return u.repo.UpdateDraftReply(userID, mailID, draft)
}

func (u *emailRecordUsecase) DraftReply(mailID string) (string, error) {
	record, err := u.repo.FindByMailID(mailID)
	if err != nil {
		return "", err
	}
	if record == nil {
		return "", nil
	}
	return record.DraftReply, nil
}

func (u *emailRecordUsecase) ListRecords(userID int64, limit, offset int) ([]*domain.EmailRecord, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	return u.repo.ListByUser(userID, limit, offset)
}

func (u *emailRecordUsecase) Search(ctx context.Context, userID int64, query string, limit int) ([]*domain.EmailRecord, error) {
	if u.chroma == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	mailIDs, _, err := u.chroma.SemanticSearch(ctx, strconv.FormatInt(userID, 10), query, limit)
	if err != nil {
		return nil, err
	}
	if len(mailIDs) == 0 {
		return nil, nil
	}

	return u.repo.FindByMailIDs(userID, mailIDs)
}
