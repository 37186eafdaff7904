package repository

import (
	"mailmind-backend/internal/emailrecord/domain"
)

// EmailRecordRepository defines data access for processed email records
type EmailRecordRepository interface {
	// Upsert inserts a record, or updates the existing one for the
	// same mail ID. Reprocessing an email never duplicates its record.
	Upsert(record *domain.EmailRecord) error

	// UpdateDraftReply stores a draft reply for a mail, creating the
	// record if the mail has not been processed yet
	UpdateDraftReply(userID int64, mailID, draft string) error

	// FindByMailID returns the record for a mail, nil when absent
	FindByMailID(mailID string) (*domain.EmailRecord, error)

	// ListByUser returns a user's records, most recent first
	ListByUser(userID int64, limit, offset int) ([]*domain.EmailRecord, int64, error)

	// FindByMailIDs returns records matching the given mail IDs,
	// preserving the input order
	FindByMailIDs(userID int64, mailIDs []string) ([]*domain.EmailRecord, error)
}
