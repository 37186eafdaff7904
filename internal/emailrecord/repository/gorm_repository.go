package repository

import (
	"errors"
	"time"

	"mailmind-backend/internal/emailrecord/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormEmailRecordRepository implements EmailRecordRepository using GORM
type gormEmailRecordRepository struct {
	db *gorm.DB
}

func NewGormEmailRecordRepository(db *gorm.DB) EmailRecordRepository {
	return &gormEmailRecordRepository{db: db}
}

func (r *gormEmailRecordRepository) Upsert(record *domain.EmailRecord) error {
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()

	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mail_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"subject", "sender", "category", "summary", "outcome", "updated_at"}),
	}).Create(record).Error
}

func (r *gormEmailRecordRepository) UpdateDraftReply(userID int64, mailID, draft string) error {
	record := &domain.EmailRecord{
		UserID:     userID,
		MailID:     mailID,
		DraftReply: draft,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mail_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"draft_reply", "updated_at"}),
	}).Create(record).Error
}

func (r *gormEmailRecordRepository) FindByMailID(mailID string) (*domain.EmailRecord, error) {
	var record domain.EmailRecord
	err := r.db.Where("mail_id = ?", mailID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *gormEmailRecordRepository) ListByUser(userID int64, limit, offset int) ([]*domain.EmailRecord, int64, error) {
	var records []*domain.EmailRecord
	var total int64

	query := r.db.Model(&domain.EmailRecord{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Limit(limit).Offset(offset).Find(&records).Error

	return records, total, err
}

func (r *gormEmailRecordRepository) FindByMailIDs(userID int64, mailIDs []string) ([]*domain.EmailRecord, error) {
	if len(mailIDs) == 0 {
		return nil, nil
	}

	var records []*domain.EmailRecord
	err := r.db.Where("user_id = ? AND mail_id IN ?", userID, mailIDs).Find(&records).Error
	if err != nil {
		return nil, err
	}

	// Preserve the caller's ranking
	byMailID := make(map[string]*domain.EmailRecord, len(records))
	for _, rec := range records {
		byMailID[rec.MailID] = rec
	}

	ordered := make([]*domain.EmailRecord, 0, len(records))
	for _, id := range mailIDs {
		if rec, ok := byMailID[id]; ok {
			ordered = append(ordered, rec)
		}
	}
	return ordered, nil
}
