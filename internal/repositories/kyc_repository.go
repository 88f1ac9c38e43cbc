package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tutorlink/internal/models"
)

var ErrKYCNotFound = errors.New("kyc record not found")

// KYCRepository persists tutor verification records. Upsert semantics:
// at most one record per user.
type KYCRepository interface {
	Upsert(ctx context.Context, record *models.KYCRecord) error
	GetByUserID(ctx context.Context, userID uint) (*models.KYCRecord, error)
	GetByID(ctx context.Context, id uint) (*models.KYCRecord, error)
	UpdateStatusIf(ctx context.Context, id uint, from, to, comment string, reviewedBy uint) (bool, error)
	ListByStatus(ctx context.Context, status string) ([]models.KYCRecord, error)
}

type kycRepository struct {
	db *gorm.DB
}

func NewKYCRepository(db *gorm.DB) KYCRepository {
	return &kycRepository{db: db}
}

func (r *kycRepository) Upsert(ctx context.Context, record *models.KYCRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"id_document_url", "photo_url", "certificate_url", "resume_url",
			"status", "review_comment", "reviewed_by", "updated_at",
		}),
	}).Create(record).Error
}

func (r *kycRepository) GetByUserID(ctx context.Context, userID uint) (*models.KYCRecord, error) {
	var record models.KYCRecord
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKYCNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *kycRepository) GetByID(ctx context.Context, id uint) (*models.KYCRecord, error) {
	var record models.KYCRecord
	err := r.db.WithContext(ctx).First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKYCNotFound
		}
		return nil, err
	}
	return &record, nil
}

// UpdateStatusIf moves a record from `from` to `to` with the same
// conditional-update shape the booking store uses.
func (r *kycRepository) UpdateStatusIf(ctx context.Context, id uint, from, to, comment string, reviewedBy uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.KYCRecord{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":         to,
			"review_comment": comment,
			"reviewed_by":    reviewedBy,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *kycRepository) ListByStatus(ctx context.Context, status string) ([]models.KYCRecord, error) {
	var records []models.KYCRecord
	if err := r.db.WithContext(ctx).Where("status = ?", status).Order("id asc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
