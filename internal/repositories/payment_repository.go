package repositories

import (
	"context"

	"gorm.io/gorm"

	"tutorlink/internal/models"
)

// PaymentRepository persists booking charges.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByBookingID(ctx context.Context, bookingID uint) (*models.Payment, error)
	UpdateStatus(ctx context.Context, id uint, status string) error

	// UpdateOutcome records the charge result: final status plus the
	// Stripe intent the charge ran under.
	UpdateOutcome(ctx context.Context, id uint, status, intentID string) error
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) GetByBookingID(ctx context.Context, bookingID uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *paymentRepository) UpdateOutcome(ctx context.Context, id uint, status, intentID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           status,
			"stripe_intent_id": intentID,
		}).Error
}
