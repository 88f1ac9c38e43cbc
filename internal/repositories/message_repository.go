package repositories

import (
	"context"

	"gorm.io/gorm"

	"tutorlink/internal/models"
)

// MessageRepository persists booking chat messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	ListForBooking(ctx context.Context, bookingID uint, limit int) ([]models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) ListForBooking(ctx context.Context, bookingID uint, limit int) ([]models.Message, error) {
	q := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Order("id asc")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var messages []models.Message
	if err := q.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
