package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tutorlink/internal/models"
)

var ErrBookingNotFound = errors.New("booking not found")

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) GetByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Tutor").
		First(&booking, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// UpdateStatusIf is the compare-and-set the lifecycle store relies on:
// the WHERE clause re-checks the current status so two racing
// transitions cannot both pass the same precondition.
func (r *bookingRepository) UpdateStatusIf(ctx context.Context, id uint, from, to string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *bookingRepository) ListForUser(ctx context.Context, userID uint, filter BookingFilter) ([]models.Booking, error) {
	q := r.applyFilter(r.db.WithContext(ctx), filter).
		Where("student_id = ? OR tutor_id = ?", userID, userID)

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) ListAll(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := r.applyFilter(r.db.WithContext(ctx), filter).Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) applyFilter(q *gorm.DB, filter BookingFilter) *gorm.DB {
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.FromDate != "" {
		q = q.Where("date >= ?", filter.FromDate)
	}
	if filter.SortAsc {
		q = q.Order("date asc, time asc")
	} else {
		// insertion order
		q = q.Order("id asc")
	}
	return q
}
