package repositories

import (
	"context"

	"tutorlink/internal/models"
)

// BookingFilter narrows List queries. Zero values mean "no filter".
type BookingFilter struct {
	Status   string
	FromDate string // inclusive lower bound, YYYY-MM-DD
	SortAsc  bool   // order by date, time ascending
}

// BookingRepository defines the persistence operations the lifecycle
// store needs: create, read, conditional status update, filtered query.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id uint) (*models.Booking, error)

	// UpdateStatusIf atomically moves the booking from `from` to `to`.
	// It reports false when the booking no longer holds `from`, in which
	// case nothing was written.
	UpdateStatusIf(ctx context.Context, id uint, from, to string) (bool, error)

	// ListForUser returns bookings where the user is student or tutor.
	ListForUser(ctx context.Context, userID uint, filter BookingFilter) ([]models.Booking, error)

	// ListAll returns all bookings matching the filter. Admin-only path.
	ListAll(ctx context.Context, filter BookingFilter) ([]models.Booking, error)
}
