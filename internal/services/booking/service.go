// Package booking is the lifecycle store for tutoring sessions. It owns
// the status machine and is the only writer of booking status.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperr "tutorlink/internal/errors"
	"tutorlink/internal/events"
	"tutorlink/internal/models"
	"tutorlink/internal/policy"
	"tutorlink/internal/repositories"
)

// allowedTransitions is the full edge table of the status machine. The
// two terminal states have no outgoing edges.
var allowedTransitions = map[string]map[string]bool{
	models.BookingStatusPending: {
		models.BookingStatusConfirmed: true,
		models.BookingStatusCancelled: true,
	},
	models.BookingStatusConfirmed: {
		models.BookingStatusCompleted: true,
		models.BookingStatusCancelled: true,
	},
}

type Service interface {
	Create(ctx context.Context, actor *models.UserClaims, req CreateRequest) (*models.Booking, error)
	Get(ctx context.Context, actor *models.UserClaims, id uint) (*models.Booking, error)
	Transition(ctx context.Context, actor *models.UserClaims, id uint, target string) (*models.Booking, error)
	List(ctx context.Context, actor *models.UserClaims, filter ListFilter) ([]models.Booking, error)
	Upcoming(ctx context.Context, actor *models.UserClaims) ([]models.Booking, error)
}

// Cache is the subset of the cache service the lifecycle store uses.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	UpcomingKey(userID uint) string
	InvalidateUpcoming(ctx context.Context, userIDs ...uint) error
}

type service struct {
	repo       repositories.BookingRepository
	userRepo   repositories.UserRepository
	cache      Cache
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(
	repo repositories.BookingRepository,
	userRepo repositories.UserRepository,
	cache Cache,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) Service {
	return &service{
		repo:       repo,
		userRepo:   userRepo,
		cache:      cache,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *service) Create(ctx context.Context, actor *models.UserClaims, req CreateRequest) (*models.Booking, error) {
	if !policy.Allow(actor, policy.Resource{Kind: policy.KindBooking, OwnerID: req.StudentID}, policy.ActionCreate) {
		return nil, apperr.ErrForbidden
	}

	if err := s.validateSlot(req.Date, req.Time); err != nil {
		return nil, err
	}

	// Both parties must exist and the tutor must actually be a tutor.
	if _, err := s.userRepo.GetByID(req.StudentID); err != nil {
		return nil, apperr.Validation("student does not exist")
	}
	tutor, err := s.userRepo.GetByID(req.TutorID)
	if err != nil || tutor.Role != models.RoleTutor {
		return nil, apperr.Validation("tutor does not exist")
	}

	booking := &models.Booking{
		Reference: uuid.NewString(),
		StudentID: req.StudentID,
		TutorID:   req.TutorID,
		Date:      req.Date,
		Time:      req.Time,
		Status:    models.BookingStatusPending,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.invalidate(booking)
	s.publish(actor, events.EventBookingCreated, events.BookingCreatedPayload{
		BookingID: booking.ID,
		Reference: booking.Reference,
		StudentID: booking.StudentID,
		TutorID:   booking.TutorID,
		Date:      booking.Date,
		Time:      booking.Time,
	})

	return booking, nil
}

func (s *service) Get(ctx context.Context, actor *models.UserClaims, id uint) (*models.Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrBookingNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	if !policy.Allow(actor, bookingResource(booking), policy.ActionRead) {
		return nil, apperr.ErrForbidden
	}
	return booking, nil
}

// Transition moves a booking along one edge of the status machine. The
// write is a conditional update keyed on the status read here, so two
// racing transitions cannot both pass the precondition: the loser's
// update matches zero rows and surfaces as an invalid transition.
func (s *service) Transition(ctx context.Context, actor *models.UserClaims, id uint, target string) (*models.Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrBookingNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	if !policy.Allow(actor, bookingResource(booking), policy.ActionModify) {
		return nil, apperr.ErrForbidden
	}

	if !allowedTransitions[booking.Status][target] {
		return nil, apperr.ErrInvalidTransition
	}

	ok, err := s.repo.UpdateStatusIf(ctx, id, booking.Status, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race: the status moved between our read and write.
		return nil, apperr.ErrInvalidTransition
	}

	oldStatus := booking.Status
	booking.Status = target

	s.logger.Info("booking transitioned",
		zap.Uint("booking_id", booking.ID),
		zap.String("from", oldStatus),
		zap.String("to", target),
		zap.Uint("actor_id", actor.UserID))

	s.invalidate(booking)
	s.publish(actor, events.EventBookingStatusChanged, events.BookingStatusChangedPayload{
		BookingID: booking.ID,
		Reference: booking.Reference,
		StudentID: booking.StudentID,
		TutorID:   booking.TutorID,
		OldStatus: oldStatus,
		NewStatus: target,
	})

	return booking, nil
}

// List returns the bookings the actor participates in. Admins see all
// bookings matching the filter.
func (s *service) List(ctx context.Context, actor *models.UserClaims, filter ListFilter) ([]models.Booking, error) {
	repoFilter := repositories.BookingFilter{
		Status:   filter.Status,
		FromDate: filter.FromDate,
		SortAsc:  filter.Sort == "date",
	}

	if actor.IsAdmin() {
		return s.repo.ListAll(ctx, repoFilter)
	}
	return s.repo.ListForUser(ctx, actor.UserID, repoFilter)
}

// Upcoming returns the actor's not-yet-confirmed future sessions sorted
// by date then time, served from cache when possible.
func (s *service) Upcoming(ctx context.Context, actor *models.UserClaims) ([]models.Booking, error) {
	if s.cache != nil {
		var cached []models.Booking
		found, err := s.cache.Get(ctx, s.cache.UpcomingKey(actor.UserID), &cached)
		if err == nil && found {
			return cached, nil
		}
	}

	bookings, err := s.repo.ListForUser(ctx, actor.UserID, repositories.BookingFilter{
		Status:   models.BookingStatusPending,
		FromDate: s.now().Format("2006-01-02"),
		SortAsc:  true,
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.cache.UpcomingKey(actor.UserID), bookings); err != nil {
			s.logger.Warn("failed to cache upcoming sessions", zap.Error(err))
		}
	}
	return bookings, nil
}

func (s *service) validateSlot(date, timeStr string) error {
	if date == "" || timeStr == "" {
		return apperr.Validation("date and time are required")
	}
	slot, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeStr, time.Local)
	if err != nil {
		return apperr.Validation("date must be YYYY-MM-DD and time HH:MM")
	}
	if slot.Before(s.now()) {
		return apperr.Validation("booking slot is in the past")
	}
	return nil
}

func (s *service) invalidate(booking *models.Booking) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUpcoming(context.Background(), booking.StudentID, booking.TutorID); err != nil {
		s.logger.Warn("failed to invalidate session cache", zap.Error(err))
	}
}

// publish dispatches an event after the mutation committed. It runs on
// its own goroutine so the response path never waits on subscribers.
func (s *service) publish(actor *models.UserClaims, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actor.UserID,
		Timestamp: s.now(),
		Payload:   payload,
	}
	go func() {
		_ = s.dispatcher.Publish(context.Background(), event)
	}()
}

func bookingResource(b *models.Booking) policy.Resource {
	return policy.Resource{
		Kind:    policy.KindBooking,
		OwnerID: b.StudentID,
		TutorID: b.TutorID,
	}
}
