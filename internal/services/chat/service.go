// Package chat provides messaging between the two participants of a
// booking, persisted and mirrored to websocket rooms.
package chat

import (
	"context"
	"errors"

	apperr "tutorlink/internal/errors"
	"tutorlink/internal/models"
	"tutorlink/internal/policy"
	"tutorlink/internal/repositories"
)

// historyLimit caps a single history read.
const historyLimit = 200

type Service interface {
	Send(ctx context.Context, actor *models.UserClaims, bookingID uint, body string) (*models.Message, error)
	History(ctx context.Context, actor *models.UserClaims, bookingID uint) ([]models.Message, error)

	// Authorize reports whether the actor may join the booking's room.
	Authorize(ctx context.Context, actor *models.UserClaims, bookingID uint) error
}

type service struct {
	messages repositories.MessageRepository
	bookings repositories.BookingRepository
	hub      *Hub
}

func NewService(
	messages repositories.MessageRepository,
	bookings repositories.BookingRepository,
	hub *Hub,
) Service {
	return &service{
		messages: messages,
		bookings: bookings,
		hub:      hub,
	}
}

func (s *service) Send(ctx context.Context, actor *models.UserClaims, bookingID uint, body string) (*models.Message, error) {
	if body == "" {
		return nil, apperr.Validation("message body is required")
	}
	if err := s.Authorize(ctx, actor, bookingID); err != nil {
		return nil, err
	}

	message := &models.Message{
		BookingID: bookingID,
		SenderID:  actor.UserID,
		Body:      body,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Broadcast(bookingID, message)
	}
	return message, nil
}

func (s *service) History(ctx context.Context, actor *models.UserClaims, bookingID uint) ([]models.Message, error) {
	if err := s.Authorize(ctx, actor, bookingID); err != nil {
		return nil, err
	}
	return s.messages.ListForBooking(ctx, bookingID, historyLimit)
}

func (s *service) Authorize(ctx context.Context, actor *models.UserClaims, bookingID uint) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repositories.ErrBookingNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}

	resource := policy.Resource{
		Kind:    policy.KindBooking,
		OwnerID: booking.StudentID,
		TutorID: booking.TutorID,
	}
	if !policy.Allow(actor, resource, policy.ActionMessage) {
		return apperr.ErrForbidden
	}
	return nil
}
