// Package notification emails the parties affected by booking, KYC and
// payment events. Delivery is best-effort: one attempt, failures logged
// and swallowed, never surfaced to the request that triggered the event.
package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tutorlink/internal/config"
	"tutorlink/internal/events"
	"tutorlink/internal/models"
	"tutorlink/internal/repositories"
)

type Service struct {
	dispatcher events.Dispatcher
	userRepo   repositories.UserRepository
	mailer     Mailer
	logger     *zap.Logger
	cfg        config.SMTPConfig
}

func NewService(
	dispatcher events.Dispatcher,
	userRepo repositories.UserRepository,
	mailer Mailer,
	logger *zap.Logger,
	cfg config.SMTPConfig,
) *Service {
	return &Service{
		dispatcher: dispatcher,
		userRepo:   userRepo,
		mailer:     mailer,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to the events that trigger mail.
func (s *Service) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Subscribe(events.EventBookingCreated, s.handleBookingCreated)
	s.dispatcher.Subscribe(events.EventBookingStatusChanged, s.handleBookingStatusChanged)
	s.dispatcher.Subscribe(events.EventKYCSubmitted, s.handleKYCSubmitted)
	s.dispatcher.Subscribe(events.EventKYCStatusChanged, s.handleKYCStatusChanged)
	s.dispatcher.Subscribe(events.EventPaymentRecorded, s.handlePaymentRecorded)
}

func (s *Service) handleBookingCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.BookingCreatedPayload)
	if !ok {
		return nil
	}

	subject := fmt.Sprintf("New booking %s", payload.Reference)
	body := fmt.Sprintf("A session was requested for %s at %s.", payload.Date, payload.Time)

	s.sendToUser(payload.TutorID, subject, body)
	s.send(s.cfg.AdminEmail, subject, body)
	return nil
}

func (s *Service) handleBookingStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.BookingStatusChangedPayload)
	if !ok {
		return nil
	}

	subject := fmt.Sprintf("Booking %s is now %s", payload.Reference, payload.NewStatus)
	body := fmt.Sprintf("Booking %s moved from %s to %s.", payload.Reference, payload.OldStatus, payload.NewStatus)

	s.sendToUser(payload.StudentID, subject, body)
	s.sendToUser(payload.TutorID, subject, body)
	s.send(s.cfg.AdminEmail, subject, body)
	return nil
}

func (s *Service) handleKYCSubmitted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.KYCSubmittedPayload)
	if !ok {
		return nil
	}
	s.send(s.cfg.AdminEmail,
		"KYC submission awaiting review",
		fmt.Sprintf("Tutor %d submitted verification documents.", payload.UserID))
	return nil
}

func (s *Service) handleKYCStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.KYCStatusChangedPayload)
	if !ok {
		return nil
	}

	body := fmt.Sprintf("Your verification is now %s.", payload.NewStatus)
	if payload.NewStatus == models.KYCStatusRejected && payload.Comment != "" {
		body += " Reason: " + payload.Comment
	}
	s.sendToUser(payload.UserID, "Verification status updated", body)
	return nil
}

func (s *Service) handlePaymentRecorded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PaymentRecordedPayload)
	if !ok {
		return nil
	}

	if payload.Status == models.PaymentStatusFailed {
		subject := "Payment failed"
		body := fmt.Sprintf("The charge of $%.2f for your session could not be completed. Please update your payment method.", payload.Amount)
		s.sendToUser(payload.StudentID, subject, body)
		s.send(s.cfg.AdminEmail, subject,
			fmt.Sprintf("Charge for booking %d (student %d) failed.", payload.BookingID, payload.StudentID))
		return nil
	}

	s.sendToUser(payload.StudentID, "Payment received",
		fmt.Sprintf("Your session payment of $%.2f went through.", payload.Amount))
	return nil
}

func (s *Service) sendToUser(userID uint, subject, body string) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		s.logger.Warn("notification recipient lookup failed",
			zap.Uint("user_id", userID),
			zap.Error(err))
		return
	}
	s.send(user.Email, subject, body)
}

func (s *Service) send(to, subject, body string) {
	if to == "" {
		return
	}
	if err := s.mailer.Send(to, subject, body); err != nil {
		s.logger.Warn("notification delivery failed",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return
	}
	s.logger.Debug("notification sent",
		zap.String("to", to),
		zap.String("subject", subject))
}
