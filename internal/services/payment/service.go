// Package payment raises a Stripe charge when a booking is confirmed.
// The charge is best-effort: a failed intent is recorded and notified,
// never rolled back into the confirmation.
package payment

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentintent"
	"go.uber.org/zap"

	"tutorlink/internal/config"
	"tutorlink/internal/events"
	"tutorlink/internal/models"
	"tutorlink/internal/repositories"
)

// defaultSessionPriceCents is charged when the tutor has no profile yet.
const defaultSessionPriceCents = 2500

// IntentCreator abstracts the Stripe call for tests.
type IntentCreator func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)

type Service struct {
	repo         repositories.PaymentRepository
	tutorRepo    repositories.TutorRepository
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	createIntent IntentCreator
}

func NewService(
	repo repositories.PaymentRepository,
	tutorRepo repositories.TutorRepository,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) *Service {
	stripe.Key = config.GetEnv("STRIPE_SECRET_KEY", "")
	return &Service{
		repo:         repo,
		tutorRepo:    tutorRepo,
		dispatcher:   dispatcher,
		logger:       logger,
		createIntent: paymentintent.New,
	}
}

// RegisterHandlers subscribes the payment hook to booking transitions.
func (s *Service) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Subscribe(events.EventBookingStatusChanged, s.handleBookingStatusChanged)
}

func (s *Service) handleBookingStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.BookingStatusChangedPayload)
	if !ok || payload.NewStatus != models.BookingStatusConfirmed {
		return nil
	}
	return s.ChargeForBooking(ctx, payload.BookingID, payload.StudentID, payload.TutorID)
}

// ChargeForBooking creates the payment intent for one confirmed session
// and records the outcome.
func (s *Service) ChargeForBooking(ctx context.Context, bookingID, studentID, tutorID uint) error {
	amountCents := int64(defaultSessionPriceCents)
	if profile, err := s.tutorRepo.GetProfile(ctx, tutorID); err == nil && profile.HourlyRate > 0 {
		amountCents = int64(profile.HourlyRate * 100)
	}

	payment := &models.Payment{
		BookingID: bookingID,
		StudentID: studentID,
		TutorID:   tutorID,
		Amount:    float64(amountCents) / 100,
		Currency:  "usd",
		Status:    models.PaymentStatusPending,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card",
		}),
	}
	params.AddMetadata("booking_id", strconv.FormatUint(uint64(bookingID), 10))

	intent, err := s.createIntent(params)
	if err != nil {
		s.logger.Error("stripe payment intent failed",
			zap.Uint("booking_id", bookingID),
			zap.Error(err))
		if updErr := s.repo.UpdateStatus(ctx, payment.ID, models.PaymentStatusFailed); updErr != nil {
			s.logger.Error("failed to mark payment failed", zap.Error(updErr))
		}
		payment.Status = models.PaymentStatusFailed
	} else {
		payment.StripeIntentID = intent.ID
		payment.Status = models.PaymentStatusSucceeded
		if updErr := s.repo.UpdateOutcome(ctx, payment.ID, models.PaymentStatusSucceeded, intent.ID); updErr != nil {
			s.logger.Error("failed to mark payment succeeded", zap.Error(updErr))
		}
	}

	s.publishRecorded(payment)
	return nil
}

func (s *Service) publishRecorded(payment *models.Payment) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventPaymentRecorded,
		Timestamp: time.Now(),
		Payload: events.PaymentRecordedPayload{
			PaymentID: payment.ID,
			BookingID: payment.BookingID,
			StudentID: payment.StudentID,
			TutorID:   payment.TutorID,
			Amount:    payment.Amount,
			Status:    payment.Status,
		},
	}
	go func() {
		_ = s.dispatcher.Publish(context.Background(), event)
	}()
}
