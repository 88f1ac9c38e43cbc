package payment

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v72"
	"go.uber.org/zap"

	"tutorlink/internal/events"
	"tutorlink/internal/models"
	"tutorlink/internal/repositories"
)

type fakePaymentRepo struct {
	mu       sync.Mutex
	seq      uint
	payments map[uint]*models.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uint]*models.Payment)}
}

func (f *fakePaymentRepo) Create(_ context.Context, p *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	p.ID = f.seq
	stored := *p
	f.payments[p.ID] = &stored
	return nil
}

func (f *fakePaymentRepo) GetByBookingID(_ context.Context, bookingID uint) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.BookingID == bookingID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakePaymentRepo) UpdateStatus(_ context.Context, id uint, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.payments[id]; ok {
		p.Status = status
	}
	return nil
}

func (f *fakePaymentRepo) UpdateOutcome(_ context.Context, id uint, status, intentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.payments[id]; ok {
		p.Status = status
		p.StripeIntentID = intentID
	}
	return nil
}

type fakeTutorRepo struct {
	repositories.TutorRepository
	rate float64
}

func (f *fakeTutorRepo) GetProfile(context.Context, uint) (*models.TutorProfile, error) {
	if f.rate == 0 {
		return nil, repositories.ErrProfileNotFound
	}
	return &models.TutorProfile{HourlyRate: f.rate}, nil
}

func newTestService(rate float64, intent IntentCreator) (*Service, *fakePaymentRepo) {
	repo := newFakePaymentRepo()
	svc := NewService(repo, &fakeTutorRepo{rate: rate}, nil, zap.NewNop())
	svc.createIntent = intent
	return svc, repo
}

func TestChargeForBooking_UsesTutorRate(t *testing.T) {
	var gotAmount int64
	svc, repo := newTestService(40, func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		gotAmount = *params.Amount
		return &stripe.PaymentIntent{ID: "pi_123"}, nil
	})

	err := svc.ChargeForBooking(context.Background(), 1, 10, 20)
	require.NoError(t, err)

	assert.Equal(t, int64(4000), gotAmount)
	payment, err := repo.GetByBookingID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSucceeded, payment.Status)
	assert.Equal(t, "pi_123", payment.StripeIntentID, "intent id must survive to the stored record")
	assert.Equal(t, 40.0, payment.Amount)
}

func TestChargeForBooking_StripeFailureIsRecordedNotPropagated(t *testing.T) {
	svc, repo := newTestService(40, func(*stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		return nil, errors.New("stripe unreachable")
	})

	err := svc.ChargeForBooking(context.Background(), 1, 10, 20)
	assert.NoError(t, err, "a failed charge never fails the confirmation")

	payment, err := repo.GetByBookingID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, payment.Status)
}

func TestHandleBookingStatusChanged_OnlyConfirmationsCharge(t *testing.T) {
	calls := 0
	svc, _ := newTestService(0, func(*stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		calls++
		return &stripe.PaymentIntent{ID: "pi_123"}, nil
	})

	err := svc.handleBookingStatusChanged(context.Background(), events.Event{
		Type: events.EventBookingStatusChanged,
		Payload: events.BookingStatusChangedPayload{
			BookingID: 1,
			NewStatus: models.BookingStatusCancelled,
		},
	})
	require.NoError(t, err)
	assert.Zero(t, calls)

	err = svc.handleBookingStatusChanged(context.Background(), events.Event{
		Type: events.EventBookingStatusChanged,
		Payload: events.BookingStatusChangedPayload{
			BookingID: 1,
			NewStatus: models.BookingStatusConfirmed,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestChargeForBooking_DefaultPriceWithoutProfile(t *testing.T) {
	var gotAmount int64
	svc, _ := newTestService(0, func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		gotAmount = *params.Amount
		return &stripe.PaymentIntent{ID: "pi_123"}, nil
	})

	err := svc.ChargeForBooking(context.Background(), 1, 10, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(defaultSessionPriceCents), gotAmount)
}
