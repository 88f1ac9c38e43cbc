package booking

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperr "tutorlink/internal/errors"
	"tutorlink/internal/events"
	"tutorlink/internal/models"
	"tutorlink/internal/repositories"
)

// fakeBookingRepo is an in-memory BookingRepository. Its conditional
// update is mutex-guarded so concurrent transition tests exercise the
// same compare-and-set semantics as the SQL implementation.
type fakeBookingRepo struct {
	mu    sync.Mutex
	seq   uint
	items map[uint]*models.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{items: make(map[uint]*models.Booking)}
}

func (f *fakeBookingRepo) Create(_ context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	b.ID = f.seq
	clone := *b
	f.items[b.ID] = &clone
	return nil
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id uint) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.items[id]
	if !ok {
		return nil, repositories.ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBookingRepo) UpdateStatusIf(_ context.Context, id uint, from, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.items[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	return true, nil
}

func (f *fakeBookingRepo) ListForUser(_ context.Context, userID uint, filter repositories.BookingFilter) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.items {
		if b.StudentID != userID && b.TutorID != userID {
			continue
		}
		if matches(b, filter) {
			out = append(out, *b)
		}
	}
	sortBookings(out, filter)
	return out, nil
}

func (f *fakeBookingRepo) ListAll(_ context.Context, filter repositories.BookingFilter) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.items {
		if matches(b, filter) {
			out = append(out, *b)
		}
	}
	sortBookings(out, filter)
	return out, nil
}

func matches(b *models.Booking, filter repositories.BookingFilter) bool {
	if filter.Status != "" && b.Status != filter.Status {
		return false
	}
	if filter.FromDate != "" && b.Date < filter.FromDate {
		return false
	}
	return true
}

func sortBookings(bookings []models.Booking, filter repositories.BookingFilter) {
	if filter.SortAsc {
		sort.Slice(bookings, func(i, j int) bool {
			if bookings[i].Date != bookings[j].Date {
				return bookings[i].Date < bookings[j].Date
			}
			return bookings[i].Time < bookings[j].Time
		})
	} else {
		sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	}
}

type fakeUserRepo struct {
	users map[uint]*models.User
}

func (f *fakeUserRepo) Create(*models.User) error          { return nil }
func (f *fakeUserRepo) Update(*models.User) error          { return nil }
func (f *fakeUserRepo) IncrementTokenVersion(uint) error   { return nil }
func (f *fakeUserRepo) UpdateKYCStatus(uint, string) error { return nil }
func (f *fakeUserRepo) GetByEmail(string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (f *fakeUserRepo) List(int, int) ([]*models.User, int64, error) {
	return nil, 0, nil
}

func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

// recordingDispatcher captures published events on a channel so tests
// can wait for the async publish.
type recordingDispatcher struct {
	ch chan events.Event
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{ch: make(chan events.Event, 16)}
}

func (d *recordingDispatcher) Publish(_ context.Context, e events.Event) error {
	d.ch <- e
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func claims(id uint, role string) *models.UserClaims {
	return &models.UserClaims{UserID: id, Role: role}
}

func newTestService(t *testing.T) (*service, *fakeBookingRepo, *recordingDispatcher) {
	t.Helper()
	repo := newFakeBookingRepo()
	users := &fakeUserRepo{users: map[uint]*models.User{
		1: {Model: gorm.Model{ID: 1}, Role: models.RoleStudent},
		2: {Model: gorm.Model{ID: 2}, Role: models.RoleTutor},
		3: {Model: gorm.Model{ID: 3}, Role: models.RoleStudent},
	}}
	dispatcher := newRecordingDispatcher()

	svc := NewService(repo, users, nil, dispatcher, zap.NewNop()).(*service)
	svc.now = func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	}
	return svc, repo, dispatcher
}

func TestCreate_ThenListReturnsPendingBooking(t *testing.T) {
	svc, _, _ := newTestService(t)
	student := claims(1, models.RoleStudent)

	booking, err := svc.Create(context.Background(), student, CreateRequest{
		StudentID: 1, TutorID: 2, Date: "2025-12-01", Time: "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.NotEmpty(t, booking.Reference)

	listed, err := svc.List(context.Background(), student, ListFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, booking.ID, listed[0].ID)
	assert.Equal(t, models.BookingStatusPending, listed[0].Status)
}

func TestCreate_Validation(t *testing.T) {
	svc, repo, _ := newTestService(t)
	student := claims(1, models.RoleStudent)

	tests := []struct {
		name string
		req  CreateRequest
	}{
		{"missing date", CreateRequest{StudentID: 1, TutorID: 2, Time: "10:00"}},
		{"missing time", CreateRequest{StudentID: 1, TutorID: 2, Date: "2025-12-01"}},
		{"malformed date", CreateRequest{StudentID: 1, TutorID: 2, Date: "01/12/2025", Time: "10:00"}},
		{"past slot", CreateRequest{StudentID: 1, TutorID: 2, Date: "2024-01-01", Time: "10:00"}},
		{"unknown tutor", CreateRequest{StudentID: 1, TutorID: 99, Date: "2025-12-01", Time: "10:00"}},
		{"tutor is not a tutor", CreateRequest{StudentID: 1, TutorID: 3, Date: "2025-12-01", Time: "10:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), student, tt.req)
			var domainErr *apperr.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, 400, domainErr.Status)
		})
	}
	assert.Empty(t, repo.items, "failed creates must not persist anything")
}

func TestCreate_StudentCannotBookForOthers(t *testing.T) {
	svc, repo, _ := newTestService(t)

	_, err := svc.Create(context.Background(), claims(3, models.RoleStudent), CreateRequest{
		StudentID: 1, TutorID: 2, Date: "2025-12-01", Time: "10:00",
	})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Empty(t, repo.items)
}

func TestTransition_HappyPathAndTerminal(t *testing.T) {
	svc, _, dispatcher := newTestService(t)
	student := claims(1, models.RoleStudent)
	tutor := claims(2, models.RoleTutor)

	booking, err := svc.Create(context.Background(), student, CreateRequest{
		StudentID: 1, TutorID: 2, Date: "2025-12-01", Time: "10:00",
	})
	require.NoError(t, err)
	drainEvents(t, dispatcher, events.EventBookingCreated)

	confirmed, err := svc.Transition(context.Background(), tutor, booking.ID, models.BookingStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, confirmed.Status)

	event := drainEvents(t, dispatcher, events.EventBookingStatusChanged)
	payload := event.Payload.(events.BookingStatusChangedPayload)
	assert.Equal(t, models.BookingStatusPending, payload.OldStatus)
	assert.Equal(t, models.BookingStatusConfirmed, payload.NewStatus)

	// No edge back to pending.
	_, err = svc.Transition(context.Background(), tutor, booking.ID, models.BookingStatusPending)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	got, err := svc.Get(context.Background(), tutor, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, got.Status, "failed transition must leave status unchanged")

	completed, err := svc.Transition(context.Background(), tutor, booking.ID, models.BookingStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, completed.Status)

	// Terminal state admits nothing.
	for _, target := range []string{
		models.BookingStatusPending,
		models.BookingStatusConfirmed,
		models.BookingStatusCancelled,
	} {
		_, err = svc.Transition(context.Background(), tutor, booking.ID, target)
		assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
	}
}

func TestTransition_NotFoundAndForbidden(t *testing.T) {
	svc, _, _ := newTestService(t)
	student := claims(1, models.RoleStudent)

	_, err := svc.Transition(context.Background(), student, 42, models.BookingStatusConfirmed)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	booking, err := svc.Create(context.Background(), student, CreateRequest{
		StudentID: 1, TutorID: 2, Date: "2025-12-01", Time: "10:00",
	})
	require.NoError(t, err)

	stranger := claims(3, models.RoleStudent)
	_, err = svc.Transition(context.Background(), stranger, booking.ID, models.BookingStatusCancelled)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	got, err := svc.Get(context.Background(), student, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, got.Status, "denied transition must not mutate")
}

func TestTransition_ConcurrentConflictingTargets(t *testing.T) {
	svc, repo, _ := newTestService(t)
	student := claims(1, models.RoleStudent)
	tutor := claims(2, models.RoleTutor)

	booking, err := svc.Create(context.Background(), student, CreateRequest{
		StudentID: 1, TutorID: 2, Date: "2025-12-01", Time: "10:00",
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.Transition(context.Background(), tutor, booking.ID, models.BookingStatusConfirmed)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.Transition(context.Background(), student, booking.ID, models.BookingStatusCancelled)
	}()
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one of two conflicting transitions may win")

	final := repo.items[booking.ID].Status
	assert.Contains(t, []string{models.BookingStatusConfirmed, models.BookingStatusCancelled}, final)
}

func TestList_ScopedToParticipants(t *testing.T) {
	svc, _, _ := newTestService(t)
	s1 := claims(1, models.RoleStudent)
	s3 := claims(3, models.RoleStudent)

	_, err := svc.Create(context.Background(), s1, CreateRequest{StudentID: 1, TutorID: 2, Date: "2025-12-01", Time: "10:00"})
	require.NoError(t, err)

	mine, err := svc.List(context.Background(), s1, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := svc.List(context.Background(), s3, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, theirs)

	all, err := svc.List(context.Background(), claims(9, models.RoleAdmin), ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpcoming_FiltersAndSorts(t *testing.T) {
	svc, _, _ := newTestService(t)
	student := claims(1, models.RoleStudent)
	tutor := claims(2, models.RoleTutor)

	mk := func(date, tm string) *models.Booking {
		b, err := svc.Create(context.Background(), student, CreateRequest{
			StudentID: 1, TutorID: 2, Date: date, Time: tm,
		})
		require.NoError(t, err)
		return b
	}

	late := mk("2025-12-02", "09:00")
	early := mk("2025-12-01", "10:00")
	sameDayLater := mk("2025-12-01", "15:00")
	confirmed := mk("2025-12-03", "11:00")

	_, err := svc.Transition(context.Background(), tutor, confirmed.ID, models.BookingStatusConfirmed)
	require.NoError(t, err)

	upcoming, err := svc.Upcoming(context.Background(), student)
	require.NoError(t, err)
	require.Len(t, upcoming, 3, "confirmed bookings are excluded from upcoming")
	assert.Equal(t, early.ID, upcoming[0].ID)
	assert.Equal(t, sameDayLater.ID, upcoming[1].ID)
	assert.Equal(t, late.ID, upcoming[2].ID)
}

func drainEvents(t *testing.T, d *recordingDispatcher, want events.EventType) events.Event {
	t.Helper()
	select {
	case e := <-d.ch:
		require.Equal(t, want, e.Type)
		return e
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s event", want)
		return events.Event{}
	}
}
