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

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/booking"
	paydomain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/payment"
	scheddomain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/schedule"
	"github.com/AquaServicesBR/carwash-scheduler/internal/events"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
	"github.com/AquaServicesBR/carwash-scheduler/internal/provider"
	paymentuc "github.com/AquaServicesBR/carwash-scheduler/internal/usecase/payment"
	scheduleuc "github.com/AquaServicesBR/carwash-scheduler/internal/usecase/schedule"
)

// ==================================================
// In-memory stores
// ==================================================

type memBookingRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.Booking
	users  map[uint]*models.User
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{
		rows: make(map[uint]*models.Booking),
		users: map[uint]*models.User{
			1: {ID: 1, Name: "Ana", Email: "ana@example.com", Phone: "+5511999990000"},
		},
	}
}

func (r *memBookingRepo) GetByID(_ context.Context, id uint) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[id]
	if !ok || b.DeletedAt.Valid {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}
	cp := *b
	return &cp, nil
}

func (r *memBookingRepo) Create(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	b.ID = r.nextID
	cp := *b
	r.rows[b.ID] = &cp
	return nil
}

func (r *memBookingRepo) UpdateGuarded(_ context.Context, b *models.Booking, prev domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rows[b.ID]
	if !ok || stored.DeletedAt.Valid {
		return httperr.ErrBusiness(httperr.CodeNotFound)
	}
	if stored.Status != string(prev) {
		return httperr.ErrBusiness(httperr.CodeConflict)
	}
	cp := *b
	r.rows[b.ID] = &cp
	return nil
}

func (r *memBookingRepo) SoftDelete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[id]
	if !ok || b.DeletedAt.Valid {
		return httperr.ErrBusiness(httperr.CodeNotFound)
	}
	b.DeletedAt.Time = time.Now()
	b.DeletedAt.Valid = true
	return nil
}

func (r *memBookingRepo) GetUser(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}
	cp := *u
	return &cp, nil
}

var _ domain.Repository = (*memBookingRepo)(nil)

type memSlotRepo struct {
	mu     sync.Mutex
	nextID uint
	slots  map[uint]*models.ScheduleSlot
}

func newMemSlotRepo() *memSlotRepo {
	return &memSlotRepo{slots: make(map[uint]*models.ScheduleSlot)}
}

func (r *memSlotRepo) GetByID(_ context.Context, id uint) (*models.ScheduleSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok || s.DeletedAt.Valid {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}
	cp := *s
	return &cp, nil
}

func (r *memSlotRepo) Insert(_ context.Context, slot *models.ScheduleSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if slot.WasherID != nil {
		for _, s := range r.slots {
			if s.DeletedAt.Valid || s.WasherID == nil {
				continue
			}
			if *s.WasherID == *slot.WasherID && s.Timestamp.Equal(slot.Timestamp) {
				return httperr.ErrBusiness(httperr.CodeSlotTaken)
			}
		}
	}
	r.nextID++
	slot.ID = r.nextID
	cp := *slot
	r.slots[slot.ID] = &cp
	return nil
}

func (r *memSlotRepo) SoftDelete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok || s.DeletedAt.Valid {
		return httperr.ErrBusiness(httperr.CodeNotFound)
	}
	s.DeletedAt.Time = time.Now()
	s.DeletedAt.Valid = true
	return nil
}

func (r *memSlotRepo) ExistsAt(_ context.Context, washerID uint, ts time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.slots {
		if s.DeletedAt.Valid || s.WasherID == nil {
			continue
		}
		if *s.WasherID == washerID && s.Timestamp.Equal(ts) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memSlotRepo) GetActiveByBooking(_ context.Context, bookingID uint) (*models.ScheduleSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var newest *models.ScheduleSlot
	for _, s := range r.slots {
		if s.DeletedAt.Valid || s.BookingID == nil || *s.BookingID != bookingID {
			continue
		}
		if newest == nil || s.ID > newest.ID {
			newest = s
		}
	}
	if newest == nil {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}
	cp := *newest
	return &cp, nil
}

func (r *memSlotRepo) ListInRange(_ context.Context, washerID *uint, start, end time.Time) ([]models.ScheduleSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ScheduleSlot
	for _, s := range r.slots {
		if s.DeletedAt.Valid {
			continue
		}
		if s.Timestamp.Before(start) || !s.Timestamp.Before(end) {
			continue
		}
		if washerID != nil && (s.WasherID == nil || *s.WasherID != *washerID) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

var _ scheddomain.Repository = (*memSlotRepo)(nil)

type memPaymentRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{rows: make(map[uint]*models.Payment)}
}

func (r *memPaymentRepo) GetByID(_ context.Context, id uint) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}
	cp := *p
	return &cp, nil
}

func (r *memPaymentRepo) GetByProviderRef(_ context.Context, prov, providerID string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.Provider == prov && p.ProviderID == providerID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, httperr.ErrBusiness(httperr.CodeNotFound)
}

func (r *memPaymentRepo) GetActiveByEntity(_ context.Context, entity string, entityID uint) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var newest *models.Payment
	for _, p := range r.rows {
		if p.Entity == entity && p.EntityID == entityID {
			if newest == nil || p.ID > newest.ID {
				newest = p
			}
		}
	}
	if newest == nil {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}
	cp := *newest
	return &cp, nil
}

func (r *memPaymentRepo) Create(_ context.Context, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

func (r *memPaymentRepo) Update(_ context.Context, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[p.ID]; !ok {
		return httperr.ErrBusiness(httperr.CodeNotFound)
	}
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

var _ paydomain.Repository = (*memPaymentRepo)(nil)

type stubWallet struct {
	mu       sync.Mutex
	balances map[uint]int64
}

func (w *stubWallet) Credit(_ context.Context, userID uint, amount int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[userID] += amount
	return nil
}

func (w *stubWallet) Debit(_ context.Context, userID uint, amount int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balances[userID] < amount {
		return httperr.ErrBusinessMsg(httperr.CodeValidation, "insufficient balance")
	}
	w.balances[userID] -= amount
	return nil
}

type nopLedger struct{}

func (nopLedger) Record(context.Context, string, uint, string, int64) error { return nil }

// ==================================================
// Fixture
// ==================================================

type fixture struct {
	coord    *Coordinator
	orch     *paymentuc.Orchestrator
	bookings *memBookingRepo
	slots    *memSlotRepo
	payments *memPaymentRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	providers, err := provider.NewFactory(provider.FactoryConfig{AllowLocal: true})
	require.NoError(t, err)

	bookings := newMemBookingRepo()
	slots := newMemSlotRepo()
	payments := newMemPaymentRepo()
	logger := zap.NewNop()

	allocator := scheduleuc.NewAllocator(slots, events.NopPublisher{}, logger)
	orch := paymentuc.NewOrchestrator(
		payments, bookings, &stubWallet{balances: make(map[uint]int64)}, nopLedger{},
		providers, events.NopPublisher{}, logger, time.Second,
	)
	coord := NewCoordinator(bookings, allocator, orch, events.NopPublisher{}, logger)

	return &fixture{
		coord:    coord,
		orch:     orch,
		bookings: bookings,
		slots:    slots,
		payments: payments,
	}
}

func (f *fixture) createInput(ts time.Time) CreateInput {
	return CreateInput{
		UserID:          1,
		WasherID:        1,
		AddressID:       5,
		VehicleID:       9,
		ServiceName:     "Lavagem completa",
		Timestamp:       ts,
		Duration:        60,
		Price:           5000,
		PriceDiscount:   500,
		PaymentType:     paydomain.TypeImmediate,
		PaymentMethod:   paydomain.MethodCard,
		PaymentProvider: paydomain.ProviderLocal,
	}
}

func futureTS() time.Time {
	return time.Now().Add(48 * time.Hour).Truncate(time.Hour)
}

func (f *fixture) activePayment(t *testing.T, bookingID uint) *models.Payment {
	t.Helper()
	p, err := f.orch.ActiveForEntity(context.Background(), "booking", bookingID)
	require.NoError(t, err)
	return p
}

// schedule drives a fresh booking to scheduled: authorize the payment,
// then take the transition.
func (f *fixture) schedule(t *testing.T, bookingID uint) *models.Booking {
	t.Helper()
	ctx := context.Background()

	pay := f.activePayment(t, bookingID)
	_, err := f.orch.Authorize(ctx, pay.ID)
	require.NoError(t, err)

	b, err := f.coord.Transition(ctx, bookingID, domain.StatusScheduled)
	require.NoError(t, err)
	return b
}

// ==================================================
// Tests
// ==================================================

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)
	b, err := f.coord.Create(context.Background(), f.createInput(futureTS()))
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPending), b.Status)
	assert.Equal(t, int64(4500), b.PriceFinal)
	assert.Equal(t, "Ana", b.UserName)

	slot, err := f.slots.GetActiveByBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), *slot.WasherID)

	pay := f.activePayment(t, b.ID)
	assert.Equal(t, int64(4500), pay.Amount)
	assert.Equal(t, string(paydomain.StatusWaiting), pay.Status)
}

func TestCreateDuplicateSlotLosesRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ts := futureTS()

	first, err := f.coord.Create(ctx, f.createInput(ts))
	require.NoError(t, err)

	_, err = f.coord.Create(ctx, f.createInput(ts))
	assert.True(t, httperr.IsBusiness(err, httperr.CodeSlotTaken))

	// The winner is untouched, the loser's draft never survives.
	got, err := f.bookings.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPending), got.Status)

	_, err = f.bookings.GetByID(ctx, first.ID+1)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeNotFound))
}

func TestCreateFailedPaymentReleasesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ts := futureTS()

	in := f.createInput(ts)
	in.PaymentProvider = "paypal"
	_, err := f.coord.Create(ctx, in)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeValidation))

	// The instant is free again for the next attempt.
	_, err = f.coord.Create(ctx, f.createInput(ts))
	assert.NoError(t, err)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.createInput(futureTS())
	in.PriceDiscount = 6000
	_, err := f.coord.Create(ctx, in)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeValidation))

	in = f.createInput(time.Now().Add(-time.Hour))
	_, err = f.coord.Create(ctx, in)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeValidation))

	in = f.createInput(futureTS())
	in.IsSameDay = true
	_, err = f.coord.Create(ctx, in)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeValidation))

	in = f.createInput(futureTS())
	in.WasherID = 0
	_, err = f.coord.Create(ctx, in)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeValidation))
}

func TestCreatePreAuthParksInReserved(t *testing.T) {
	f := newFixture(t)

	in := f.createInput(futureTS())
	in.PaymentType = paydomain.TypePreAuth
	b, err := f.coord.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusReserved), b.Status)
}

func TestTransitionToScheduledRequiresAuthorizedPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.coord.Create(ctx, f.createInput(futureTS()))
	require.NoError(t, err)

	// Payment still waiting: the booking cannot be confirmed.
	_, err = f.coord.Transition(ctx, b.ID, domain.StatusScheduled)
	assert.True(t, httperr.IsBusiness(err, httperr.CodePaymentFailed))

	got := f.schedule(t, b.ID)
	assert.Equal(t, string(domain.StatusScheduled), got.Status)
}

func TestWasherProgressionNoSkipping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.coord.Create(ctx, f.createInput(futureTS()))
	require.NoError(t, err)
	f.schedule(t, b.ID)

	// Cannot jump over en_route.
	_, err = f.coord.Transition(ctx, b.ID, domain.StatusExecuting)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidTransition))

	for _, next := range []domain.Status{
		domain.StatusEnRoute,
		domain.StatusPreparing,
		domain.StatusExecuting,
		domain.StatusFinishing,
		domain.StatusCompleted,
	} {
		got, err := f.coord.Transition(ctx, b.ID, next)
		require.NoError(t, err, string(next))
		assert.Equal(t, string(next), got.Status)
	}

	// Terminal: nothing moves a completed booking.
	_, err = f.coord.Transition(ctx, b.ID, domain.StatusScheduled)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidTransition))
	_, err = f.coord.Transition(ctx, b.ID, domain.StatusCancelled)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidTransition))
}

func TestCancelPaidBookingRefundsAndFreesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ts := futureTS()

	b, err := f.coord.Create(ctx, f.createInput(ts))
	require.NoError(t, err)
	f.schedule(t, b.ID)

	pay := f.activePayment(t, b.ID)
	_, err = f.orch.Capture(ctx, pay.ID)
	require.NoError(t, err)

	require.NoError(t, f.coord.Cancel(ctx, b.ID, "client_request"))

	got, err := f.bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), got.Status)
	assert.Equal(t, "client_request", got.CancelReason)

	pay = f.activePayment(t, b.ID)
	assert.Equal(t, string(paydomain.StatusRefunded), pay.Status)

	_, err = f.slots.GetActiveByBooking(ctx, b.ID)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeNotFound))

	// The freed instant is immediately bookable again.
	_, err = f.coord.Create(ctx, f.createInput(ts))
	assert.NoError(t, err)
}

func TestCancelAuthorizedBookingVoidsHold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.coord.Create(ctx, f.createInput(futureTS()))
	require.NoError(t, err)
	f.schedule(t, b.ID)

	require.NoError(t, f.coord.Cancel(ctx, b.ID, ""))

	pay := f.activePayment(t, b.ID)
	assert.Equal(t, string(paydomain.StatusCancelled), pay.Status)
}

func TestUnassignKeepsTimeFreesWasher(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ts := futureTS()

	b, err := f.coord.Create(ctx, f.createInput(ts))
	require.NoError(t, err)
	f.schedule(t, b.ID)

	got, err := f.coord.Transition(ctx, b.ID, domain.StatusUnassigned)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusUnassigned), got.Status)
	assert.Nil(t, got.WasherID)
	assert.Equal(t, ts, got.Timestamp)

	// A replacement washer takes the same instant and the booking goes
	// back to scheduled.
	got, err = f.coord.AssignWasher(ctx, b.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusScheduled), got.Status)
	assert.Equal(t, uint(2), *got.WasherID)

	slot, err := f.slots.GetActiveByBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(2), *slot.WasherID)
}

func TestAssignWasherSwapsHold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ts := futureTS()

	b, err := f.coord.Create(ctx, f.createInput(ts))
	require.NoError(t, err)

	got, err := f.coord.AssignWasher(ctx, b.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, uint(3), *got.WasherID)
	assert.Equal(t, string(domain.StatusPending), got.Status)

	// Washer 1's hold is gone; their instant is free again.
	exists, err := f.slots.ExistsAt(ctx, 1, ts)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = f.slots.ExistsAt(ctx, 3, ts)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRescheduleReplacesBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	oldTS := futureTS()
	newTS := oldTS.Add(24 * time.Hour)

	old, err := f.coord.Create(ctx, f.createInput(oldTS))
	require.NoError(t, err)
	pay := f.activePayment(t, old.ID)

	next, err := f.coord.Reschedule(ctx, old.ID, newTS)
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPending), next.Status)
	assert.Equal(t, newTS, next.Timestamp)
	require.NotNil(t, next.ReschedulesID)
	assert.Equal(t, old.ID, *next.ReschedulesID)
	assert.Equal(t, old.PriceFinal, next.PriceFinal)

	gotOld, err := f.bookings.GetByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusRescheduled), gotOld.Status)

	// The payment now belongs to the replacement.
	carried := f.activePayment(t, next.ID)
	assert.Equal(t, pay.ID, carried.ID)

	// Old instant freed, new instant held.
	exists, err := f.slots.ExistsAt(ctx, 1, oldTS)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = f.slots.ExistsAt(ctx, 1, newTS)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRescheduleLostRaceKeepsOldBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	oldTS := futureTS()
	newTS := oldTS.Add(24 * time.Hour)

	old, err := f.coord.Create(ctx, f.createInput(oldTS))
	require.NoError(t, err)

	// Another booking already owns the target instant.
	_, err = f.coord.Create(ctx, f.createInput(newTS))
	require.NoError(t, err)

	_, err = f.coord.Reschedule(ctx, old.ID, newTS)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeSlotTaken))

	// The original booking and its hold survive untouched.
	gotOld, err := f.bookings.GetByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPending), gotOld.Status)

	exists, err := f.slots.ExistsAt(ctx, 1, oldTS)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRescheduleTerminalRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.coord.Create(ctx, f.createInput(futureTS()))
	require.NoError(t, err)
	require.NoError(t, f.coord.Cancel(ctx, b.ID, ""))

	_, err = f.coord.Reschedule(ctx, b.ID, futureTS().Add(24*time.Hour))
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidTransition))
}

func TestExpirePending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Minute)
	in := f.createInput(futureTS())
	in.PaymentExpires = &past

	b, err := f.coord.Create(ctx, in)
	require.NoError(t, err)

	require.NoError(t, f.coord.ExpirePending(ctx, b.ID))

	got, err := f.bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), got.Status)
	assert.Equal(t, "payment_expired", got.CancelReason)

	pay := f.activePayment(t, b.ID)
	assert.Equal(t, string(paydomain.StatusExpired), pay.Status)

	_, err = f.slots.GetActiveByBooking(ctx, b.ID)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeNotFound))
}

func TestExpirePendingNotYetDue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	later := time.Now().Add(30 * time.Minute)
	in := f.createInput(futureTS())
	in.PaymentExpires = &later

	b, err := f.coord.Create(ctx, in)
	require.NoError(t, err)

	err = f.coord.ExpirePending(ctx, b.ID)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeValidation))
}

func TestTransitionPendingToReservedWhileSettling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.coord.Create(ctx, f.createInput(futureTS()))
	require.NoError(t, err)
	require.Equal(t, string(domain.StatusPending), b.Status)

	// The local payment sits in waiting; the booking can be parked.
	got, err := f.coord.Transition(ctx, b.ID, domain.StatusReserved)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusReserved), got.Status)

	// Parked is not stuck: once the hold settles the booking is
	// confirmed as usual.
	got = f.schedule(t, b.ID)
	assert.Equal(t, string(domain.StatusScheduled), got.Status)
}

func TestTransitionToReservedRequiresUnsettledPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.coord.Create(ctx, f.createInput(futureTS()))
	require.NoError(t, err)

	pay := f.activePayment(t, b.ID)
	_, err = f.orch.Authorize(ctx, pay.ID)
	require.NoError(t, err)

	// A settled payment has nothing to wait for.
	_, err = f.coord.Transition(ctx, b.ID, domain.StatusReserved)
	assert.True(t, httperr.IsBusiness(err, httperr.CodePaymentFailed))
}

func TestAssignWasherCurrentWasherIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ts := futureTS()

	b, err := f.coord.Create(ctx, f.createInput(ts))
	require.NoError(t, err)

	// Retrying the assignment of the washer who already holds the
	// instant must not collide with the booking's own hold.
	got, err := f.coord.AssignWasher(ctx, b.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), *got.WasherID)
	assert.Equal(t, string(domain.StatusPending), got.Status)

	exists, err := f.slots.ExistsAt(ctx, 1, ts)
	require.NoError(t, err)
	assert.True(t, exists)
}

// failingGuardRepo fails the guarded write for one booking ID, standing
// in for a concurrent writer getting there first.
type failingGuardRepo struct {
	*memBookingRepo
	failID uint
}

func (r *failingGuardRepo) UpdateGuarded(ctx context.Context, b *models.Booking, prev domain.Status) error {
	if b.ID == r.failID {
		return httperr.ErrBusiness(httperr.CodeConflict)
	}
	return r.memBookingRepo.UpdateGuarded(ctx, b, prev)
}

func TestRescheduleFailedPendingWriteKeepsPaymentOnOld(t *testing.T) {
	providers, err := provider.NewFactory(provider.FactoryConfig{AllowLocal: true})
	require.NoError(t, err)

	base := newMemBookingRepo()
	repo := &failingGuardRepo{memBookingRepo: base}
	slots := newMemSlotRepo()
	payments := newMemPaymentRepo()
	logger := zap.NewNop()

	allocator := scheduleuc.NewAllocator(slots, events.NopPublisher{}, logger)
	orch := paymentuc.NewOrchestrator(
		payments, base, &stubWallet{balances: make(map[uint]int64)}, nopLedger{},
		providers, events.NopPublisher{}, logger, time.Second,
	)
	coord := NewCoordinator(repo, allocator, orch, events.NopPublisher{}, logger)

	ctx := context.Background()
	oldTS := futureTS()
	f := &fixture{coord: coord, orch: orch, bookings: base, slots: slots, payments: payments}

	old, err := coord.Create(ctx, f.createInput(oldTS))
	require.NoError(t, err)
	pay := f.activePayment(t, old.ID)

	// The replacement's draft -> pending write loses.
	repo.failID = old.ID + 1

	_, err = coord.Reschedule(ctx, old.ID, oldTS.Add(24*time.Hour))
	assert.True(t, httperr.IsBusiness(err, httperr.CodeConflict))

	// The charge never left the still-active old booking.
	carried := f.activePayment(t, old.ID)
	assert.Equal(t, pay.ID, carried.ID)

	gotOld, err := base.GetByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPending), gotOld.Status)

	exists, err := slots.ExistsAt(ctx, 1, oldTS)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestExpirePendingOnlyFromPendingOrReserved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.coord.Create(ctx, f.createInput(futureTS()))
	require.NoError(t, err)
	f.schedule(t, b.ID)

	err = f.coord.ExpirePending(ctx, b.ID)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidTransition))
}
