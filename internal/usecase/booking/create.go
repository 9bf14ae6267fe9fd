package booking

import (
	"context"
	"time"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/booking"
	paydomain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/payment"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
	paymentuc "github.com/AquaServicesBR/carwash-scheduler/internal/usecase/payment"
	"github.com/AquaServicesBR/carwash-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateInput struct {
	UserID    uint
	WasherID  uint
	AddressID uint
	VehicleID uint
	CouponID  *uint

	ServiceName string
	Timestamp   time.Time

	// Minutes.
	Duration int

	IsSameDay bool
	IsOneTime bool

	// Minor units.
	Price         int64
	PriceDiscount int64

	PaymentType     string
	PaymentMethod   string
	PaymentProvider string
	PaymentExpires  *time.Time
}

// ======================================================
// CREATE
// ======================================================

// Create runs the full booking creation flow: price validation, slot
// hold, payment creation, then draft -> pending. The slot is reserved
// before the gateway is touched, so a lost slot race never leaves a
// dangling charge; a failed payment releases the hold.
func (c *Coordinator) Create(ctx context.Context, in CreateInput) (*models.Booking, error) {
	final, err := domain.ValidatePrices(in.Price, in.PriceDiscount)
	if err != nil {
		return nil, err
	}

	if in.Timestamp.IsZero() || in.Duration <= 0 {
		return nil, httperr.ErrBusinessMsg(httperr.CodeValidation, "timestamp and duration are required")
	}
	now := timezone.Now()
	if in.Timestamp.Before(now) {
		return nil, httperr.ErrBusinessMsg(httperr.CodeValidation, "timestamp must be in the future")
	}
	if in.IsSameDay && in.Timestamp.Sub(now) > 24*time.Hour {
		return nil, httperr.ErrBusinessMsg(httperr.CodeValidation, "same-day booking must start within 24 hours")
	}
	if in.WasherID == 0 {
		return nil, httperr.ErrBusinessMsg(httperr.CodeValidation, "washer is required")
	}

	user, err := c.repo.GetUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	washerID := in.WasherID
	b := &models.Booking{
		Status:        string(domain.InitialStatus()),
		IsSameDay:     in.IsSameDay,
		IsOneTime:     in.IsOneTime,
		Timestamp:     in.Timestamp,
		UserID:        in.UserID,
		WasherID:      &washerID,
		AddressID:     in.AddressID,
		VehicleID:     in.VehicleID,
		CouponID:      in.CouponID,
		UserName:      user.Name,
		UserPhone:     user.Phone,
		ServiceName:   in.ServiceName,
		Duration:      in.Duration,
		Price:         in.Price,
		PriceDiscount: in.PriceDiscount,
		PriceFinal:    final,
	}

	if err := c.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	// Hold the slot candidate. First writer wins.
	slot, err := c.slots.Reserve(ctx, in.WasherID, in.Timestamp, in.Duration, b.ID)
	if err != nil {
		_ = c.repo.SoftDelete(ctx, b.ID)
		return nil, err
	}

	pay, err := c.payments.Create(ctx, paymentuc.CreateInput{
		UserID:    in.UserID,
		Entity:    paymentEntity,
		EntityID:  b.ID,
		Amount:    final,
		Type:      in.PaymentType,
		Method:    in.PaymentMethod,
		Provider:  in.PaymentProvider,
		ExpiresAt: in.PaymentExpires,
	})
	if err != nil {
		_ = c.slots.Release(ctx, slot.ID)
		_ = c.repo.SoftDelete(ctx, b.ID)
		c.logOpError("create", b.ID, err)
		return nil, err
	}

	b.Status = string(domain.StatusPending)
	if err := c.repo.UpdateGuarded(ctx, b, domain.StatusDraft); err != nil {
		return nil, err
	}
	c.emitStatusChanged(b, domain.StatusDraft, domain.StatusPending)

	// Pre-authorization flows park the booking in reserved while the
	// hold settles.
	if pay.Type == paydomain.TypePreAuth {
		switch paydomain.Status(pay.Status) {
		case paydomain.StatusPending, paydomain.StatusWaiting:
			b.Status = string(domain.StatusReserved)
			if err := c.repo.UpdateGuarded(ctx, b, domain.StatusPending); err != nil {
				return nil, err
			}
			c.emitStatusChanged(b, domain.StatusPending, domain.StatusReserved)
		}
	}

	c.events.Publish("booking.created", map[string]any{
		"booking_id":  b.ID,
		"user_id":     b.UserID,
		"washer_id":   in.WasherID,
		"timestamp":   b.Timestamp,
		"price_final": b.PriceFinal,
		"payment_id":  pay.ID,
	})

	return b, nil
}
