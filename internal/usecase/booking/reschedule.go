package booking

import (
	"context"
	"time"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/booking"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
	"github.com/AquaServicesBR/carwash-scheduler/internal/timezone"
)

// Reschedule replaces the booking with a new one at newTimestamp. The
// old booking reaches its terminal rescheduled state only after the
// replacement is safely pending, and the old slot is released last, so
// a failed reservation never strands the client without any hold.
func (c *Coordinator) Reschedule(ctx context.Context, id uint, newTimestamp time.Time) (*models.Booking, error) {
	old, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	prevOld := domain.Status(old.Status)
	if domain.IsTerminal(prevOld) {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidTransition)
	}
	if old.WasherID == nil {
		return nil, httperr.ErrBusinessMsg(httperr.CodeValidation, "booking has no washer to reschedule with")
	}
	if newTimestamp.IsZero() || newTimestamp.Before(timezone.Now()) {
		return nil, httperr.ErrBusinessMsg(httperr.CodeValidation, "new timestamp must be in the future")
	}

	washerID := *old.WasherID
	oldID := old.ID

	next := &models.Booking{
		Status:        string(domain.InitialStatus()),
		IsSameDay:     old.IsSameDay,
		IsOneTime:     old.IsOneTime,
		Timestamp:     newTimestamp,
		ReschedulesID: &oldID,
		UserID:        old.UserID,
		WasherID:      &washerID,
		AddressID:     old.AddressID,
		VehicleID:     old.VehicleID,
		CouponID:      old.CouponID,
		UserName:      old.UserName,
		UserPhone:     old.UserPhone,
		ServiceName:   old.ServiceName,
		Duration:      old.Duration,
		Price:         old.Price,
		PriceDiscount: old.PriceDiscount,
		PriceFinal:    old.PriceFinal,
	}

	if err := c.repo.Create(ctx, next); err != nil {
		return nil, err
	}

	if _, err := c.slots.Reserve(ctx, washerID, newTimestamp, old.Duration, next.ID); err != nil {
		_ = c.repo.SoftDelete(ctx, next.ID)
		return nil, err
	}

	next.Status = string(domain.StatusPending)
	if err := c.repo.UpdateGuarded(ctx, next, domain.StatusDraft); err != nil {
		return nil, err
	}
	c.emitStatusChanged(next, domain.StatusDraft, domain.StatusPending)

	// Carry the payment over only once the replacement is durably
	// pending; an abandoned draft must never own the charge.
	pay, err := c.payments.ActiveForEntity(ctx, paymentEntity, old.ID)
	if err == nil {
		if _, err := c.payments.Reattach(ctx, pay.ID, paymentEntity, next.ID); err != nil {
			c.logOpError("reschedule", old.ID, err)
		}
	} else if !httperr.IsBusiness(err, httperr.CodeNotFound) {
		return nil, err
	}

	if err := domain.MarkRescheduled(old); err != nil {
		return nil, err
	}
	if err := c.repo.UpdateGuarded(ctx, old, prevOld); err != nil {
		return nil, err
	}
	c.emitStatusChanged(old, prevOld, domain.StatusRescheduled)

	// Old slot goes last: only a fully successful reschedule frees the
	// original instant.
	if err := c.releaseWasherSlot(ctx, old.ID, washerID); err != nil {
		c.logOpError("reschedule", old.ID, err)
	}

	c.events.Publish("booking.rescheduled", map[string]any{
		"old_booking_id": old.ID,
		"new_booking_id": next.ID,
		"timestamp":      newTimestamp,
	})

	return next, nil
}
