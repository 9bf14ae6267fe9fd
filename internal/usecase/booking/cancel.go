package booking

import (
	"context"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/booking"
	paydomain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/payment"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/timezone"
)

// Cancel moves any non-terminal booking to cancelled, releases its
// slot and compensates the payment: an authorized hold is voided, a
// captured charge is refunded.
func (c *Coordinator) Cancel(ctx context.Context, id uint, reason string) error {
	b, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	prev := domain.Status(b.Status)
	if err := domain.Cancel(b, reason, timezone.Now()); err != nil {
		return err
	}

	// Claim the terminal state first so a concurrent transition cannot
	// interleave with the compensation below.
	if err := c.repo.UpdateGuarded(ctx, b, prev); err != nil {
		return err
	}

	if err := c.slots.ReleaseForBooking(ctx, b.ID); err != nil {
		c.logOpError("cancel", b.ID, err)
		return err
	}

	if err := c.compensatePayment(ctx, b.ID); err != nil {
		c.logOpError("cancel", b.ID, err)
		return err
	}

	c.emitStatusChanged(b, prev, domain.StatusCancelled)
	c.events.Publish("booking.cancelled", map[string]any{
		"booking_id": b.ID,
		"reason":     reason,
	})

	return nil
}

func (c *Coordinator) compensatePayment(ctx context.Context, bookingID uint) error {
	pay, err := c.payments.ActiveForEntity(ctx, paymentEntity, bookingID)
	if err != nil {
		if httperr.IsBusiness(err, httperr.CodeNotFound) {
			return nil
		}
		return err
	}

	switch paydomain.Status(pay.Status) {
	case paydomain.StatusPaid:
		_, err = c.payments.Refund(ctx, pay.ID)
	case paydomain.StatusPending, paydomain.StatusWaiting,
		paydomain.StatusProcessing, paydomain.StatusAuthorized:
		_, err = c.payments.Cancel(ctx, pay.ID)
	default:
		// Already terminal on the payment side, nothing to undo.
		err = nil
	}
	return err
}
