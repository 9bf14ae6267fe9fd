package booking

import (
	"context"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/booking"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/timezone"
)

// ExpirePending is the hook the external sweep job calls for bookings
// stuck in pending/reserved past their payment deadline. It expires
// the payment, releases the held slot and cancels the booking.
func (c *Coordinator) ExpirePending(ctx context.Context, id uint) error {
	b, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	switch domain.Status(b.Status) {
	case domain.StatusPending, domain.StatusReserved:
	default:
		return httperr.ErrBusiness(httperr.CodeInvalidTransition)
	}

	pay, err := c.payments.ActiveForEntity(ctx, paymentEntity, b.ID)
	if err != nil && !httperr.IsBusiness(err, httperr.CodeNotFound) {
		return err
	}

	if pay != nil {
		if pay.ExpiresAt == nil || pay.ExpiresAt.After(timezone.Now()) {
			return httperr.ErrBusinessMsg(httperr.CodeValidation, "payment has not expired")
		}
		if _, err := c.payments.Expire(ctx, pay.ID); err != nil {
			return err
		}
	}

	if err := c.Cancel(ctx, id, "payment_expired"); err != nil {
		return err
	}

	c.events.Publish("booking.expired", map[string]any{
		"booking_id": b.ID,
	})
	return nil
}
