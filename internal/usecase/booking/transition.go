package booking

import (
	"context"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/booking"
	paydomain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/payment"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
	"github.com/AquaServicesBR/carwash-scheduler/internal/timezone"
)

// Transition moves a booking along one edge of the state machine.
// Reads current status, validates the edge, applies side effects, then
// writes guarded on the status it read; a concurrent writer surfaces
// as conflict instead of being overwritten.
func (c *Coordinator) Transition(ctx context.Context, id uint, target domain.Status) (*models.Booking, error) {
	b, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	prev := domain.Status(b.Status)
	if err := domain.CanTransition(prev, target); err != nil {
		return nil, err
	}

	switch target {
	case domain.StatusScheduled:
		return c.transitionToScheduled(ctx, b, prev)

	case domain.StatusReserved:
		// Parking in reserved only makes sense while the payment hold is
		// still settling; a settled payment goes straight to scheduled.
		pay, err := c.payments.ActiveForEntity(ctx, paymentEntity, b.ID)
		if err != nil {
			return nil, err
		}
		switch paydomain.Status(pay.Status) {
		case paydomain.StatusPending, paydomain.StatusWaiting:
		default:
			return nil, httperr.ErrBusinessMsg(httperr.CodePaymentFailed, "payment is not awaiting settlement")
		}
		b.Status = string(domain.StatusReserved)

	case domain.StatusUnassigned:
		if err := domain.Unassign(b); err != nil {
			return nil, err
		}
		// The washer's hold is released; the booking keeps its time so
		// a replacement can take the same instant.
		if err := c.slots.ReleaseForBooking(ctx, b.ID); err != nil {
			return nil, err
		}

	case domain.StatusCancelled:
		if err := c.Cancel(ctx, id, ""); err != nil {
			return nil, err
		}
		return c.repo.GetByID(ctx, id)

	case domain.StatusRescheduled:
		return nil, httperr.ErrBusinessMsg(httperr.CodeValidation, "rescheduling goes through Reschedule")

	case domain.StatusCompleted:
		if err := domain.Complete(b, timezone.Now()); err != nil {
			return nil, err
		}

	default:
		if !domain.IsWasherProgression(target) {
			return nil, httperr.ErrBusiness(httperr.CodeInvalidTransition)
		}
		b.Status = string(target)
	}

	if err := c.repo.UpdateGuarded(ctx, b, prev); err != nil {
		return nil, err
	}

	c.emitStatusChanged(b, prev, target)
	return b, nil
}

// transitionToScheduled durably binds the slot and requires the
// payment to be authorized or paid. Losing the slot race cancels the
// payment as compensation and leaves the booking where it was.
func (c *Coordinator) transitionToScheduled(
	ctx context.Context,
	b *models.Booking,
	prev domain.Status,
) (*models.Booking, error) {

	pay, err := c.payments.ActiveForEntity(ctx, paymentEntity, b.ID)
	if err != nil {
		return nil, err
	}

	switch paydomain.Status(pay.Status) {
	case paydomain.StatusAuthorized, paydomain.StatusPaid:
	default:
		return nil, httperr.ErrBusinessMsg(httperr.CodePaymentFailed, "payment is not authorized")
	}

	slot, err := c.slots.ActiveForBooking(ctx, b.ID)
	if err != nil {
		if httperr.IsBusiness(err, httperr.CodeNotFound) {
			return nil, httperr.ErrBusinessMsg(httperr.CodeSlotTaken, "booking holds no slot")
		}
		return nil, err
	}

	if _, err := c.slots.Commit(ctx, slot.ID, b.ID); err != nil {
		if httperr.IsBusiness(err, httperr.CodeSlotTaken) {
			// Compensation: the charge must not survive a lost slot.
			if _, cErr := c.payments.Cancel(ctx, pay.ID); cErr != nil {
				c.logOpError("transition.compensate", b.ID, cErr)
			}
		}
		return nil, err
	}

	b.Status = string(domain.StatusScheduled)
	if err := c.repo.UpdateGuarded(ctx, b, prev); err != nil {
		return nil, err
	}

	c.emitStatusChanged(b, prev, domain.StatusScheduled)
	return b, nil
}
