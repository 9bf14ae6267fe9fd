package booking

import (
	"context"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/booking"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

// AssignWasher binds a washer to the booking's held time. A pending
// booking swaps its candidate; an unassigned booking goes back to
// scheduled once the new washer holds the instant.
func (c *Coordinator) AssignWasher(ctx context.Context, id uint, washerID uint) (*models.Booking, error) {
	if washerID == 0 {
		return nil, httperr.ErrBusinessMsg(httperr.CodeValidation, "washer is required")
	}

	b, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	prev := domain.Status(b.Status)
	switch prev {
	case domain.StatusPending, domain.StatusReserved, domain.StatusUnassigned:
	default:
		return nil, httperr.ErrBusiness(httperr.CodeInvalidTransition)
	}

	// Retried assignment of the current washer: the hold already exists,
	// reserving again would collide with it.
	if b.WasherID != nil && *b.WasherID == washerID {
		return b, nil
	}

	// Reserve for the new washer before touching the old hold; two
	// washers at the same instant never conflict with each other.
	if _, err := c.slots.Reserve(ctx, washerID, b.Timestamp, b.Duration, b.ID); err != nil {
		return nil, err
	}

	if b.WasherID != nil && *b.WasherID != washerID {
		if err := c.releaseWasherSlot(ctx, b.ID, *b.WasherID); err != nil {
			c.logOpError("assign_washer", b.ID, err)
		}
	}

	b.WasherID = &washerID
	next := prev
	if prev == domain.StatusUnassigned {
		next = domain.StatusScheduled
		b.Status = string(next)
	}

	if err := c.repo.UpdateGuarded(ctx, b, prev); err != nil {
		return nil, err
	}

	if next != prev {
		c.emitStatusChanged(b, prev, next)
	}

	c.events.Publish("booking.washer.assigned", map[string]any{
		"booking_id": b.ID,
		"washer_id":  washerID,
	})

	return b, nil
}

// releaseWasherSlot drops the previous washer's hold for the booking,
// leaving the new washer's hold in place.
func (c *Coordinator) releaseWasherSlot(ctx context.Context, bookingID, washerID uint) error {
	slot, err := c.slots.ActiveForBooking(ctx, bookingID)
	if err != nil {
		if httperr.IsBusiness(err, httperr.CodeNotFound) {
			return nil
		}
		return err
	}
	if slot.WasherID == nil || *slot.WasherID != washerID {
		return nil
	}
	return c.slots.Release(ctx, slot.ID)
}
