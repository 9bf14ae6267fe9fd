package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

// Release soft-deletes the slot, making the instant available again.
func (a *Allocator) Release(ctx context.Context, slotID uint) error {
	if err := a.repo.SoftDelete(ctx, slotID); err != nil {
		a.logger.Error("slot release failed",
			zap.String("component", "slot_allocator"),
			zap.String("operation", "release"),
			zap.Uint("slot_id", slotID),
			zap.Error(err),
		)
		return err
	}

	a.events.Publish("slot.released", map[string]any{
		"slot_id": slotID,
	})
	return nil
}

// ReleaseForBooking releases the booking's active slot if it has one.
// No-op when nothing is held.
func (a *Allocator) ReleaseForBooking(ctx context.Context, bookingID uint) error {
	slot, err := a.repo.GetActiveByBooking(ctx, bookingID)
	if err != nil {
		if httperr.IsBusiness(err, httperr.CodeNotFound) {
			return nil
		}
		return err
	}
	return a.Release(ctx, slot.ID)
}

// ActiveForBooking returns the booking's bound slot, if any.
func (a *Allocator) ActiveForBooking(ctx context.Context, bookingID uint) (*models.ScheduleSlot, error) {
	return a.repo.GetActiveByBooking(ctx, bookingID)
}

// ListForWasher returns the washer's agenda for one day starting at
// dayStart, ordered by timestamp.
func (a *Allocator) ListForWasher(
	ctx context.Context,
	washerID uint,
	dayStart time.Time,
) ([]models.ScheduleSlot, error) {
	return a.repo.ListInRange(ctx, &washerID, dayStart, dayStart.Add(24*time.Hour))
}
