package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/schedule"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

// Reserve holds the instant for a booking. First writer wins: the
// insert either commits or comes back slot_taken, never both.
func (a *Allocator) Reserve(
	ctx context.Context,
	washerID uint,
	ts time.Time,
	duration int,
	bookingID uint,
) (*models.ScheduleSlot, error) {

	if ts.IsZero() {
		return nil, httperr.ErrBusinessMsg(httperr.CodeValidation, "timestamp is required")
	}
	if duration <= 0 {
		return nil, httperr.ErrBusinessMsg(httperr.CodeValidation, "duration must be positive")
	}

	slot := &models.ScheduleSlot{
		WasherID:    &washerID,
		BookingID:   &bookingID,
		Type:        string(domain.TypeBooking),
		Duration:    duration,
		Timestamp:   ts,
		IsAvailable: false,
	}

	if err := a.repo.Insert(ctx, slot); err != nil {
		if httperr.IsBusiness(err, httperr.CodeSlotTaken) {
			a.logger.Info("slot reservation lost race",
				zap.Uint("washer_id", washerID),
				zap.Time("timestamp", ts),
				zap.Uint("booking_id", bookingID),
			)
		} else {
			a.logger.Error("slot reservation failed",
				zap.String("component", "slot_allocator"),
				zap.String("operation", "reserve"),
				zap.Error(err),
			)
		}
		return nil, err
	}

	a.events.Publish("slot.reserved", map[string]any{
		"slot_id":    slot.ID,
		"washer_id":  washerID,
		"booking_id": bookingID,
		"timestamp":  ts,
	})

	return slot, nil
}

// Commit revalidates that the held slot is still durably bound to the
// booking before a transition relies on it. A released or rebound slot
// surfaces as slot_taken so the caller can compensate.
func (a *Allocator) Commit(
	ctx context.Context,
	slotID uint,
	bookingID uint,
) (*models.ScheduleSlot, error) {

	slot, err := a.repo.GetByID(ctx, slotID)
	if err != nil {
		if httperr.IsBusiness(err, httperr.CodeNotFound) {
			return nil, httperr.ErrBusinessMsg(httperr.CodeSlotTaken, "held slot no longer exists")
		}
		return nil, err
	}

	if slot.BookingID == nil || *slot.BookingID != bookingID {
		return nil, httperr.ErrBusinessMsg(httperr.CodeSlotTaken, "slot bound to another booking")
	}

	return slot, nil
}
