package booking

import (
	"time"

	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// ValidatePrices enforces the price breakdown invariant:
// price_final = price - price_discount, never negative.
func ValidatePrices(price, discount int64) (int64, error) {
	if price <= 0 {
		return 0, httperr.ErrBusinessMsg(httperr.CodeValidation, "price must be positive")
	}
	if discount < 0 {
		return 0, httperr.ErrBusinessMsg(httperr.CodeValidation, "discount must not be negative")
	}

	final := price - discount
	if final < 0 {
		return 0, httperr.ErrBusinessMsg(httperr.CodeValidation, "discount exceeds price")
	}
	return final, nil
}

func Cancel(b *models.Booking, reason string, now time.Time) error {
	if err := CanTransition(Status(b.Status), StatusCancelled); err != nil {
		return err
	}

	b.Status = string(StatusCancelled)
	b.CancelReason = reason
	b.CancelledAt = &now
	return nil
}

func Complete(b *models.Booking, now time.Time) error {
	if err := CanTransition(Status(b.Status), StatusCompleted); err != nil {
		return err
	}

	b.Status = string(StatusCompleted)
	b.CompletedAt = &now
	return nil
}

// MarkRescheduled moves a booking to its terminal rescheduled state.
// Callers only do this after the replacement booking reached pending.
func MarkRescheduled(b *models.Booking) error {
	if err := CanTransition(Status(b.Status), StatusRescheduled); err != nil {
		return err
	}

	b.Status = string(StatusRescheduled)
	return nil
}

// Unassign clears the washer without cancelling the booking. The held
// time is retained so a new washer can take the same slot.
func Unassign(b *models.Booking) error {
	if err := CanTransition(Status(b.Status), StatusUnassigned); err != nil {
		return err
	}

	b.Status = string(StatusUnassigned)
	b.WasherID = nil
	return nil
}
