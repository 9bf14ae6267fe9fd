package schedule

import (
	"context"
	"time"

	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

type Repository interface {
	GetByID(
		ctx context.Context,
		id uint,
	) (*models.ScheduleSlot, error)

	// Insert persists a new slot. Implementations must enforce the
	// one-slot-per-(washer,timestamp) invariant atomically and return
	// slot_taken when another non-deleted slot holds the instant.
	Insert(
		ctx context.Context,
		slot *models.ScheduleSlot,
	) error

	SoftDelete(
		ctx context.Context,
		id uint,
	) error

	// ExistsAt reports whether a non-deleted slot already occupies the
	// exact instant for the washer.
	ExistsAt(
		ctx context.Context,
		washerID uint,
		ts time.Time,
	) (bool, error)

	GetActiveByBooking(
		ctx context.Context,
		bookingID uint,
	) (*models.ScheduleSlot, error)

	// ListInRange returns non-deleted slots in [start, end), optionally
	// filtered by washer, ordered by timestamp.
	ListInRange(
		ctx context.Context,
		washerID *uint,
		start time.Time,
		end time.Time,
	) ([]models.ScheduleSlot, error)
}
