package schedule

import (
	"context"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/schedule"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

// FindAvailable answers an interval-bounded availability query. Only
// open slots survive: is_available must be set and no booking slot may
// occupy the same instant for the same washer. Conflicts compare exact
// instants, not overlapping duration windows.
func (a *Allocator) FindAvailable(
	ctx context.Context,
	q domain.AvailabilityQuery,
) ([]models.ScheduleSlot, error) {

	if !q.End.After(q.Start) {
		return nil, httperr.ErrBusinessMsg(httperr.CodeValidation, "interval end must be after start")
	}
	if q.End.Sub(q.Start) > domain.MaxQueryInterval {
		return nil, httperr.ErrBusiness(httperr.CodeIntervalTooLarge)
	}
	if q.Duration <= 0 {
		return nil, httperr.ErrBusinessMsg(httperr.CodeValidation, "duration must be positive")
	}

	slots, err := a.repo.ListInRange(ctx, q.WasherID, q.Start, q.End)
	if err != nil {
		return nil, err
	}

	// Instants already held by a booking slot, keyed per washer.
	type key struct {
		washer uint
		ts     int64
	}
	taken := make(map[key]bool)
	for _, s := range slots {
		if s.Type == string(domain.TypeBooking) && s.WasherID != nil {
			taken[key{*s.WasherID, s.Timestamp.UnixNano()}] = true
		}
	}

	out := make([]models.ScheduleSlot, 0, len(slots))
	for _, s := range slots {
		if !s.IsAvailable {
			continue
		}
		if s.WasherID != nil && taken[key{*s.WasherID, s.Timestamp.UnixNano()}] {
			continue
		}
		out = append(out, s)
	}

	return out, nil
}

