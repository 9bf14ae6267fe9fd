package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/schedule"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

// RecordException blacks out the washer's instants in [start, end) at
// the given step, without a booking. Creation fails if any booking
// slot already occupies one of the instants; nothing is ever silently
// overwritten.
func (a *Allocator) RecordException(
	ctx context.Context,
	washerID uint,
	start, end time.Time,
	stepMinutes int,
	reason string,
) ([]models.ScheduleSlot, error) {

	if !end.After(start) {
		return nil, httperr.ErrBusinessMsg(httperr.CodeValidation, "interval end must be after start")
	}
	if end.Sub(start) > domain.MaxQueryInterval {
		return nil, httperr.ErrBusiness(httperr.CodeIntervalTooLarge)
	}
	if stepMinutes <= 0 {
		return nil, httperr.ErrBusinessMsg(httperr.CodeValidation, "step must be positive")
	}

	step := time.Duration(stepMinutes) * time.Minute

	// Pre-check: a booking slot anywhere in the interval blocks the
	// whole exception. A concurrent reservation can still slip in
	// between check and insert; the unique index catches that below.
	for ts := start; ts.Before(end); ts = ts.Add(step) {
		exists, err := a.repo.ExistsAt(ctx, washerID, ts)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, httperr.ErrBusinessMsg(httperr.CodeSlotTaken, "interval already holds a slot")
		}
	}

	var created []models.ScheduleSlot
	for ts := start; ts.Before(end); ts = ts.Add(step) {
		slot := &models.ScheduleSlot{
			WasherID:    &washerID,
			Type:        string(domain.TypeException),
			Duration:    stepMinutes,
			Timestamp:   ts,
			IsAvailable: false,
			Reason:      reason,
		}

		if err := a.repo.Insert(ctx, slot); err != nil {
			// Roll back the instants already blacked out.
			for i := range created {
				if rbErr := a.repo.SoftDelete(ctx, created[i].ID); rbErr != nil {
					a.logger.Error("exception rollback failed",
						zap.String("component", "slot_allocator"),
						zap.String("operation", "record_exception"),
						zap.Uint("slot_id", created[i].ID),
						zap.Error(rbErr),
					)
				}
			}
			return nil, err
		}
		created = append(created, *slot)
	}

	a.events.Publish("slot.exception.recorded", map[string]any{
		"washer_id": washerID,
		"start":     start,
		"end":       end,
		"reason":    reason,
		"count":     len(created),
	})

	return created, nil
}
