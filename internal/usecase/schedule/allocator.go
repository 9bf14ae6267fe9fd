package schedule

import (
	"go.uber.org/zap"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/schedule"
	"github.com/AquaServicesBR/carwash-scheduler/internal/events"
)

// ======================================================
// SLOT ALLOCATOR
// ======================================================

// Allocator owns every schedule-slot write. All true concurrency
// control lives in the store: the check-then-insert of Reserve is
// backed by the partial unique index on (washer_id, timestamp).
type Allocator struct {
	repo   domain.Repository
	events events.Publisher
	logger *zap.Logger
}

func NewAllocator(
	repo domain.Repository,
	events events.Publisher,
	logger *zap.Logger,
) *Allocator {
	return &Allocator{
		repo:   repo,
		events: events,
		logger: logger,
	}
}
