package booking

import (
	"go.uber.org/zap"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/booking"
	"github.com/AquaServicesBR/carwash-scheduler/internal/events"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
	paymentuc "github.com/AquaServicesBR/carwash-scheduler/internal/usecase/payment"
	scheduleuc "github.com/AquaServicesBR/carwash-scheduler/internal/usecase/schedule"
)

// ======================================================
// BOOKING COORDINATOR
// ======================================================

// Coordinator is the single entry point external callers use for the
// booking lifecycle. It owns every Booking write and drives the slot
// allocator and payment orchestrator around each transition.
type Coordinator struct {
	repo     domain.Repository
	slots    *scheduleuc.Allocator
	payments *paymentuc.Orchestrator
	events   events.Publisher
	logger   *zap.Logger
}

func NewCoordinator(
	repo domain.Repository,
	slots *scheduleuc.Allocator,
	payments *paymentuc.Orchestrator,
	events events.Publisher,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		repo:     repo,
		slots:    slots,
		payments: payments,
		events:   events,
		logger:   logger,
	}
}

const paymentEntity = "booking"

func (c *Coordinator) emitStatusChanged(b *models.Booking, prev, next domain.Status) {
	c.events.Publish("booking.status.changed", map[string]any{
		"booking_id": b.ID,
		"prev":       string(prev),
		"next":       string(next),
		"old_status": string(prev),
		"new_status": string(next),
	})
}

func (c *Coordinator) logOpError(op string, bookingID uint, err error) {
	c.logger.Error("booking operation failed",
		zap.String("component", "booking_coordinator"),
		zap.String("operation", op),
		zap.Uint("booking_id", bookingID),
		zap.Error(err),
	)
}
