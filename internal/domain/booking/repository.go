package booking

import (
	"context"

	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

type Repository interface {
	// -------- Booking --------
	GetByID(
		ctx context.Context,
		id uint,
	) (*models.Booking, error)

	Create(
		ctx context.Context,
		b *models.Booking,
	) error

	// UpdateGuarded persists b only if the stored status still equals
	// prevStatus. Returns conflict when another writer got there first.
	UpdateGuarded(
		ctx context.Context,
		b *models.Booking,
		prevStatus Status,
	) error

	SoftDelete(
		ctx context.Context,
		id uint,
	) error

	// -------- Cross-entity reads --------
	GetUser(
		ctx context.Context,
		id uint,
	) (*models.User, error)
}
