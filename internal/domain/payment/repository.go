package payment

import (
	"context"

	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

type Repository interface {
	GetByID(
		ctx context.Context,
		id uint,
	) (*models.Payment, error)

	GetByProviderRef(
		ctx context.Context,
		provider string,
		providerID string,
	) (*models.Payment, error)

	GetActiveByEntity(
		ctx context.Context,
		entity string,
		entityID uint,
	) (*models.Payment, error)

	Create(
		ctx context.Context,
		p *models.Payment,
	) error

	Update(
		ctx context.Context,
		p *models.Payment,
	) error
}

// UserLookup is the narrow read-only port into the user module, used
// to populate provider checkout payloads.
type UserLookup interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// WalletService credits or debits a user wallet in minor units.
type WalletService interface {
	Credit(ctx context.Context, userID uint, amount int64) error
	Debit(ctx context.Context, userID uint, amount int64) error
}

// TransactionRecorder appends one row per money movement.
type TransactionRecorder interface {
	Record(ctx context.Context, entity string, entityID uint, op string, value int64) error
}
