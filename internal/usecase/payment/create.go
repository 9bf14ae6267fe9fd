package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/payment"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CreateInput struct {
	UserID   uint
	Entity   string
	EntityID uint

	// Minor units.
	Amount   int64
	Currency string

	Type     string
	Method   string
	Provider string

	ExpiresAt *time.Time
}

// ======================================================
// CREATE
// ======================================================

// Create persists a pending row, calls the gateway and merges the
// result back. When the gateway call fails the row stays pending with
// no provider reference and the error propagates; the caller decides
// whether to retry or abort.
func (o *Orchestrator) Create(ctx context.Context, in CreateInput) (*models.Payment, error) {
	if in.Amount <= 0 {
		return nil, httperr.ErrBusinessMsg(httperr.CodeValidation, "amount must be positive")
	}
	if !domain.IsValidType(in.Type) {
		return nil, httperr.ErrBusinessMsg(httperr.CodeValidation, "invalid payment type: "+in.Type)
	}
	if in.Entity == "" || in.EntityID == 0 {
		return nil, httperr.ErrBusinessMsg(httperr.CodeValidation, "payment requires an owning entity")
	}

	adapter, err := o.providers.ForProvider(in.Provider)
	if err != nil {
		return nil, err
	}

	user, err := o.users.GetUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	currency := in.Currency
	if currency == "" {
		currency = "BRL"
	}

	p := &models.Payment{
		UserID:         in.UserID,
		Entity:         in.Entity,
		EntityID:       in.EntityID,
		Status:         string(domain.StatusPending),
		Amount:         in.Amount,
		Currency:       currency,
		Type:           in.Type,
		Method:         in.Method,
		Provider:       in.Provider,
		IdempotencyKey: uuid.NewString(),
		ExpiresAt:      in.ExpiresAt,
	}

	if err := o.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	res, err := o.call(ctx, adapter, p, "create", func(cctx context.Context) (*domain.ProviderResult, error) {
		return adapter.Create(cctx, p, user)
	})
	if err != nil {
		return nil, err
	}

	o.apply(p, res)

	o.logger.Info("payment created",
		zap.Uint("payment_id", p.ID),
		zap.String("provider", p.Provider),
		zap.String("status", p.Status),
	)

	o.record(ctx, p, "payment_created", p.Amount)
	return o.persistAndEmit(ctx, p, "created", domain.StatusPending)
}

// Reattach relinks a payment to a new owning entity. Used by the
// reschedule flow; status is untouched.
func (o *Orchestrator) Reattach(ctx context.Context, id uint, entity string, entityID uint) (*models.Payment, error) {
	p, err := o.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Entity = entity
	p.EntityID = entityID

	if err := o.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
