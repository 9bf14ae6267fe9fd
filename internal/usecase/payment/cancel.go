package payment

import (
	"context"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/payment"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

// Cancel voids a payment that has not been captured. A payment that
// never reached the gateway is cancelled locally.
func (o *Orchestrator) Cancel(ctx context.Context, id uint) (*models.Payment, error) {
	p, err := o.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	current := domain.Status(p.Status)
	if current == domain.StatusCancelled {
		return p, nil
	}
	if err := domain.CanTransition(current, domain.StatusCancelled); err != nil {
		return nil, err
	}

	if p.ProviderID == "" {
		p.Status = string(domain.StatusCancelled)
		o.record(ctx, p, "payment_cancelled", 0)
		return o.persistAndEmit(ctx, p, "cancelled", current)
	}

	adapter, err := o.providers.ForProvider(p.Provider)
	if err != nil {
		return nil, err
	}

	res, err := o.call(ctx, adapter, p, "cancel", func(cctx context.Context) (*domain.ProviderResult, error) {
		return adapter.Cancel(cctx, p)
	})
	if err != nil {
		return nil, err
	}

	o.apply(p, res)
	o.record(ctx, p, "payment_cancelled", 0)
	return o.persistAndEmit(ctx, p, "cancelled", current)
}

// Refund returns captured funds. Only a paid payment can be refunded;
// wallet payments are credited straight back to the user wallet.
func (o *Orchestrator) Refund(ctx context.Context, id uint) (*models.Payment, error) {
	p, err := o.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	current := domain.Status(p.Status)
	if current == domain.StatusRefunded {
		return p, nil
	}
	if err := domain.CanTransition(current, domain.StatusRefunded); err != nil {
		return nil, err
	}

	adapter, err := o.providers.ForProvider(p.Provider)
	if err != nil {
		return nil, err
	}

	res, err := o.call(ctx, adapter, p, "refund", func(cctx context.Context) (*domain.ProviderResult, error) {
		return adapter.Refund(cctx, p)
	})
	if err != nil {
		return nil, err
	}

	o.apply(p, res)

	if p.Method == domain.MethodWallet {
		if err := o.wallet.Credit(ctx, p.UserID, p.Amount); err != nil {
			return nil, err
		}
	}

	o.record(ctx, p, "payment_refunded", -p.Amount)
	return o.persistAndEmit(ctx, p, "refunded", current)
}

// Expire marks an overdue pending/waiting payment as expired without a
// gateway call. The sweep job drives this through the coordinator.
func (o *Orchestrator) Expire(ctx context.Context, id uint) (*models.Payment, error) {
	p, err := o.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	current := domain.Status(p.Status)
	if current == domain.StatusExpired {
		return p, nil
	}
	if err := domain.CanTransition(current, domain.StatusExpired); err != nil {
		return nil, err
	}

	p.Status = string(domain.StatusExpired)
	o.record(ctx, p, "payment_expired", 0)
	return o.persistAndEmit(ctx, p, "expired", current)
}
