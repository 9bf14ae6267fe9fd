package payment

import (
	"context"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/payment"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

// Authorize places the funds hold. Calling it on an already-authorized
// payment returns the row as is, without a second gateway call.
func (o *Orchestrator) Authorize(ctx context.Context, id uint) (*models.Payment, error) {
	p, err := o.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	current := domain.Status(p.Status)
	if current == domain.StatusAuthorized {
		return p, nil
	}
	if err := domain.CanTransition(current, domain.StatusAuthorized); err != nil {
		return nil, err
	}

	adapter, err := o.providers.ForProvider(p.Provider)
	if err != nil {
		return nil, err
	}

	res, err := o.call(ctx, adapter, p, "authorize", func(cctx context.Context) (*domain.ProviderResult, error) {
		return adapter.Authorize(cctx, p)
	})
	if err != nil {
		return nil, err
	}

	o.apply(p, res)
	return o.persistAndEmit(ctx, p, "authorized", current)
}

// Capture takes the held funds. Link payments have nothing to capture
// by hand; the gateway settles them on redirect.
func (o *Orchestrator) Capture(ctx context.Context, id uint) (*models.Payment, error) {
	p, err := o.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Type == domain.TypeLink {
		return nil, httperr.ErrBusinessMsg(httperr.CodeUnsupportedOperation, "link payments cannot be captured")
	}

	current := domain.Status(p.Status)
	if current == domain.StatusPaid {
		return p, nil
	}
	if err := domain.CanTransition(current, domain.StatusPaid); err != nil {
		return nil, err
	}

	adapter, err := o.providers.ForProvider(p.Provider)
	if err != nil {
		return nil, err
	}

	res, err := o.call(ctx, adapter, p, "capture", func(cctx context.Context) (*domain.ProviderResult, error) {
		return adapter.Capture(cctx, p)
	})
	if err != nil {
		return nil, err
	}

	o.apply(p, res)
	if domain.Status(p.Status) == domain.StatusPaid {
		o.record(ctx, p, "payment_captured", p.Amount)
	}
	return o.persistAndEmit(ctx, p, "captured", current)
}
