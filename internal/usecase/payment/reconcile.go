package payment

import (
	"context"

	"go.uber.org/zap"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/payment"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

// ReconcileFromWebhook folds an inbound provider notification into the
// local row, exactly as a polled GetById result would be: status moves
// monotonically along the graph, meta is last-write-wins. Regressions
// are ignored, not errors, since webhooks arrive out of order.
func (o *Orchestrator) ReconcileFromWebhook(
	ctx context.Context,
	providerName string,
	externalID string,
	status domain.Status,
	meta map[string]any,
) (*models.Payment, error) {

	p, err := o.repo.GetByProviderRef(ctx, providerName, externalID)
	if err != nil {
		return nil, err
	}

	current := domain.Status(p.Status)

	o.apply(p, &domain.ProviderResult{
		ExternalID: externalID,
		Status:     status,
		Meta:       meta,
	})

	if p.Status == string(current) && len(meta) == 0 {
		return p, nil
	}

	o.logger.Info("payment reconciled from webhook",
		zap.Uint("payment_id", p.ID),
		zap.String("provider", providerName),
		zap.String("old_status", string(current)),
		zap.String("new_status", p.Status),
	)

	return o.persistAndEmit(ctx, p, "reconciled", current)
}
