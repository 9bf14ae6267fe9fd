package payment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/payment"
	"github.com/AquaServicesBR/carwash-scheduler/internal/events"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

// ======================================================
// PAYMENT ORCHESTRATOR
// ======================================================

// Orchestrator owns every Payment row. Nobody else writes
// Payment.status; callers hold a reference and ask for state changes.
type Orchestrator struct {
	repo      domain.Repository
	users     domain.UserLookup
	wallet    domain.WalletService
	ledger    domain.TransactionRecorder
	providers domain.AdapterResolver
	events    events.Publisher
	logger    *zap.Logger

	// Bound on every adapter network call.
	timeout time.Duration
}

func NewOrchestrator(
	repo domain.Repository,
	users domain.UserLookup,
	wallet domain.WalletService,
	ledger domain.TransactionRecorder,
	providers domain.AdapterResolver,
	events events.Publisher,
	logger *zap.Logger,
	timeout time.Duration,
) *Orchestrator {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Orchestrator{
		repo:      repo,
		users:     users,
		wallet:    wallet,
		ledger:    ledger,
		providers: providers,
		events:    events,
		logger:    logger,
		timeout:   timeout,
	}
}

// --------------------------------------------------
// Adapter call plumbing
// --------------------------------------------------

type adapterCall func(ctx context.Context) (*domain.ProviderResult, error)

// call runs one bounded adapter call. A timeout is treated as Unknown:
// the provider may have processed the charge anyway, so the current
// external state is re-queried once before reporting the gateway as
// unavailable.
func (o *Orchestrator) call(
	ctx context.Context,
	adapter domain.ProviderAdapter,
	p *models.Payment,
	op string,
	fn adapterCall,
) (*domain.ProviderResult, error) {

	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	res, err := fn(cctx)
	cancel()

	if err == nil {
		return res, nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		o.logger.Warn("provider call timed out",
			zap.String("component", "payment_orchestrator"),
			zap.String("operation", op),
			zap.String("provider", p.Provider),
			zap.Uint("payment_id", p.ID),
		)

		if p.ProviderID != "" {
			qctx, qcancel := context.WithTimeout(ctx, o.timeout)
			res, qerr := adapter.GetByID(qctx, p)
			qcancel()
			if qerr == nil {
				return res, nil
			}
		}
		return nil, httperr.ErrBusiness(httperr.CodeProviderUnavailable)
	}

	// Adapter already returned a taxonomy error (unsupported op etc).
	if _, ok := httperr.BusinessCode(err); ok {
		return nil, err
	}

	// Raw provider errors are logged here and never cross the core
	// boundary.
	o.logger.Error("provider call rejected",
		zap.String("component", "payment_orchestrator"),
		zap.String("operation", op),
		zap.String("provider", p.Provider),
		zap.Uint("payment_id", p.ID),
		zap.Error(err),
	)
	return nil, httperr.ErrBusinessMsg(httperr.CodePaymentFailed, "provider rejected the operation")
}

// --------------------------------------------------
// Reconciliation
// --------------------------------------------------

// apply merges a provider result into the row. Status moves only along
// the graph, never backwards; meta is last-write-wins.
func (o *Orchestrator) apply(p *models.Payment, res *domain.ProviderResult) {
	if res == nil {
		return
	}

	if res.ExternalID != "" {
		p.ProviderID = res.ExternalID
	}
	if res.Link != nil {
		p.ProviderLink = res.Link
	}
	if len(res.Meta) > 0 {
		if b, err := json.Marshal(res.Meta); err == nil {
			p.ProviderMeta = string(b)
		}
	}

	current := domain.Status(p.Status)
	if res.Status == current {
		return
	}
	if err := domain.CanTransition(current, res.Status); err != nil {
		// Regression or unknown edge; keep the local status.
		return
	}

	p.Status = string(res.Status)
	now := time.Now()
	switch res.Status {
	case domain.StatusPaid:
		p.CapturedAt = &now
	case domain.StatusRefunded:
		p.RefundedAt = &now
	}
}

func (o *Orchestrator) persistAndEmit(
	ctx context.Context,
	p *models.Payment,
	verb string,
	oldStatus domain.Status,
) (*models.Payment, error) {

	if err := o.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	o.events.Publish("payment.status."+verb, map[string]any{
		"payment_id": p.ID,
		"entity":     p.Entity,
		"entity_id":  p.EntityID,
		"provider":   p.Provider,
		"old_status": string(oldStatus),
		"new_status": p.Status,
	})

	return p, nil
}

func (o *Orchestrator) record(ctx context.Context, p *models.Payment, op string, value int64) {
	if err := o.ledger.Record(ctx, "payment", p.ID, op, value); err != nil {
		o.logger.Warn("transaction record failed",
			zap.String("component", "payment_orchestrator"),
			zap.String("operation", op),
			zap.Uint("payment_id", p.ID),
			zap.Error(err),
		)
	}
}

// GetByID exposes read access to a payment row.
func (o *Orchestrator) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	return o.repo.GetByID(ctx, id)
}

// ActiveForEntity returns the newest payment linked to an entity.
func (o *Orchestrator) ActiveForEntity(ctx context.Context, entity string, entityID uint) (*models.Payment, error) {
	return o.repo.GetActiveByEntity(ctx, entity, entityID)
}
