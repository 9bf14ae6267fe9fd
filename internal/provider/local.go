package provider

import (
	"context"

	"github.com/google/uuid"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/payment"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

// LocalAdapter is the deterministic sandbox gateway used when no
// external credentials are configured. Every call succeeds, no link is
// ever returned, and no money moves.
type LocalAdapter struct{}

func NewLocalAdapter() *LocalAdapter {
	return &LocalAdapter{}
}

func (a *LocalAdapter) Create(_ context.Context, p *models.Payment, _ *models.User) (*domain.ProviderResult, error) {
	return &domain.ProviderResult{
		ExternalID: "local-" + uuid.NewString(),
		Status:     domain.StatusWaiting,
		Link:       nil,
		Meta:       map[string]any{"sandbox": true, "type": p.Type},
	}, nil
}

func (a *LocalAdapter) Authorize(_ context.Context, p *models.Payment) (*domain.ProviderResult, error) {
	return a.result(p, domain.StatusAuthorized), nil
}

func (a *LocalAdapter) Capture(_ context.Context, p *models.Payment) (*domain.ProviderResult, error) {
	return a.result(p, domain.StatusPaid), nil
}

func (a *LocalAdapter) Cancel(_ context.Context, p *models.Payment) (*domain.ProviderResult, error) {
	return a.result(p, domain.StatusCancelled), nil
}

func (a *LocalAdapter) Refund(_ context.Context, p *models.Payment) (*domain.ProviderResult, error) {
	return a.result(p, domain.StatusRefunded), nil
}

// GetByID echoes the locally known status, the sandbox has no external
// source of truth to reconcile against.
func (a *LocalAdapter) GetByID(_ context.Context, p *models.Payment) (*domain.ProviderResult, error) {
	return a.result(p, domain.Status(p.Status)), nil
}

func (a *LocalAdapter) result(p *models.Payment, status domain.Status) *domain.ProviderResult {
	return &domain.ProviderResult{
		ExternalID: p.ProviderID,
		Status:     status,
		Link:       nil,
		Meta:       map[string]any{"sandbox": true},
	}
}

var _ domain.ProviderAdapter = (*LocalAdapter)(nil)
