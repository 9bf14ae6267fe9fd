package payment

import (
	"context"

	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

// Provider identifiers accepted by the adapter factory.
const (
	ProviderLocal       = "local"
	ProviderMercadoPago = "mercadopago"
	ProviderStripe      = "stripe"
)

// ProviderResult is the normalized outcome of a gateway call.
type ProviderResult struct {
	ExternalID string
	Status     Status

	// Checkout URL for link-type payments, nil otherwise.
	Link *string

	// Opaque provider payload, stored last-write-wins.
	Meta map[string]any
}

// ProviderAdapter is the uniform capability set over one external
// payment gateway. Implementations are stateless aside from
// credentials; every call is network I/O bounded by ctx.
type ProviderAdapter interface {
	Create(ctx context.Context, p *models.Payment, user *models.User) (*ProviderResult, error)
	Authorize(ctx context.Context, p *models.Payment) (*ProviderResult, error)
	Capture(ctx context.Context, p *models.Payment) (*ProviderResult, error)
	Cancel(ctx context.Context, p *models.Payment) (*ProviderResult, error)
	Refund(ctx context.Context, p *models.Payment) (*ProviderResult, error)
	GetByID(ctx context.Context, p *models.Payment) (*ProviderResult, error)
}

// AdapterResolver selects the adapter for a provider identifier.
type AdapterResolver interface {
	ForProvider(name string) (ProviderAdapter, error)
}
