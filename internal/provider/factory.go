package provider

import (
	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/payment"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
)

// ======================================================
// FACTORY
// ======================================================

type FactoryConfig struct {
	MercadoPagoToken string
	StripeKey        string

	// When false the deterministic local adapter cannot be selected,
	// so no environment can fake real money movement.
	AllowLocal bool
}

type Factory struct {
	adapters   map[string]domain.ProviderAdapter
	allowLocal bool
}

func NewFactory(cfg FactoryConfig) (*Factory, error) {
	f := &Factory{
		adapters:   make(map[string]domain.ProviderAdapter),
		allowLocal: cfg.AllowLocal,
	}

	f.adapters[domain.ProviderLocal] = NewLocalAdapter()

	if cfg.MercadoPagoToken != "" {
		mp, err := NewMercadoPagoAdapter(cfg.MercadoPagoToken)
		if err != nil {
			return nil, err
		}
		f.adapters[domain.ProviderMercadoPago] = mp
	}

	if cfg.StripeKey != "" {
		f.adapters[domain.ProviderStripe] = NewStripeAdapter(cfg.StripeKey)
	}

	return f, nil
}

// ForProvider resolves the adapter for a provider identifier. Unknown
// identifiers are rejected, never silently defaulted.
func (f *Factory) ForProvider(name string) (domain.ProviderAdapter, error) {
	if name == domain.ProviderLocal && !f.allowLocal {
		return nil, httperr.ErrBusinessMsg(
			httperr.CodeUnsupportedOperation,
			"local provider is not allowed in this environment",
		)
	}

	switch name {
	case domain.ProviderLocal, domain.ProviderMercadoPago, domain.ProviderStripe:
	default:
		return nil, httperr.ErrBusinessMsg(httperr.CodeValidation, "unknown payment provider: "+name)
	}

	adapter, ok := f.adapters[name]
	if !ok {
		return nil, httperr.ErrBusinessMsg(
			httperr.CodeUnsupportedOperation,
			"payment provider not configured: "+name,
		)
	}
	return adapter, nil
}

var _ domain.AdapterResolver = (*Factory)(nil)
