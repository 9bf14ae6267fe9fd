package provider

import (
	"context"
	"fmt"
	"strconv"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
	mppreference "github.com/mercadopago/sdk-go/pkg/preference"
	mprefund "github.com/mercadopago/sdk-go/pkg/refund"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/payment"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

// MercadoPagoAdapter drives the Mercado Pago gateway. Link-type
// payments go through a checkout preference; card payments through the
// payments API, with capture deferred for pre-auth.
type MercadoPagoAdapter struct {
	payments    mppayment.Client
	preferences mppreference.Client
	refunds     mprefund.Client
}

func NewMercadoPagoAdapter(accessToken string) (*MercadoPagoAdapter, error) {
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}

	return &MercadoPagoAdapter{
		payments:    mppayment.NewClient(cfg),
		preferences: mppreference.NewClient(cfg),
		refunds:     mprefund.NewClient(cfg),
	}, nil
}

func (a *MercadoPagoAdapter) Create(ctx context.Context, p *models.Payment, user *models.User) (*domain.ProviderResult, error) {
	if p.Type == domain.TypeLink {
		return a.createPreference(ctx, p)
	}

	req := mppayment.Request{
		TransactionAmount: minorToMajor(p.Amount),
		Description:       fmt.Sprintf("%s #%d", p.Entity, p.EntityID),
		ExternalReference: p.IdempotencyKey,
		Capture:           p.Type != domain.TypePreAuth,
		Payer: &mppayment.PayerRequest{
			Email:     user.Email,
			FirstName: user.Name,
			Identification: &mppayment.IdentificationRequest{
				Type:   "CPF",
				Number: user.Document,
			},
		},
	}

	resp, err := a.payments.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	return paymentResult(resp), nil
}

func (a *MercadoPagoAdapter) createPreference(ctx context.Context, p *models.Payment) (*domain.ProviderResult, error) {
	resp, err := a.preferences.Create(ctx, mppreference.Request{
		ExternalReference: p.IdempotencyKey,
		Items: []mppreference.ItemRequest{
			{
				Title:     fmt.Sprintf("%s #%d", p.Entity, p.EntityID),
				Quantity:  1,
				UnitPrice: minorToMajor(p.Amount),
			},
		},
	})
	if err != nil {
		return nil, err
	}

	link := resp.InitPoint
	return &domain.ProviderResult{
		ExternalID: "pref:" + resp.ID,
		Status:     domain.StatusWaiting,
		Link:       &link,
		Meta:       map[string]any{"preference_id": resp.ID},
	}, nil
}

// Authorize re-reads the payment: Mercado Pago authorizes on create
// when capture is deferred, there is no separate authorize call.
func (a *MercadoPagoAdapter) Authorize(ctx context.Context, p *models.Payment) (*domain.ProviderResult, error) {
	return a.GetByID(ctx, p)
}

func (a *MercadoPagoAdapter) Capture(ctx context.Context, p *models.Payment) (*domain.ProviderResult, error) {
	id, err := a.externalID(p)
	if err != nil {
		return nil, err
	}

	resp, err := a.payments.Capture(ctx, id)
	if err != nil {
		return nil, err
	}
	return paymentResult(resp), nil
}

func (a *MercadoPagoAdapter) Cancel(ctx context.Context, p *models.Payment) (*domain.ProviderResult, error) {
	id, err := a.externalID(p)
	if err != nil {
		return nil, err
	}

	resp, err := a.payments.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}
	return paymentResult(resp), nil
}

func (a *MercadoPagoAdapter) Refund(ctx context.Context, p *models.Payment) (*domain.ProviderResult, error) {
	id, err := a.externalID(p)
	if err != nil {
		return nil, err
	}

	if _, err := a.refunds.Create(ctx, id); err != nil {
		return nil, err
	}

	return &domain.ProviderResult{
		ExternalID: p.ProviderID,
		Status:     domain.StatusRefunded,
		Meta:       map[string]any{"refunded_payment_id": id},
	}, nil
}

func (a *MercadoPagoAdapter) GetByID(ctx context.Context, p *models.Payment) (*domain.ProviderResult, error) {
	id, err := a.externalID(p)
	if err != nil {
		return nil, err
	}

	resp, err := a.payments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return paymentResult(resp), nil
}

func (a *MercadoPagoAdapter) externalID(p *models.Payment) (int, error) {
	id, err := strconv.Atoi(p.ProviderID)
	if err != nil {
		return 0, httperr.ErrBusinessMsg(httperr.CodeUnsupportedOperation, "payment has no gateway reference")
	}
	return id, nil
}

func paymentResult(resp *mppayment.Response) *domain.ProviderResult {
	return &domain.ProviderResult{
		ExternalID: strconv.Itoa(resp.ID),
		Status:     mapMercadoPagoStatus(resp.Status),
		Meta: map[string]any{
			"status":        resp.Status,
			"status_detail": resp.StatusDetail,
		},
	}
}

func mapMercadoPagoStatus(s string) domain.Status {
	switch s {
	case "approved":
		return domain.StatusPaid
	case "authorized":
		return domain.StatusAuthorized
	case "pending":
		return domain.StatusWaiting
	case "in_process", "in_mediation":
		return domain.StatusProcessing
	case "rejected":
		return domain.StatusDeclined
	case "cancelled":
		return domain.StatusCancelled
	case "refunded", "charged_back":
		return domain.StatusRefunded
	default:
		return domain.StatusProcessing
	}
}

func minorToMajor(amount int64) float64 {
	return float64(amount) / 100
}

var _ domain.ProviderAdapter = (*MercadoPagoAdapter)(nil)
