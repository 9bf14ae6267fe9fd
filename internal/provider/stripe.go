package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/payment"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

// StripeAdapter drives Stripe through PaymentIntents. Pre-auth maps to
// manual capture; link-type payments are not offered on this gateway.
type StripeAdapter struct {
	api *client.API
}

func NewStripeAdapter(secretKey string) *StripeAdapter {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeAdapter{api: api}
}

func (a *StripeAdapter) Create(ctx context.Context, p *models.Payment, user *models.User) (*domain.ProviderResult, error) {
	if p.Type == domain.TypeLink {
		return nil, httperr.ErrBusinessMsg(httperr.CodeUnsupportedOperation, "link payments are not supported on stripe")
	}

	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context:        ctx,
			IdempotencyKey: stripe.String(p.IdempotencyKey),
		},
		Amount:       stripe.Int64(p.Amount),
		Currency:     stripe.String(strings.ToLower(p.Currency)),
		Description:  stripe.String(fmt.Sprintf("%s #%d", p.Entity, p.EntityID)),
		ReceiptEmail: stripe.String(user.Email),
	}
	if p.Type == domain.TypePreAuth {
		params.CaptureMethod = stripe.String(string(stripe.PaymentIntentCaptureMethodManual))
	}

	pi, err := a.api.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}
	return intentResult(pi), nil
}

func (a *StripeAdapter) Authorize(ctx context.Context, p *models.Payment) (*domain.ProviderResult, error) {
	pi, err := a.api.PaymentIntents.Confirm(p.ProviderID, &stripe.PaymentIntentConfirmParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, err
	}
	return intentResult(pi), nil
}

func (a *StripeAdapter) Capture(ctx context.Context, p *models.Payment) (*domain.ProviderResult, error) {
	pi, err := a.api.PaymentIntents.Capture(p.ProviderID, &stripe.PaymentIntentCaptureParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, err
	}
	return intentResult(pi), nil
}

func (a *StripeAdapter) Cancel(ctx context.Context, p *models.Payment) (*domain.ProviderResult, error) {
	pi, err := a.api.PaymentIntents.Cancel(p.ProviderID, &stripe.PaymentIntentCancelParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, err
	}
	return intentResult(pi), nil
}

func (a *StripeAdapter) Refund(ctx context.Context, p *models.Payment) (*domain.ProviderResult, error) {
	ref, err := a.api.Refunds.New(&stripe.RefundParams{
		Params:        stripe.Params{Context: ctx},
		PaymentIntent: stripe.String(p.ProviderID),
	})
	if err != nil {
		return nil, err
	}

	return &domain.ProviderResult{
		ExternalID: p.ProviderID,
		Status:     domain.StatusRefunded,
		Meta:       map[string]any{"refund_id": ref.ID, "refund_status": string(ref.Status)},
	}, nil
}

func (a *StripeAdapter) GetByID(ctx context.Context, p *models.Payment) (*domain.ProviderResult, error) {
	pi, err := a.api.PaymentIntents.Get(p.ProviderID, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, err
	}
	return intentResult(pi), nil
}

func intentResult(pi *stripe.PaymentIntent) *domain.ProviderResult {
	return &domain.ProviderResult{
		ExternalID: pi.ID,
		Status:     mapStripeStatus(pi.Status),
		Meta: map[string]any{
			"status": string(pi.Status),
		},
	}
}

func mapStripeStatus(s stripe.PaymentIntentStatus) domain.Status {
	switch s {
	case stripe.PaymentIntentStatusSucceeded:
		return domain.StatusPaid
	case stripe.PaymentIntentStatusRequiresCapture:
		return domain.StatusAuthorized
	case stripe.PaymentIntentStatusProcessing:
		return domain.StatusProcessing
	case stripe.PaymentIntentStatusCanceled:
		return domain.StatusCancelled
	case stripe.PaymentIntentStatusRequiresPaymentMethod,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusRequiresAction:
		return domain.StatusWaiting
	default:
		return domain.StatusProcessing
	}
}

var _ domain.ProviderAdapter = (*StripeAdapter)(nil)
