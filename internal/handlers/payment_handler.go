package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/payment"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httpresp"
	paymentuc "github.com/AquaServicesBR/carwash-scheduler/internal/usecase/payment"
)

type PaymentHandler struct {
	orchestrator *paymentuc.Orchestrator
}

func NewPaymentHandler(orchestrator *paymentuc.Orchestrator) *PaymentHandler {
	return &PaymentHandler{orchestrator: orchestrator}
}

// ======================================================
// REQUESTS
// ======================================================

type WebhookRequest struct {
	ExternalID string         `json:"external_id" binding:"required"`
	Status     string         `json:"status" binding:"required"`
	Meta       map[string]any `json:"meta"`
}

var webhookStatuses = map[string]domain.Status{
	"waiting":    domain.StatusWaiting,
	"processing": domain.StatusProcessing,
	"authorized": domain.StatusAuthorized,
	"paid":       domain.StatusPaid,
	"cancelled":  domain.StatusCancelled,
	"declined":   domain.StatusDeclined,
	"expired":    domain.StatusExpired,
	"refunded":   domain.StatusRefunded,
}

// ======================================================
// OPERATIONS
// ======================================================

func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	p, err := h.orchestrator.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	httpresp.OK(c, p)
}

func (h *PaymentHandler) Authorize(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	p, err := h.orchestrator.Authorize(c.Request.Context(), id)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	httpresp.OK(c, p)
}

func (h *PaymentHandler) Capture(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	p, err := h.orchestrator.Capture(c.Request.Context(), id)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	httpresp.OK(c, p)
}

// Webhook receives provider notifications. The orchestrator treats
// them exactly like a polled status query.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	providerName := c.Param("provider")

	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	status, ok := webhookStatuses[req.Status]
	if !ok {
		httperr.BadRequest(c, "invalid_status", "Status desconhecido.")
		return
	}

	p, err := h.orchestrator.ReconcileFromWebhook(
		c.Request.Context(),
		providerName,
		req.ExternalID,
		status,
		req.Meta,
	)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	httpresp.OK(c, gin.H{"payment_id": p.ID, "status": p.Status})
}
