package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/booking"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httpresp"
	"github.com/AquaServicesBR/carwash-scheduler/internal/middleware"
	bookinguc "github.com/AquaServicesBR/carwash-scheduler/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	coordinator *bookinguc.Coordinator
}

func NewBookingHandler(coordinator *bookinguc.Coordinator) *BookingHandler {
	return &BookingHandler{coordinator: coordinator}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	WasherID  uint  `json:"washer_id" binding:"required"`
	AddressID uint  `json:"address_id" binding:"required"`
	VehicleID uint  `json:"vehicle_id" binding:"required"`
	CouponID  *uint `json:"coupon_id"`

	ServiceName string `json:"service_name" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	Duration    int    `json:"duration" binding:"required"`

	IsSameDay bool `json:"is_same_day"`
	IsOneTime bool `json:"is_one_time"`

	Price         int64 `json:"price" binding:"required"`
	PriceDiscount int64 `json:"price_discount"`

	PaymentType     string `json:"payment_type" binding:"required"`
	PaymentMethod   string `json:"payment_method" binding:"required"`
	PaymentProvider string `json:"payment_provider" binding:"required"`
}

type TransitionRequest struct {
	Target string `json:"target" binding:"required"`
}

type AssignWasherRequest struct {
	WasherID uint `json:"washer_id" binding:"required"`
}

type RescheduleRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

// ======================================================
// OPERATIONS
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	start, err := parseDateTime(req.Date, req.Time)
	if err != nil {
		httperr.BadRequest(c, "invalid_date_or_time", "Data ou hora inválida.")
		return
	}

	expires := time.Now().Add(30 * time.Minute)
	b, err := h.coordinator.Create(c.Request.Context(), bookinguc.CreateInput{
		UserID:          userID,
		WasherID:        req.WasherID,
		AddressID:       req.AddressID,
		VehicleID:       req.VehicleID,
		CouponID:        req.CouponID,
		ServiceName:     req.ServiceName,
		Timestamp:       start,
		Duration:        req.Duration,
		IsSameDay:       req.IsSameDay,
		IsOneTime:       req.IsOneTime,
		Price:           req.Price,
		PriceDiscount:   req.PriceDiscount,
		PaymentType:     req.PaymentType,
		PaymentMethod:   req.PaymentMethod,
		PaymentProvider: req.PaymentProvider,
		PaymentExpires:  &expires,
	})
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	httpresp.Created(c, b)
}

func (h *BookingHandler) Transition(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	b, err := h.coordinator.Transition(c.Request.Context(), id, domain.Status(req.Target))
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	httpresp.OK(c, b)
}

func (h *BookingHandler) AssignWasher(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req AssignWasherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	b, err := h.coordinator.AssignWasher(c.Request.Context(), id, req.WasherID)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	httpresp.OK(c, b)
}

func (h *BookingHandler) Reschedule(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	start, err := parseDateTime(req.Date, req.Time)
	if err != nil {
		httperr.BadRequest(c, "invalid_date_or_time", "Data ou hora inválida.")
		return
	}

	b, err := h.coordinator.Reschedule(c.Request.Context(), id, start)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	httpresp.OK(c, b)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req CancelRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.coordinator.Cancel(c.Request.Context(), id, req.Reason); err != nil {
		httperr.WriteError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ExpirePending is called by the external sweep job.
func (h *BookingHandler) ExpirePending(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.coordinator.ExpirePending(c.Request.Context(), id); err != nil {
		httperr.WriteError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
		return 0, false
	}
	return uint(id), true
}
