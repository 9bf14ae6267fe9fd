package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/schedule"
	"github.com/AquaServicesBR/carwash-scheduler/internal/dto"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httpresp"
	scheduleuc "github.com/AquaServicesBR/carwash-scheduler/internal/usecase/schedule"
)

type ScheduleHandler struct {
	allocator *scheduleuc.Allocator
}

func NewScheduleHandler(allocator *scheduleuc.Allocator) *ScheduleHandler {
	return &ScheduleHandler{allocator: allocator}
}

// ======================================================
// REQUESTS
// ======================================================

type RecordExceptionRequest struct {
	WasherID  uint   `json:"washer_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Step      int    `json:"step" binding:"required"`
	Reason    string `json:"reason"`
}

// ======================================================
// OPERATIONS
// ======================================================

// Availability answers GET /schedule/availability with an interval
// bounded at seven days.
func (h *ScheduleHandler) Availability(c *gin.Context) {
	start, err := parseDate(c.Query("start"))
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inicial inválida.")
		return
	}
	end, err := parseDate(c.Query("end"))
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data final inválida.")
		return
	}

	duration, err := strconv.Atoi(c.DefaultQuery("duration", "60"))
	if err != nil {
		httperr.BadRequest(c, "invalid_duration", "Duração inválida.")
		return
	}

	q := domain.AvailabilityQuery{Start: start, End: end, Duration: duration}

	if raw := c.Query("washer_id"); raw != "" {
		id64, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			httperr.BadRequest(c, "invalid_washer", "Lavador inválido.")
			return
		}
		id := uint(id64)
		q.WasherID = &id
	}

	slots, err := h.allocator.FindAvailable(c.Request.Context(), q)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	httpresp.List(c, dto.SlotsToDTO(slots))
}

func (h *ScheduleHandler) RecordException(c *gin.Context) {
	var req RecordExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	start, err := parseDateTime(req.StartDate, req.StartTime)
	if err != nil {
		httperr.BadRequest(c, "invalid_date_or_time", "Data ou hora inválida.")
		return
	}
	end, err := parseDateTime(req.EndDate, req.EndTime)
	if err != nil {
		httperr.BadRequest(c, "invalid_date_or_time", "Data ou hora inválida.")
		return
	}

	slots, err := h.allocator.RecordException(
		c.Request.Context(),
		req.WasherID,
		start,
		end,
		req.Step,
		req.Reason,
	)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	httpresp.List(c, dto.SlotsToDTO(slots))
}

// Agenda lists a washer's day, ordered by start instant.
func (h *ScheduleHandler) Agenda(c *gin.Context) {
	washerID64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_washer", "Lavador inválido.")
		return
	}

	day, err := parseDate(c.Query("date"))
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	slots, err := h.allocator.ListForWasher(c.Request.Context(), uint(washerID64), day)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	httpresp.List(c, dto.SlotsToDTO(slots))
}
