package dto

import (
	"time"

	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

type SlotDTO struct {
	ID          uint      `json:"id"`
	WasherID    *uint     `json:"washer_id"`
	BookingID   *uint     `json:"booking_id"`
	Timestamp   time.Time `json:"timestamp"`
	Duration    int       `json:"duration"`
	Type        string    `json:"type"`
	IsAvailable bool      `json:"is_available"`
}

func SlotsToDTO(slots []models.ScheduleSlot) []SlotDTO {
	out := make([]SlotDTO, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotDTO{
			ID:          s.ID,
			WasherID:    s.WasherID,
			BookingID:   s.BookingID,
			Timestamp:   s.Timestamp,
			Duration:    s.Duration,
			Type:        s.Type,
			IsAvailable: s.IsAvailable,
		})
	}
	return out
}
