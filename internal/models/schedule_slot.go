package models

import (
	"time"

	"gorm.io/gorm"
)

type ScheduleSlot struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Nil for exception slots created without a booking.
	BookingID *uint `gorm:"index" json:"booking_id"`

	// Nil for facility-only slots.
	WasherID *uint `gorm:"uniqueIndex:uniq_slot_washer_ts,where:deleted_at IS NULL" json:"washer_id"`

	IsAvailable bool   `json:"is_available"`
	Type        string `gorm:"size:20;default:'booking'" json:"type"`

	// Minutes.
	Duration int `json:"duration"`

	// Start instant. Conflict detection is instant-equality per washer;
	// the partial unique index is the single point of contention.
	Timestamp time.Time `gorm:"uniqueIndex:uniq_slot_washer_ts,where:deleted_at IS NULL" json:"timestamp"`

	Reason string `gorm:"size:255" json:"reason"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
