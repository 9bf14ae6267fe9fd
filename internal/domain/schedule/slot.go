package schedule

import "time"

// ===============================
// Slot Types
// ===============================

type SlotType string

const (
	TypeBooking   SlotType = "booking"
	TypeCustom    SlotType = "custom"
	TypeException SlotType = "exception"
)

// MaxQueryInterval caps bounded-range availability queries.
const MaxQueryInterval = 7 * 24 * time.Hour

type AvailabilityQuery struct {
	WasherID *uint
	Start    time.Time
	End      time.Time

	// Minutes.
	Duration int
}
