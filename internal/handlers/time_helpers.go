package handlers

import (
	"time"

	"github.com/AquaServicesBR/carwash-scheduler/internal/timezone"
)

// parseDate reads a calendar day in the service timezone.
func parseDate(dateStr string) (time.Time, error) {
	return time.ParseInLocation(
		"2006-01-02",
		dateStr,
		timezone.Location(timezone.DefaultTimezone),
	)
}

// parseDateTime reads a full instant in the service timezone.
func parseDateTime(dateStr, timeStr string) (time.Time, error) {
	return time.ParseInLocation(
		"2006-01-02 15:04",
		dateStr+" "+timeStr,
		timezone.Location(timezone.DefaultTimezone),
	)
}
