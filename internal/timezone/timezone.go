package timezone

import "time"

// All customer-facing instants (booking slots, payment expiries) live in
// the service timezone, regardless of where the API runs.
const DefaultTimezone = "America/Sao_Paulo"

func Location(tz string) *time.Location {
	if tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, _ := time.LoadLocation(DefaultTimezone)
	return loc
}

func Now() time.Time {
	return time.Now().In(Location(DefaultTimezone))
}
