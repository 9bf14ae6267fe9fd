package booking

import "github.com/AquaServicesBR/carwash-scheduler/internal/httperr"

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusDraft       Status = "draft"
	StatusPending     Status = "pending"
	StatusReserved    Status = "reserved"
	StatusScheduled   Status = "scheduled"
	StatusEnRoute     Status = "en_route"
	StatusPreparing   Status = "preparing"
	StatusExecuting   Status = "executing"
	StatusFinishing   Status = "finishing"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusRescheduled Status = "rescheduled"
	StatusUnassigned  Status = "unassigned"
)

func InitialStatus() Status {
	return StatusDraft
}

func IsTerminal(s Status) bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusRescheduled:
		return true
	}
	return false
}

// edges holds every allowed forward transition. Cancellation and
// reschedule are handled separately: any non-terminal status may move
// to cancelled or rescheduled.
var edges = map[Status][]Status{
	StatusDraft:      {StatusPending},
	StatusPending:    {StatusReserved, StatusScheduled},
	StatusReserved:   {StatusScheduled},
	StatusScheduled:  {StatusEnRoute, StatusUnassigned},
	StatusUnassigned: {StatusScheduled},
	StatusEnRoute:    {StatusPreparing},
	StatusPreparing:  {StatusExecuting},
	StatusExecuting:  {StatusFinishing},
	StatusFinishing:  {StatusCompleted},
}

// CanTransition reports whether current -> target is an allowed edge.
func CanTransition(current, target Status) error {
	if current == target {
		return httperr.ErrBusiness(httperr.CodeInvalidTransition)
	}

	if target == StatusCancelled || target == StatusRescheduled {
		if IsTerminal(current) {
			return httperr.ErrBusiness(httperr.CodeInvalidTransition)
		}
		return nil
	}

	for _, next := range edges[current] {
		if next == target {
			return nil
		}
	}
	return httperr.ErrBusiness(httperr.CodeInvalidTransition)
}

// IsWasherProgression reports whether the edge belongs to the
// washer-driven service progression (monotonic, no skipping).
func IsWasherProgression(target Status) bool {
	switch target {
	case StatusEnRoute, StatusPreparing, StatusExecuting, StatusFinishing, StatusCompleted:
		return true
	}
	return false
}
