package payment

import "github.com/AquaServicesBR/carwash-scheduler/internal/httperr"

// ===============================
// Payment Status
// ===============================

type Status string

const (
	StatusPending    Status = "pending"
	StatusWaiting    Status = "waiting"
	StatusProcessing Status = "processing"
	StatusAuthorized Status = "authorized"
	StatusPaid       Status = "paid"
	StatusCancelled  Status = "cancelled"
	StatusDeclined   Status = "declined"
	StatusExpired    Status = "expired"
	StatusRefunded   Status = "refunded"
)

// edges is the forward status graph. pending is never re-entered once
// left; refunded is reachable only from paid.
var edges = map[Status][]Status{
	StatusPending:    {StatusWaiting, StatusProcessing, StatusAuthorized, StatusPaid, StatusCancelled, StatusDeclined, StatusExpired},
	StatusWaiting:    {StatusProcessing, StatusAuthorized, StatusPaid, StatusCancelled, StatusDeclined, StatusExpired},
	StatusProcessing: {StatusAuthorized, StatusPaid, StatusCancelled, StatusDeclined, StatusExpired},
	StatusAuthorized: {StatusPaid, StatusCancelled, StatusDeclined, StatusExpired},
	StatusPaid:       {StatusRefunded},
}

func IsTerminal(s Status) bool {
	switch s {
	case StatusCancelled, StatusDeclined, StatusExpired, StatusRefunded:
		return true
	}
	return false
}

// CanTransition reports whether current -> target follows the graph.
func CanTransition(current, target Status) error {
	for _, next := range edges[current] {
		if next == target {
			return nil
		}
	}
	return httperr.ErrBusiness(httperr.CodeInvalidTransition)
}

// ===============================
// Payment Types / Methods
// ===============================

const (
	TypeImmediate = "immediate"
	TypeLink      = "link"
	TypePreAuth   = "pre_auth"
)

const (
	MethodCard   = "card"
	MethodPix    = "pix"
	MethodWallet = "wallet"
)

func IsValidType(t string) bool {
	switch t {
	case TypeImmediate, TypeLink, TypePreAuth:
		return true
	}
	return false
}
