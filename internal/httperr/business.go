package httperr

import "errors"

// Error codes the core returns to its callers. Only the code and a
// human-readable message cross the core boundary.
const (
	CodeNotFound             = "not_found"
	CodeValidation           = "validation_error"
	CodeInvalidTransition    = "invalid_transition"
	CodeSlotTaken            = "slot_taken"
	CodeIntervalTooLarge     = "interval_too_large"
	CodePaymentFailed        = "payment_failed"
	CodeUnsupportedOperation = "unsupported_operation"
	CodeProviderUnavailable  = "provider_unavailable"
	CodeConflict             = "conflict"
)

type BusinessError struct {
	Code    string
	Message string
}

func (e BusinessError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func ErrBusinessMsg(code, message string) error {
	return BusinessError{Code: code, Message: message}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func BusinessCode(err error) (string, bool) {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code, true
	}
	return "", false
}
