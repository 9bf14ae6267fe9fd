package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

var statusByCode = map[string]int{
	CodeNotFound:             http.StatusNotFound,
	CodeValidation:           http.StatusBadRequest,
	CodeInvalidTransition:    http.StatusUnprocessableEntity,
	CodeSlotTaken:            http.StatusConflict,
	CodeIntervalTooLarge:     http.StatusBadRequest,
	CodePaymentFailed:        http.StatusPaymentRequired,
	CodeUnsupportedOperation: http.StatusUnprocessableEntity,
	CodeProviderUnavailable:  http.StatusBadGateway,
	CodeConflict:             http.StatusConflict,
}

// WriteError maps a core error to its HTTP response. Anything that is
// not a BusinessError becomes a 500 without leaking internals.
func WriteError(c *gin.Context, err error) {
	if code, ok := BusinessCode(err); ok {
		status, known := statusByCode[code]
		if !known {
			status = http.StatusUnprocessableEntity
		}
		Write(c, status, code, err.Error())
		return
	}
	Internal(c, "internal_error", "Erro interno.")
}
