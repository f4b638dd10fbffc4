package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shareit/service-booking/pkg/domain"
)

// Envelope is the JSON body returned by every endpoint.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// BadRequest aborts with a 400 validation body.
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, string(domain.CodeValidation), message)
}

// Error maps err to an HTTP status via its domain code.
// Errors without a domain code are reported as 500 with a generic message.
func Error(c *gin.Context, err error) {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, string(domain.CodeInternal), "internal server error")
		return
	}
	abort(c, StatusFor(de.Code), string(de.Code), de.Message)
}

// StatusFor returns the HTTP status for a domain error code.
func StatusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeValidation, domain.CodeUnknownState:
		return http.StatusBadRequest
	case domain.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message},
	})
}
