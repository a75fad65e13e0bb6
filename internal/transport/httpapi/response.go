package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ersonp/watlas/internal/domain/entities"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error describes a failed request.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error codes.
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeValidation      = "VALIDATION_FAILED"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeSearchDisabled  = "SEARCH_DISABLED"
	CodeInternal        = "INTERNAL_ERROR"
)

func success(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Data: data})
}

func failure(c *gin.Context, status int, code, message string, details any) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error:   &Error{Code: code, Message: message, Details: details},
	})
}

func badRequest(c *gin.Context, message string) {
	failure(c, http.StatusBadRequest, CodeBadRequest, message, nil)
}

// writeError maps a domain error to its HTTP status. Unknown errors are
// logged and reported without their message.
func writeError(c *gin.Context, err error) {
	var verr *entities.ValidationError
	switch {
	case errors.As(err, &verr):
		failure(c, http.StatusBadRequest, CodeValidation, err.Error(), verr.Fields)
	case errors.Is(err, entities.ErrValidation):
		failure(c, http.StatusBadRequest, CodeValidation, err.Error(), nil)
	case errors.Is(err, entities.ErrNotFound):
		failure(c, http.StatusNotFound, CodeNotFound, err.Error(), nil)
	case errors.Is(err, entities.ErrConflict):
		failure(c, http.StatusConflict, CodeConflict, err.Error(), nil)
	case errors.Is(err, entities.ErrUnauthenticated):
		failure(c, http.StatusUnauthorized, CodeUnauthenticated, err.Error(), nil)
	case errors.Is(err, entities.ErrForbidden):
		failure(c, http.StatusForbidden, CodeForbidden, err.Error(), nil)
	default:
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
		failure(c, http.StatusInternalServerError, CodeInternal, "internal server error", nil)
	}
}
