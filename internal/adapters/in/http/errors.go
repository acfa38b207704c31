package http

import (
	"errors"
	"net/http"

	"rental/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// statusFor maps a domain or application error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrInvalidState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrInvalidDate),
		errors.Is(err, errs.ErrInvalidAmount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError replies with the mapped status. Internal errors are logged and
// replaced by a generic message.
func (s *Server) writeError(ctx echo.Context, err error, internalMessage string) error {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		if internalMessage == "" {
			internalMessage = "Internal server error"
		}
		s.logger.ErrorContext(ctx.Request().Context(), internalMessage,
			"method", ctx.Request().Method,
			"path", ctx.Path(),
			"error", err,
		)
		return ctx.JSON(code, ErrorResponse{Code: code, Message: internalMessage})
	}
	return ctx.JSON(code, ErrorResponse{Code: code, Message: err.Error()})
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}
