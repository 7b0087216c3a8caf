package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/orgodyssey/odyssey/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	if code, ok := statusFor(err); ok {
		return code, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// statusFor maps domain errors to deterministic HTTP codes. Their messages
// are safe to show to the client.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, domain.ErrEmployerNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, domain.ErrEmployerExists),
		errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrRelationExists),
		errors.Is(err, domain.ErrEmployerHasChildren):
		return http.StatusConflict, true
	case errors.Is(err, domain.ErrRelationEndpointNotFound),
		errors.Is(err, domain.ErrSelfRelation),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrInvalidEmployer):
		return http.StatusUnprocessableEntity, true
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusBadRequest, true
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, true
	case errors.Is(err, domain.ErrEmailNotConfirmed),
		errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, true
	}
	return 0, false
}
