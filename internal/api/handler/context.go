package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orgodyssey/odyssey/internal/api/middleware"
	"github.com/orgodyssey/odyssey/internal/core/domain"
	"github.com/orgodyssey/odyssey/internal/core/ports"
)

// ctxUser extracts the account injected by the Auth middleware. A missing
// user means the route was mounted without Auth; reject with 401.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(middleware.KeyUser).(*domain.User)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return user, nil
}

func ctxSession(c echo.Context) (*ports.Session, error) {
	session, _ := c.Get(middleware.KeySession).(*ports.Session)
	if session == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return session, nil
}

// bindAndValidate decodes the request body into req and runs the registered
// validator. Both failures are 400s.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
