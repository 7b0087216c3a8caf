package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/orgodyssey/odyssey/internal/api/metrics"
	"github.com/orgodyssey/odyssey/internal/api/middleware"
	"github.com/orgodyssey/odyssey/internal/core/domain"
	"github.com/orgodyssey/odyssey/internal/core/ports"
)

const (
	msgRegistered    = "Thank you for signing up! Please check your email to confirm your account"
	msgConfirmed     = "Your account has been successfully registered!"
	msgLoggedOut     = "You have been logged out"
	msgNoAccount     = "No account exists with that email"
	msgNotActivated  = "Please activate your account before logging in"
	msgBadCredential = "invalid credentials"
)

type AuthHandler struct {
	authService  ports.AuthService
	secureCookie bool
}

// NewAuthHandler builds the account handlers. secureCookie marks the session
// cookie Secure and should be set whenever the service is served over TLS.
func NewAuthHandler(authService ports.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookie: secureCookie}
}

// Register creates a new, unconfirmed account and emails a confirmation link.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	_, err := h.authService.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.AuthEventsTotal.WithLabelValues("register", "duplicate").Inc()
			return c.JSON(http.StatusConflict, errorResponse{Error: "An account with that email already exists"})
		}
		metrics.AuthEventsTotal.WithLabelValues("register", "error").Inc()
		return err
	}

	metrics.AuthEventsTotal.WithLabelValues("register", "ok").Inc()
	return c.JSON(http.StatusCreated, messageResponse{Message: msgRegistered})
}

// Login authenticates a confirmed account and returns a session token. The
// token is also set as the session cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			metrics.AuthEventsTotal.WithLabelValues("login", "unknown").Inc()
			return c.JSON(http.StatusNotFound, errorResponse{Error: msgNoAccount})
		case errors.Is(err, domain.ErrEmailNotConfirmed):
			metrics.AuthEventsTotal.WithLabelValues("login", "unconfirmed").Inc()
			return c.JSON(http.StatusForbidden, errorResponse{Error: msgNotActivated})
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.AuthEventsTotal.WithLabelValues("login", "invalid").Inc()
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: msgBadCredential})
		}
		metrics.AuthEventsTotal.WithLabelValues("login", "error").Inc()
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	metrics.AuthEventsTotal.WithLabelValues("login", "ok").Inc()
	return c.JSON(http.StatusOK, loginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
		User:      user,
	})
}

// Logout revokes the current session and clears the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}

	err = h.authService.Logout(c.Request().Context(), *session)
	metrics.AuthEventsTotal.WithLabelValues("logout", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
	})
	return c.JSON(http.StatusOK, messageResponse{Message: msgLoggedOut})
}

// Confirm activates the account named by an emailed token.
//
// @Summary      Confirm email
// @Tags         auth
// @Produce      json
// @Param        token  path      string  true  "Confirmation token"
// @Success      200    {object}  messageResponse
// @Failure      400    {object}  errorResponse
// @Router       /confirm/{token} [get]
func (h *AuthHandler) Confirm(c echo.Context) error {
	_, err := h.authService.Confirm(c.Request().Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			metrics.AuthEventsTotal.WithLabelValues("confirm", "invalid").Inc()
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		metrics.AuthEventsTotal.WithLabelValues("confirm", "error").Inc()
		return err
	}

	metrics.AuthEventsTotal.WithLabelValues("confirm", "ok").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: msgConfirmed})
}

// Home returns the signed-in account.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Router       /home [get]
func (h *AuthHandler) Home(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
