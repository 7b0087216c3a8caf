package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orgodyssey/odyssey/internal/api/metrics"
	"github.com/orgodyssey/odyssey/internal/core/domain"
	"github.com/orgodyssey/odyssey/internal/core/ports"
)

type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// Overview handles GET /admin.
//
// @Summary      Admin overview
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  overviewResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin [get]
func (h *AdminHandler) Overview(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	o, err := h.service.Overview(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, overviewResponse{
		Employers: o.Employers,
		Relations: o.Relations,
		Users:     o.Users,
		Admins:    o.Admins,
	})
}

// AddAdmin handles POST /add_admin.
//
// @Summary      Promote an account to admin
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addAdminRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /add_admin [post]
func (h *AdminHandler) AddAdmin(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req addAdminRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err = h.service.GrantAdmin(c.Request().Context(), actor, req.Email)
	metrics.EmployerMutationsTotal.WithLabelValues("add_admin", metrics.Result(err)).Inc()
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "User does not exist"})
		}
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "New admin successfully added"})
}
