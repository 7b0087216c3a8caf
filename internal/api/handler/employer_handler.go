package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orgodyssey/odyssey/internal/api/metrics"
	"github.com/orgodyssey/odyssey/internal/core/ports"
)

// EmployerHandler handles employer CRUD and relation management.
type EmployerHandler struct {
	service ports.EmployerService
}

func NewEmployerHandler(service ports.EmployerService) *EmployerHandler {
	return &EmployerHandler{service: service}
}

// List handles GET /employers.
//
// @Summary      List employers
// @Tags         employers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  employerListResponse
// @Failure      401  {object}  errorResponse
// @Router       /employers [get]
func (h *EmployerHandler) List(c echo.Context) error {
	summaries, err := h.service.ListEmployers(c.Request().Context())
	if err != nil {
		return err
	}

	resp := employerListResponse{Employers: make([]employerResponse, 0, len(summaries))}
	for _, s := range summaries {
		resp.Employers = append(resp.Employers, toSummaryResponse(s))
	}
	return c.JSON(http.StatusOK, resp)
}

// Create handles POST /add_employer.
//
// @Summary      Add an employer
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createEmployerRequest  true  "Employer"
// @Success      201   {object}  employerCreatedResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /add_employer [post]
func (h *EmployerHandler) Create(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req createEmployerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := toCreateInput(req)
	if err != nil {
		return err
	}

	e, err := h.service.CreateEmployer(c.Request().Context(), actor, in)
	metrics.EmployerMutationsTotal.WithLabelValues("create", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, employerCreatedResponse{
		Message:  "Employer added successfully!",
		Employer: toEmployerResponse(e),
	})
}

// Edit handles POST /edit_employer. Only supplied, non-empty fields change.
//
// @Summary      Edit an employer
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      editEmployerRequest  true  "Fields to change"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /edit_employer [post]
func (h *EmployerHandler) Edit(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req editEmployerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := toEditInput(req)
	if err != nil {
		return err
	}

	changed, err := h.service.EditEmployer(c.Request().Context(), actor, in)
	if err != nil {
		metrics.EmployerMutationsTotal.WithLabelValues("edit", "error").Inc()
		return err
	}
	if !changed {
		metrics.EmployerMutationsTotal.WithLabelValues("edit", "unchanged").Inc()
		return c.JSON(http.StatusOK, messageResponse{Message: "No changes were made"})
	}
	metrics.EmployerMutationsTotal.WithLabelValues("edit", "ok").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Employer has been successfully updated!"})
}

// Delete handles POST /delete_employer.
//
// @Summary      Delete an employer
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      deleteEmployerRequest  true  "Employer name"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /delete_employer [post]
func (h *EmployerHandler) Delete(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req deleteEmployerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err = h.service.DeleteEmployer(c.Request().Context(), actor, req.Name)
	metrics.EmployerMutationsTotal.WithLabelValues("delete", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Employer deleted"})
}

// AddRelation handles POST /add_relation.
//
// @Summary      Add a parent → child relation
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      relationRequest  true  "Parent and child names"
// @Success      201   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /add_relation [post]
func (h *EmployerHandler) AddRelation(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req relationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err = h.service.AddRelation(c.Request().Context(), actor, ports.RelationInput{
		ParentName: req.ParentName,
		ChildName:  req.ChildName,
	})
	metrics.EmployerMutationsTotal.WithLabelValues("add_relation", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, messageResponse{Message: "Relation added successfully!"})
}
