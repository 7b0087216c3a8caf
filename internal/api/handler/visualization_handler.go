package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orgodyssey/odyssey/internal/api/metrics"
	"github.com/orgodyssey/odyssey/internal/core/domain"
	"github.com/orgodyssey/odyssey/internal/core/ports"
)

type VisualizationHandler struct {
	service ports.EmployerService
}

func NewVisualizationHandler(service ports.EmployerService) *VisualizationHandler {
	return &VisualizationHandler{service: service}
}

// ByName handles GET and POST /visualization/:root_name.
//
// @Summary      Employer hierarchy around a root
// @Tags         visualization
// @Produce      json
// @Security     BearerAuth
// @Param        root_name  path      string  true  "Exact employer name"
// @Success      200        {object}  visualizationResponse
// @Failure      404        {object}  errorResponse
// @Router       /visualization/{root_name} [get]
// @Router       /visualization/{root_name} [post]
func (h *VisualizationHandler) ByName(c echo.Context) error {
	return h.render(c, c.Param("root_name"))
}

// Search handles POST /visualization with {"search": "<name>"}.
//
// @Summary      Employer hierarchy for a searched name
// @Tags         visualization
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      searchRequest  true  "Employer name"
// @Success      200   {object}  visualizationResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /visualization [post]
func (h *VisualizationHandler) Search(c echo.Context) error {
	var req searchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	return h.render(c, req.Search)
}

func (h *VisualizationHandler) render(c echo.Context, name string) error {
	root, g, err := h.service.Visualize(c.Request().Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrEmployerNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "Selected employer not found"})
		}
		return err
	}

	metrics.VisualizationNodes.Observe(float64(len(g.Nodes)))
	return c.JSON(http.StatusOK, toVisualizationResponse(root, g))
}
