package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/orgodyssey/odyssey/internal/core/domain"
	"github.com/orgodyssey/odyssey/internal/core/graph"
	"github.com/orgodyssey/odyssey/internal/core/ports"
)

// --- Request → Service input ---

func parseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(domain.DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, field+" must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// parseOptionalDate treats nil and "" as absent.
func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := parseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toCreateInput(req createEmployerRequest) (ports.CreateEmployerInput, error) {
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return ports.CreateEmployerInput{}, err
	}
	end, err := parseOptionalDate("end_date", &req.EndDate)
	if err != nil {
		return ports.CreateEmployerInput{}, err
	}
	return ports.CreateEmployerInput{
		Name:                req.Name,
		HeadquartersAddress: req.HeadquartersAddress,
		Description:         req.Description,
		StartDate:           start,
		EndDate:             end,
	}, nil
}

func toEditInput(req editEmployerRequest) (ports.EditEmployerInput, error) {
	start, err := parseOptionalDate("start_date", req.StartDate)
	if err != nil {
		return ports.EditEmployerInput{}, err
	}
	end, err := parseOptionalDate("end_date", req.EndDate)
	if err != nil {
		return ports.EditEmployerInput{}, err
	}
	return ports.EditEmployerInput{
		Name:                req.Name,
		HeadquartersAddress: req.HeadquartersAddress,
		Description:         req.Description,
		StartDate:           start,
		EndDate:             end,
	}, nil
}

// --- Service result → HTTP response ---

func toEmployerResponse(e *domain.Employer) employerResponse {
	return employerResponse{
		ID:                  e.ID,
		Name:                e.Name,
		HeadquartersAddress: e.HeadquartersAddress,
		Description:         e.Description,
		StartDate:           e.StartDate.Format(domain.DateLayout),
		EndDate:             graph.FormatEndDate(e.EndDate),
	}
}

func toSummaryResponse(s ports.EmployerSummary) employerResponse {
	return employerResponse{
		ID:                  s.ID,
		Name:                s.Name,
		HeadquartersAddress: s.HeadquartersAddress,
		Description:         s.Description,
		StartDate:           s.StartDate.Format(domain.DateLayout),
		EndDate:             graph.FormatEndDate(s.EndDate),
	}
}

func toVisualizationResponse(root *domain.Employer, g *graph.Subgraph) visualizationResponse {
	data := graphData{Nodes: g.Nodes, Edges: g.Edges}
	if data.Nodes == nil {
		data.Nodes = []graph.NodeView{}
	}
	if data.Edges == nil {
		data.Edges = []graph.EdgeView{}
	}
	return visualizationResponse{
		Employer: toEmployerResponse(root),
		EndTime:  graph.FormatEndDate(root.EndDate),
		Data:     data,
	}
}
