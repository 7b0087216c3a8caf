package handler

import (
	"github.com/orgodyssey/odyssey/internal/core/domain"
	"github.com/orgodyssey/odyssey/internal/core/graph"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse carries the human-readable outcome of a mutation.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Account ---

type registerRequest struct {
	Email           string `json:"email"            validate:"required,email"`
	Password        string `json:"password"         validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      *domain.User `json:"user"`
}

type addAdminRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// --- Employers ---

type createEmployerRequest struct {
	Name                string `json:"employer_name"        validate:"required,max=255"`
	HeadquartersAddress string `json:"headquarters_address" validate:"required,max=255"`
	Description         string `json:"description"`
	StartDate           string `json:"start_date"           validate:"required,datetime=2006-01-02"`
	EndDate             string `json:"end_date"             validate:"omitempty,datetime=2006-01-02"`
}

// editEmployerRequest leaves fields it does not carry unchanged.
type editEmployerRequest struct {
	Name                string  `json:"employer_name"        validate:"required"`
	HeadquartersAddress *string `json:"headquarters_address" validate:"omitempty,max=255"`
	Description         *string `json:"description"`
	StartDate           *string `json:"start_date"           validate:"omitempty,datetime=2006-01-02"`
	EndDate             *string `json:"end_date"             validate:"omitempty,datetime=2006-01-02"`
}

type deleteEmployerRequest struct {
	Name string `json:"employer_name" validate:"required"`
}

type relationRequest struct {
	ParentName string `json:"parent_name" validate:"required"`
	ChildName  string `json:"child_name"  validate:"required"`
}

type employerResponse struct {
	ID                  int64  `json:"id"`
	Name                string `json:"employer_name"`
	HeadquartersAddress string `json:"headquarters_address"`
	Description         string `json:"description"`
	StartDate           string `json:"start_date"`
	EndDate             string `json:"end_date"`
}

type employerCreatedResponse struct {
	Message  string           `json:"message"`
	Employer employerResponse `json:"employer"`
}

type employerListResponse struct {
	Employers []employerResponse `json:"employers"`
}

// --- Visualization ---

type searchRequest struct {
	Search string `json:"search" validate:"required"`
}

type graphData struct {
	Nodes []graph.NodeView `json:"nodes"`
	Edges []graph.EdgeView `json:"edges"`
}

type visualizationResponse struct {
	Employer employerResponse `json:"employer"`
	EndTime  string           `json:"end_time"`
	Data     graphData        `json:"data"`
}

// --- Admin ---

type overviewResponse struct {
	Employers int64 `json:"employers"`
	Relations int64 `json:"relations"`
	Users     int64 `json:"users"`
	Admins    int64 `json:"admins"`
}
