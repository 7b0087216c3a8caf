package ports

import (
	"context"
	"time"

	"github.com/orgodyssey/odyssey/internal/core/domain"
	"github.com/orgodyssey/odyssey/internal/core/graph"
)

// CreateEmployerInput carries all data needed to create an employer.
type CreateEmployerInput struct {
	Name                string
	HeadquartersAddress string
	Description         string
	StartDate           time.Time
	EndDate             *time.Time // nil = still active
}

// EditEmployerInput identifies an employer by name. Nil fields are left unchanged.
type EditEmployerInput struct {
	Name                string
	HeadquartersAddress *string
	Description         *string
	StartDate           *time.Time
	EndDate             *time.Time
}

// RelationInput names the two endpoints of a directed edge.
type RelationInput struct {
	ParentName string
	ChildName  string
}

// EmployerSummary is the list-view rendering of an employer.
type EmployerSummary struct {
	ID                  int64
	Name                string
	HeadquartersAddress string
	Description         string // normalized and truncated for the list
	StartDate           time.Time
	EndDate             *time.Time
}

// EmployerService defines use-case operations for employers and relations.
// Mutations require an admin actor and return domain.ErrForbidden otherwise.
type EmployerService interface {
	CreateEmployer(ctx context.Context, actor *domain.User, in CreateEmployerInput) (*domain.Employer, error)
	// EditEmployer reports whether any stored value changed.
	EditEmployer(ctx context.Context, actor *domain.User, in EditEmployerInput) (bool, error)
	DeleteEmployer(ctx context.Context, actor *domain.User, name string) error
	AddRelation(ctx context.Context, actor *domain.User, in RelationInput) error
	ListEmployers(ctx context.Context) ([]EmployerSummary, error)
	Visualize(ctx context.Context, rootName string) (*domain.Employer, *graph.Subgraph, error)
}
