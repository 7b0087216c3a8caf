package ports

import (
	"context"

	"github.com/orgodyssey/odyssey/internal/core/domain"
)

// EmployerRepository defines persistence operations for employers.
type EmployerRepository interface {
	// Create inserts e and returns it with its assigned id.
	// Returns domain.ErrEmployerExists on a name clash.
	Create(ctx context.Context, e *domain.Employer) (*domain.Employer, error)
	// Update rewrites every mutable column of the employer with e.ID.
	Update(ctx context.Context, e *domain.Employer) error
	// Delete removes the employer and every edge where it is the child.
	Delete(ctx context.Context, id int64) error
	FindByName(ctx context.Context, name string) (*domain.Employer, error)
	// List returns all employers ordered by name.
	List(ctx context.Context) ([]*domain.Employer, error)
	Count(ctx context.Context) (int64, error)
}

// RelationRepository defines persistence operations for the directed
// parent → child relation.
type RelationRepository interface {
	Add(ctx context.Context, r domain.Relation) error
	Exists(ctx context.Context, r domain.Relation) (bool, error)
	// HasChildren reports whether parentID has at least one outgoing edge.
	HasChildren(ctx context.Context, parentID int64) (bool, error)
	List(ctx context.Context) ([]domain.Relation, error)
	Count(ctx context.Context) (int64, error)
}
