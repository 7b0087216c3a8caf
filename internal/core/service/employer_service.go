package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/orgodyssey/odyssey/internal/core/domain"
	"github.com/orgodyssey/odyssey/internal/core/graph"
	"github.com/orgodyssey/odyssey/internal/core/ports"
)

// EmployerService implements employer CRUD, relations and the visualization.
type EmployerService struct {
	employers ports.EmployerRepository
	relations ports.RelationRepository
	tx        ports.TxManager
	logger    zerolog.Logger
}

func NewEmployerService(
	employers ports.EmployerRepository,
	relations ports.RelationRepository,
	tx ports.TxManager,
	logger zerolog.Logger,
) *EmployerService {
	return &EmployerService{employers: employers, relations: relations, tx: tx, logger: logger}
}

// CreateEmployer inserts a new employer. Names are unique.
func (s *EmployerService) CreateEmployer(ctx context.Context, actor *domain.User, in ports.CreateEmployerInput) (*domain.Employer, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	e := &domain.Employer{
		Name:                strings.TrimSpace(in.Name),
		HeadquartersAddress: strings.TrimSpace(in.HeadquartersAddress),
		Description:         in.Description,
		StartDate:           in.StartDate,
		EndDate:             in.EndDate,
	}
	if e.Name == "" || e.HeadquartersAddress == "" {
		return nil, domain.ErrInvalidEmployer
	}
	if err := e.ValidateDates(); err != nil {
		return nil, err
	}

	var created *domain.Employer
	err := s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		_, err := s.employers.FindByName(ctx, e.Name)
		switch {
		case err == nil:
			return domain.ErrEmployerExists
		case !errors.Is(err, domain.ErrEmployerNotFound):
			return err
		}
		created, err = s.employers.Create(ctx, e)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("employer_id", created.ID).Str("name", created.Name).Msg("employer created")
	return created, nil
}

// EditEmployer applies every supplied, non-empty field and reports whether the
// stored record changed. Nothing is written when it did not.
func (s *EmployerService) EditEmployer(ctx context.Context, actor *domain.User, in ports.EditEmployerInput) (bool, error) {
	if !actor.IsAdmin() {
		return false, domain.ErrForbidden
	}

	changed := false
	err := s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		e, err := s.employers.FindByName(ctx, strings.TrimSpace(in.Name))
		if err != nil {
			return err
		}

		changed = applyEdit(e, in)
		if !changed {
			return nil
		}
		if err := e.ValidateDates(); err != nil {
			return err
		}
		return s.employers.Update(ctx, e)
	})
	if err != nil {
		return false, err
	}

	if changed {
		s.logger.Info().Str("name", in.Name).Msg("employer updated")
	}
	return changed, nil
}

func applyEdit(e *domain.Employer, in ports.EditEmployerInput) bool {
	changed := false
	if in.HeadquartersAddress != nil && *in.HeadquartersAddress != "" && *in.HeadquartersAddress != e.HeadquartersAddress {
		e.HeadquartersAddress = *in.HeadquartersAddress
		changed = true
	}
	if in.Description != nil && *in.Description != "" && *in.Description != e.Description {
		e.Description = *in.Description
		changed = true
	}
	if in.StartDate != nil && !in.StartDate.Equal(e.StartDate) {
		e.StartDate = *in.StartDate
		changed = true
	}
	if in.EndDate != nil && (e.EndDate == nil || !in.EndDate.Equal(*e.EndDate)) {
		end := *in.EndDate
		e.EndDate = &end
		changed = true
	}
	return changed
}

// DeleteEmployer removes an employer that has no children.
func (s *EmployerService) DeleteEmployer(ctx context.Context, actor *domain.User, name string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}

	err := s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		e, err := s.employers.FindByName(ctx, strings.TrimSpace(name))
		if err != nil {
			return err
		}
		hasChildren, err := s.relations.HasChildren(ctx, e.ID)
		if err != nil {
			return err
		}
		if hasChildren {
			return domain.ErrEmployerHasChildren
		}
		return s.employers.Delete(ctx, e.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("name", name).Msg("employer deleted")
	return nil
}

// AddRelation records parent as a parent of child.
func (s *EmployerService) AddRelation(ctx context.Context, actor *domain.User, in ports.RelationInput) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}

	err := s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		parent, err := s.findEndpoint(ctx, in.ParentName)
		if err != nil {
			return err
		}
		child, err := s.findEndpoint(ctx, in.ChildName)
		if err != nil {
			return err
		}
		if parent.ID == child.ID {
			return domain.ErrSelfRelation
		}

		rel := domain.Relation{ParentID: parent.ID, ChildID: child.ID}
		exists, err := s.relations.Exists(ctx, rel)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrRelationExists
		}
		return s.relations.Add(ctx, rel)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("parent", in.ParentName).Str("child", in.ChildName).Msg("relation added")
	return nil
}

func (s *EmployerService) findEndpoint(ctx context.Context, name string) (*domain.Employer, error) {
	e, err := s.employers.FindByName(ctx, strings.TrimSpace(name))
	if errors.Is(err, domain.ErrEmployerNotFound) {
		return nil, domain.ErrRelationEndpointNotFound
	}
	return e, err
}

// ListEmployers returns every employer with its list-view description.
func (s *EmployerService) ListEmployers(ctx context.Context) ([]ports.EmployerSummary, error) {
	var all []*domain.Employer
	err := s.tx.WithinReadOnly(ctx, func(ctx context.Context) error {
		var err error
		all, err = s.employers.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]ports.EmployerSummary, len(all))
	for i, e := range all {
		out[i] = ports.EmployerSummary{
			ID:                  e.ID,
			Name:                e.Name,
			HeadquartersAddress: e.HeadquartersAddress,
			Description:         graph.ListDescription(e.Description),
			StartDate:           e.StartDate,
			EndDate:             e.EndDate,
		}
	}
	return out, nil
}

// Visualize builds the hierarchy around the employer named rootName.
func (s *EmployerService) Visualize(ctx context.Context, rootName string) (*domain.Employer, *graph.Subgraph, error) {
	var (
		root      *domain.Employer
		employers []*domain.Employer
		relations []domain.Relation
	)
	err := s.tx.WithinReadOnly(ctx, func(ctx context.Context) error {
		var err error
		if root, err = s.employers.FindByName(ctx, strings.TrimSpace(rootName)); err != nil {
			return err
		}
		if employers, err = s.employers.List(ctx); err != nil {
			return err
		}
		relations, err = s.relations.List(ctx)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	idx := graph.NewIndex(employers, relations)
	return root, graph.BuildSubgraph(root, idx, &graph.DefaultRootHints), nil
}
