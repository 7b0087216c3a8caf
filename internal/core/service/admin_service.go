package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/orgodyssey/odyssey/internal/core/domain"
	"github.com/orgodyssey/odyssey/internal/core/ports"
)

// AdminService promotes accounts and summarizes the store for admins.
type AdminService struct {
	users     ports.UserRepository
	employers ports.EmployerRepository
	relations ports.RelationRepository
	tx        ports.TxManager
	log       zerolog.Logger
}

func NewAdminService(
	users ports.UserRepository,
	employers ports.EmployerRepository,
	relations ports.RelationRepository,
	tx ports.TxManager,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{users: users, employers: employers, relations: relations, tx: tx, log: log}
}

// GrantAdmin sets the admin flag on the account with email. Granting to an
// existing admin is a no-op.
func (s *AdminService) GrantAdmin(ctx context.Context, actor *domain.User, email string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	email = normalizeEmail(email)

	err := s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		return s.users.GrantAdmin(ctx, email)
	})
	if err != nil {
		return err
	}

	s.log.Info().Int64("actor_id", actor.ID).Str("email", email).Msg("admin granted")
	return nil
}

// Overview counts employers, relations, users and admins.
func (s *AdminService) Overview(ctx context.Context, actor *domain.User) (*ports.Overview, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	var out ports.Overview
	err := s.tx.WithinReadOnly(ctx, func(ctx context.Context) error {
		var err error
		if out.Employers, err = s.employers.Count(ctx); err != nil {
			return err
		}
		if out.Relations, err = s.relations.Count(ctx); err != nil {
			return err
		}
		out.Users, out.Admins, err = s.users.Count(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser loads the account behind session so the admin flag is always
// read fresh rather than trusted from the token.
func (s *AdminService) CurrentUser(ctx context.Context, session ports.Session) (*domain.User, error) {
	var user *domain.User
	err := s.tx.WithinReadOnly(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.users.FindByID(ctx, session.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
