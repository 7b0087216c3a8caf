package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/orgodyssey/odyssey/internal/core/domain"
)

const (
	userColumns = `id, email, password_hash, admin, email_confirmed, created_at`

	insertUserSQL = `
        INSERT INTO "user" (email, password_hash, admin, email_confirmed)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + userColumns

	findUserByEmailSQL = `SELECT ` + userColumns + ` FROM "user" WHERE email = $1`
	findUserByIDSQL    = `SELECT ` + userColumns + ` FROM "user" WHERE id = $1`

	confirmUserSQL = `UPDATE "user" SET email_confirmed = TRUE WHERE email = $1`
	grantAdminSQL  = `UPDATE "user" SET admin = TRUE WHERE email = $1`

	deleteUnconfirmedUserSQL = `DELETE FROM "user" WHERE email = $1 AND NOT email_confirmed`

	countUsersSQL = `SELECT count(*), count(*) FILTER (WHERE admin) FROM "user"`
)

// UserRepository stores accounts in the "user" table.
type UserRepository struct {
	pool Queryer
}

func NewUserRepository(pool Queryer) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	row := QueryerFromContext(ctx, r.pool).QueryRow(ctx, insertUserSQL,
		u.Email, u.PasswordHash, u.Admin, u.EmailConfirmed)

	created, err := scanUser(row)
	if err != nil {
		if pgCode(err) == uniqueViolation {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(QueryerFromContext(ctx, r.pool).QueryRow(ctx, findUserByEmailSQL, email))
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(QueryerFromContext(ctx, r.pool).QueryRow(ctx, findUserByIDSQL, id))
}

func (r *UserRepository) MarkEmailConfirmed(ctx context.Context, email string) error {
	return r.setFlag(ctx, confirmUserSQL, email)
}

func (r *UserRepository) GrantAdmin(ctx context.Context, email string) error {
	return r.setFlag(ctx, grantAdminSQL, email)
}

func (r *UserRepository) DeleteUnconfirmed(ctx context.Context, email string) error {
	if _, err := QueryerFromContext(ctx, r.pool).Exec(ctx, deleteUnconfirmedUserSQL, email); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (r *UserRepository) setFlag(ctx context.Context, query, email string) error {
	tag, err := QueryerFromContext(ctx, r.pool).Exec(ctx, query, email)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, int64, error) {
	var total, admins int64
	if err := QueryerFromContext(ctx, r.pool).QueryRow(ctx, countUsersSQL).Scan(&total, &admins); err != nil {
		return 0, 0, fmt.Errorf("count users: %w", err)
	}
	return total, admins, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Admin, &u.EmailConfirmed, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
