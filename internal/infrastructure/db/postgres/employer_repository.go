package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/orgodyssey/odyssey/internal/core/domain"
)

const (
	employerColumns = `id, name, headquarters_address, description, start_date, end_date`

	insertEmployerSQL = `
        INSERT INTO employer (name, headquarters_address, description, start_date, end_date)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + employerColumns

	updateEmployerSQL = `
        UPDATE employer
           SET headquarters_address = $1,
               description = $2,
               start_date = $3,
               end_date = $4
         WHERE id = $5`

	deleteEmployerSQL = `DELETE FROM employer WHERE id = $1`

	findEmployerByNameSQL = `
        SELECT ` + employerColumns + `
          FROM employer
         WHERE name = $1
         LIMIT 1`

	listEmployersSQL = `
        SELECT ` + employerColumns + `
          FROM employer
         ORDER BY name`

	countEmployersSQL = `SELECT count(*) FROM employer`
)

// EmployerRepository stores employers in the employer table.
type EmployerRepository struct {
	pool Queryer
}

func NewEmployerRepository(pool Queryer) *EmployerRepository {
	return &EmployerRepository{pool: pool}
}

func (r *EmployerRepository) Create(ctx context.Context, e *domain.Employer) (*domain.Employer, error) {
	exec := QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, insertEmployerSQL,
		e.Name, e.HeadquartersAddress, e.Description, e.StartDate, nullableTime(e.EndDate))

	created, err := scanEmployer(row)
	if err != nil {
		return nil, translateEmployerError(err)
	}
	return created, nil
}

func (r *EmployerRepository) Update(ctx context.Context, e *domain.Employer) error {
	exec := QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, updateEmployerSQL,
		e.HeadquartersAddress, e.Description, e.StartDate, nullableTime(e.EndDate), e.ID)
	if err != nil {
		return fmt.Errorf("update employer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEmployerNotFound
	}
	return nil
}

// Delete removes the employer. Edges where it is the child go with it
// through ON DELETE CASCADE; edges where it is the parent block the delete.
func (r *EmployerRepository) Delete(ctx context.Context, id int64) error {
	exec := QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, deleteEmployerSQL, id)
	if err != nil {
		return translateEmployerError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEmployerNotFound
	}
	return nil
}

func (r *EmployerRepository) FindByName(ctx context.Context, name string) (*domain.Employer, error) {
	exec := QueryerFromContext(ctx, r.pool)
	found, err := scanEmployer(exec.QueryRow(ctx, findEmployerByNameSQL, name))
	if err != nil {
		return nil, translateEmployerError(err)
	}
	return found, nil
}

func (r *EmployerRepository) List(ctx context.Context) ([]*domain.Employer, error) {
	exec := QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, listEmployersSQL)
	if err != nil {
		return nil, fmt.Errorf("list employers: %w", err)
	}
	defer rows.Close()

	var out []*domain.Employer
	for rows.Next() {
		e, err := scanEmployer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employer: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list employers: %w", err)
	}
	return out, nil
}

func (r *EmployerRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := QueryerFromContext(ctx, r.pool).QueryRow(ctx, countEmployersSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count employers: %w", err)
	}
	return n, nil
}

func scanEmployer(row pgx.Row) (*domain.Employer, error) {
	var (
		e       domain.Employer
		endDate sql.NullTime
	)
	err := row.Scan(&e.ID, &e.Name, &e.HeadquartersAddress, &e.Description, &e.StartDate, &endDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEmployerNotFound
		}
		return nil, err
	}
	if endDate.Valid {
		end := endDate.Time
		e.EndDate = &end
	}
	return &e, nil
}

func translateEmployerError(err error) error {
	switch pgCode(err) {
	case uniqueViolation:
		return domain.ErrEmployerExists
	case foreignKeyViolation:
		return domain.ErrEmployerHasChildren
	}
	return err
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
