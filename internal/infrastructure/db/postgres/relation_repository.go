package postgres

import (
	"context"
	"fmt"

	"github.com/orgodyssey/odyssey/internal/core/domain"
)

const (
	insertRelationSQL = `INSERT INTO employer_relation (parent_id, child_id) VALUES ($1, $2)`

	relationExistsSQL = `
        SELECT EXISTS (
            SELECT 1 FROM employer_relation WHERE parent_id = $1 AND child_id = $2
        )`

	hasChildrenSQL = `SELECT EXISTS (SELECT 1 FROM employer_relation WHERE parent_id = $1)`

	listRelationsSQL = `SELECT parent_id, child_id FROM employer_relation ORDER BY parent_id, child_id`

	countRelationsSQL = `SELECT count(*) FROM employer_relation`
)

// RelationRepository stores directed parent → child edges.
type RelationRepository struct {
	pool Queryer
}

func NewRelationRepository(pool Queryer) *RelationRepository {
	return &RelationRepository{pool: pool}
}

func (r *RelationRepository) Add(ctx context.Context, rel domain.Relation) error {
	_, err := QueryerFromContext(ctx, r.pool).Exec(ctx, insertRelationSQL, rel.ParentID, rel.ChildID)
	switch pgCode(err) {
	case "":
	case uniqueViolation:
		return domain.ErrRelationExists
	case foreignKeyViolation:
		return domain.ErrRelationEndpointNotFound
	}
	if err != nil {
		return fmt.Errorf("insert relation: %w", err)
	}
	return nil
}

func (r *RelationRepository) Exists(ctx context.Context, rel domain.Relation) (bool, error) {
	var exists bool
	err := QueryerFromContext(ctx, r.pool).QueryRow(ctx, relationExistsSQL, rel.ParentID, rel.ChildID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("relation exists: %w", err)
	}
	return exists, nil
}

func (r *RelationRepository) HasChildren(ctx context.Context, parentID int64) (bool, error) {
	var exists bool
	if err := QueryerFromContext(ctx, r.pool).QueryRow(ctx, hasChildrenSQL, parentID).Scan(&exists); err != nil {
		return false, fmt.Errorf("has children: %w", err)
	}
	return exists, nil
}

func (r *RelationRepository) List(ctx context.Context) ([]domain.Relation, error) {
	rows, err := QueryerFromContext(ctx, r.pool).Query(ctx, listRelationsSQL)
	if err != nil {
		return nil, fmt.Errorf("list relations: %w", err)
	}
	defer rows.Close()

	var out []domain.Relation
	for rows.Next() {
		var rel domain.Relation
		if err := rows.Scan(&rel.ParentID, &rel.ChildID); err != nil {
			return nil, fmt.Errorf("scan relation: %w", err)
		}
		out = append(out, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list relations: %w", err)
	}
	return out, nil
}

func (r *RelationRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := QueryerFromContext(ctx, r.pool).QueryRow(ctx, countRelationsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count relations: %w", err)
	}
	return n, nil
}
