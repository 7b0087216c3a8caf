package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/orgodyssey/odyssey/internal/core/domain"
)

type relationDoc struct {
	ParentID int64 `bson:"parent_id"`
	ChildID  int64 `bson:"child_id"`
}

type RelationRepository struct {
	col *mongo.Collection
}

func NewRelationRepository(db *mongo.Database) *RelationRepository {
	return &RelationRepository{col: db.Collection(collectionRelations)}
}

func (r *RelationRepository) Add(ctx context.Context, rel domain.Relation) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, relationDoc{ParentID: rel.ParentID, ChildID: rel.ChildID}); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrRelationExists
		}
		return fmt.Errorf("insert relation: %w", err)
	}
	return nil
}

func (r *RelationRepository) Exists(ctx context.Context, rel domain.Relation) (bool, error) {
	return r.any(ctx, bson.M{"parent_id": rel.ParentID, "child_id": rel.ChildID})
}

func (r *RelationRepository) HasChildren(ctx context.Context, parentID int64) (bool, error) {
	return r.any(ctx, bson.M{"parent_id": parentID})
}

func (r *RelationRepository) any(ctx context.Context, filter bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count relations: %w", err)
	}
	return n > 0, nil
}

func (r *RelationRepository) List(ctx context.Context) ([]domain.Relation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "parent_id", Value: 1}, {Key: "child_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list relations: %w", err)
	}
	var docs []relationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode relations: %w", err)
	}

	out := make([]domain.Relation, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Relation{ParentID: d.ParentID, ChildID: d.ChildID})
	}
	return out, nil
}

func (r *RelationRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.col.CountDocuments(ctx, bson.M{})
}

// EnsureIndexes makes each directed edge unique and supports parent lookups.
func (r *RelationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "parent_id", Value: 1}, {Key: "child_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "child_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
