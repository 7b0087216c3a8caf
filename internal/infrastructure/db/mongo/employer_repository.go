package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/orgodyssey/odyssey/internal/core/domain"
)

type employerDoc struct {
	ID                  int64      `bson:"_id"`
	Name                string     `bson:"name"`
	HeadquartersAddress string     `bson:"headquarters_address"`
	Description         string     `bson:"description"`
	StartDate           time.Time  `bson:"start_date"`
	EndDate             *time.Time `bson:"end_date"`
}

func (d *employerDoc) toDomain() *domain.Employer {
	e := &domain.Employer{
		ID:                  d.ID,
		Name:                d.Name,
		HeadquartersAddress: d.HeadquartersAddress,
		Description:         d.Description,
		StartDate:           d.StartDate.UTC(),
	}
	if d.EndDate != nil {
		end := d.EndDate.UTC()
		e.EndDate = &end
	}
	return e
}

type EmployerRepository struct {
	col       *mongo.Collection
	relations *mongo.Collection
	ids       *counters
}

func NewEmployerRepository(db *mongo.Database, ids *counters) *EmployerRepository {
	return &EmployerRepository{
		col:       db.Collection(collectionEmployers),
		relations: db.Collection(collectionRelations),
		ids:       ids,
	}
}

func (r *EmployerRepository) Create(ctx context.Context, e *domain.Employer) (*domain.Employer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.ids.next(ctx, collectionEmployers)
	if err != nil {
		return nil, err
	}

	doc := employerDoc{
		ID:                  id,
		Name:                e.Name,
		HeadquartersAddress: e.HeadquartersAddress,
		Description:         e.Description,
		StartDate:           e.StartDate,
		EndDate:             e.EndDate,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmployerExists
		}
		return nil, fmt.Errorf("insert employer: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *EmployerRepository) Update(ctx context.Context, e *domain.Employer) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, e.ID, bson.M{"$set": bson.M{
		"headquarters_address": e.HeadquartersAddress,
		"description":          e.Description,
		"start_date":           e.StartDate,
		"end_date":             e.EndDate,
	}})
	if err != nil {
		return fmt.Errorf("update employer: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrEmployerNotFound
	}
	return nil
}

// Delete removes the employer and the edges where it is the child.
func (r *EmployerRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete employer: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrEmployerNotFound
	}
	if _, err := r.relations.DeleteMany(ctx, bson.M{"child_id": id}); err != nil {
		return fmt.Errorf("delete parent edges: %w", err)
	}
	return nil
}

func (r *EmployerRepository) FindByName(ctx context.Context, name string) (*domain.Employer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc employerDoc
	if err := r.col.FindOne(ctx, bson.M{"name": name}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEmployerNotFound
		}
		return nil, fmt.Errorf("find employer: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *EmployerRepository) List(ctx context.Context) ([]*domain.Employer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list employers: %w", err)
	}
	var docs []employerDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode employers: %w", err)
	}

	out := make([]*domain.Employer, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *EmployerRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *EmployerRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
