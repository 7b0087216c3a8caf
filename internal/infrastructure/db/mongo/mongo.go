package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/orgodyssey/odyssey/internal/infrastructure/config"
)

const defaultTimeout = 10 * time.Second

// Collection names mirror the Postgres tables.
const (
	collectionEmployers = "employer"
	collectionRelations = "employer_relation"
	collectionUsers     = "user"
	collectionCounters  = "counters"
)

// Connect opens a client for cfg.URI, pings the primary and returns the
// client with the configured database.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetAppName("odyssey")
	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// Stores bundles the repositories of one database.
type Stores struct {
	Employers *EmployerRepository
	Relations *RelationRepository
	Users     *UserRepository
}

func NewStores(db *mongo.Database) *Stores {
	counters := newCounters(db)
	return &Stores{
		Employers: NewEmployerRepository(db, counters),
		Relations: NewRelationRepository(db),
		Users:     NewUserRepository(db, counters),
	}
}

// EnsureIndexes creates the unique indexes every repository relies on.
func (s *Stores) EnsureIndexes(ctx context.Context) error {
	if err := s.Employers.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("employer indexes: %w", err)
	}
	if err := s.Relations.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("relation indexes: %w", err)
	}
	if err := s.Users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	return nil
}
