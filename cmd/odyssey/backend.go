package main

import (
	"context"
	"fmt"

	"github.com/orgodyssey/odyssey/internal/core/ports"
	"github.com/orgodyssey/odyssey/internal/infrastructure/config"
	mongostore "github.com/orgodyssey/odyssey/internal/infrastructure/db/mongo"
	"github.com/orgodyssey/odyssey/internal/infrastructure/db/postgres"
	"github.com/orgodyssey/odyssey/internal/infrastructure/http/handlers"
)

// backend is one opened storage driver.
type backend struct {
	employers ports.EmployerRepository
	relations ports.RelationRepository
	users     ports.UserRepository
	tx        ports.TxManager
	checks    map[string]handlers.Check
	close     func()
}

func openBackend(ctx context.Context, a *app) (*backend, error) {
	switch a.cfg.StoreDriver {
	case config.DriverPostgres:
		return openPostgres(ctx, a)
	case config.DriverMongo:
		return openMongo(ctx, a)
	}
	return nil, fmt.Errorf("unknown store driver %q", a.cfg.StoreDriver)
}

func openPostgres(ctx context.Context, a *app) (*backend, error) {
	pool, err := postgres.Connect(ctx, a.cfg.Postgres)
	if err != nil {
		return nil, err
	}
	a.log.Info().Str("driver", config.DriverPostgres).Msg("store connected")

	return &backend{
		employers: postgres.NewEmployerRepository(pool),
		relations: postgres.NewRelationRepository(pool),
		users:     postgres.NewUserRepository(pool),
		tx:        postgres.NewTxManager(pool),
		checks:    map[string]handlers.Check{"postgres": handlers.PostgresCheck(pool)},
		close:     pool.Close,
	}, nil
}

func openMongo(ctx context.Context, a *app) (*backend, error) {
	client, db, err := mongostore.Connect(ctx, a.cfg.Mongo)
	if err != nil {
		return nil, err
	}

	stores := mongostore.NewStores(db)
	if err := stores.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	a.log.Info().
		Str("driver", config.DriverMongo).
		Bool("transactions", a.cfg.Mongo.Transactions).
		Msg("store connected")

	return &backend{
		employers: stores.Employers,
		relations: stores.Relations,
		users:     stores.Users,
		tx:        mongostore.NewTxManager(client, a.cfg.Mongo.Transactions),
		checks:    map[string]handlers.Check{"mongo": handlers.MongoCheck(client)},
		close: func() {
			_ = client.Disconnect(context.Background())
		},
	}, nil
}
