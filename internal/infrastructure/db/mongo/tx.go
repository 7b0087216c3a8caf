package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxManager runs units of work in a client session. Read-write work runs in a
// multi-document transaction, which needs a replica set; with transactions
// disabled it runs the work directly.
type TxManager struct {
	client       *mongo.Client
	transactions bool
}

func NewTxManager(client *mongo.Client, transactions bool) *TxManager {
	return &TxManager{client: client, transactions: transactions}
}

func (m *TxManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if !m.transactions || mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	sess, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongo: start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (m *TxManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if !m.transactions || mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	sess, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongo: start session: %w", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		return fn(sc)
	})
}
