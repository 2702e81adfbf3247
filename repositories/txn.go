package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxnRunner executes fn inside a single multi-document transaction. The
// primary-link reassignment, owner propagation and cascade delete flows all
// run through it; a partial write in any of them is a data-integrity bug.
type TxnRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type mongoTxnRunner struct {
	client *mongo.Client
}

func NewTxnRunner(client *mongo.Client) TxnRunner {
	return &mongoTxnRunner{client: client}
}

func (r *mongoTxnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %v", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}
