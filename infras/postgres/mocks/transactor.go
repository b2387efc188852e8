package mocks

import (
	"context"
	"hotel/infras/postgres"
)

type passthroughTransactor struct{}

// WithTransaction implements postgres.Transactor by running fn with a nil transaction.
// Repository mocks ignore the handle, so services can be tested without a database.
func (passthroughTransactor) WithTransaction(ctx context.Context, fn postgres.TxFunc) error {
	return postgres.ClassifyError(fn(ctx, nil))
}

func NewTransactor() postgres.Transactor {
	return passthroughTransactor{}
}
