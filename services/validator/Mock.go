package validator

import (
	"context"
	"net/http"

	"github.com/lifafa03/USDw-stablecoin-sub000/model"
)

// check that the mock validator implements the Interface
var _ Interface = &MockValidator{}

// MockValidator is a configurable validator for tests. The zero value accepts
// every transaction and returns an empty normalized transaction.
type MockValidator struct {
	ValidateFunc func(ctx context.Context, tx model.Transaction, opts ...Option) (*NormalizedTx, error)
	ValidateErr  error
}

func (m *MockValidator) Health(_ context.Context, _ bool) (int, string, error) {
	return http.StatusOK, "MockValidator", nil
}

func (m *MockValidator) Validate(ctx context.Context, tx model.Transaction, opts ...Option) (*NormalizedTx, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, tx, opts...)
	}

	if m.ValidateErr != nil {
		return nil, m.ValidateErr
	}

	return &NormalizedTx{Tx: tx, DailySpend: map[string]uint64{}}, nil
}
