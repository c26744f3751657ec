// Package validator implements the transaction validation pipeline. A
// transaction passes five ordered stages: structural checks, policy
// resolution, input resolution against the utxo store, compliance checks and
// business rules. Validation is read only: a rejected transaction leaves no
// trace in any store.
package validator

import (
	"context"

	"github.com/lifafa03/USDw-stablecoin-sub000/model"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/policy"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/utxo"
)

// NormalizedTx is the output of a successful validation: the transaction plus
// everything the executor needs to apply it without re-deriving state.
type NormalizedTx struct {
	Tx     model.Transaction
	Policy *policy.Policy

	// Inputs are the resolved utxos consumed by the transaction, in input
	// order.
	Inputs []*utxo.UTXO

	// Spends are the spend intents for Inputs.
	Spends []*utxo.Spend

	// NewUtxos are the outputs to create on commit.
	NewUtxos []*utxo.UTXO

	// Amount is the total value moved by the transaction.
	Amount uint64

	// DailySpend is the per-party net amount to charge against daily limits on
	// commit.
	DailySpend map[string]uint64

	// Owners is every party touched by the transaction.
	Owners []string
}

// Interface defines the validation functionality exposed to the ledger
// service and the governance manager.
type Interface interface {
	// Health performs health checks on the validator implementation.
	Health(ctx context.Context, checkLiveness bool) (int, string, error)

	// Validate runs the full validation pipeline and returns the normalized
	// transaction on success. It never mutates state.
	Validate(ctx context.Context, tx model.Transaction, opts ...Option) (*NormalizedTx, error)
}
