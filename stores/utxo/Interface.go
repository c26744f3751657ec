// Package utxo defines the interface for the unspent output store, the single
// source of truth for circulating value. Implementations in the memory and sql
// subpackages share one contract: status transitions follow the lifecycle
// machine in status.go, and Spend applies all spends or none.
package utxo

import (
	"context"
	"time"

	"github.com/lifafa03/USDw-stablecoin-sub000/model"
)

// UTXO is a single unspent output record.
type UTXO struct {
	ID           string
	TxID         string
	Vout         uint32
	Owner        string
	Amount       uint64
	Status       Status
	Jurisdiction string
	KYCTag       string
	CreatedAt    time.Time

	// SpendingTxID is set when Status is StatusSpent.
	SpendingTxID string

	// FreezeReason and SeizeReason carry the governance action id that moved
	// the output into its current status.
	FreezeReason string
	SeizeReason  string
}

// Spend marks the intent to spend a single utxo in a transaction.
type Spend struct {
	UtxoID       string
	SpendingTxID string
	SpendingTime time.Time
}

// ReserveState is the attested backing for the asset.
type ReserveState struct {
	Amount     uint64
	AttestedAt time.Time
	AttestedBy string
}

// Store is the interface for all utxo store implementations.
type Store interface {
	// Health returns the health of the store.
	Health(ctx context.Context, checkLiveness bool) (int, string, error)

	// Create stores a new utxo in active status.
	Create(ctx context.Context, u *UTXO) error

	// Get returns the utxo with the given id.
	Get(ctx context.Context, id string) (*UTXO, error)

	// GetByOwner returns all non-terminal utxos held by owner.
	GetByOwner(ctx context.Context, owner string) ([]*UTXO, error)

	// Spend marks the given utxos as spent. Either all spends are applied or
	// none are.
	Spend(ctx context.Context, spends []*Spend) error

	// UnSpend reverses spends applied by a failed state transition.
	UnSpend(ctx context.Context, spends []*Spend) error

	// Freeze moves an active utxo to frozen.
	Freeze(ctx context.Context, id string, reason string) error

	// UnFreeze moves a frozen utxo back to active.
	UnFreeze(ctx context.Context, id string) error

	// Seize moves an active or frozen utxo to seized.
	Seize(ctx context.Context, id string, reason string) error

	// Scan calls fn for every utxo in the store, in no particular order. Used
	// by the audit layer. Scanning stops at the first error.
	Scan(ctx context.Context, fn func(u *UTXO) error) error

	// TotalSupply returns the sum of all active and frozen utxo amounts.
	TotalSupply(ctx context.Context) (uint64, error)

	// VerifiedReserves returns the last attested reserve state.
	VerifiedReserves(ctx context.Context) (*ReserveState, error)

	// SetVerifiedReserves records a new reserve attestation.
	SetVerifiedReserves(ctx context.Context, state *ReserveState) error

	// SaveTransaction appends a processed transaction to the history log.
	SaveTransaction(ctx context.Context, rec *model.TxRecord) error

	// GetTransaction returns the transaction record with the given id.
	GetTransaction(ctx context.Context, txID string) (*model.TxRecord, error)

	// ListTransactionsByOwner returns up to limit transaction records touching
	// owner, newest first, starting at offset.
	ListTransactionsByOwner(ctx context.Context, owner string, limit, offset int) ([]*model.TxRecord, error)
}
