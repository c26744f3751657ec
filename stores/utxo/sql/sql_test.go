package sql

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/lifafa03/USDw-stablecoin-sub000/errors"
	"github.com/lifafa03/USDw-stablecoin-sub000/model"
	"github.com/lifafa03/USDw-stablecoin-sub000/settings"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/utxo"
	"github.com/lifafa03/USDw-stablecoin-sub000/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	storeURL, err := url.Parse("sqlitememory:///test")
	require.NoError(t, err)

	store, err := New(ulogger.NewVerboseTestLogger(t), storeURL, settings.NewSettings())
	require.NoError(t, err)

	return store
}

func newTestUtxo(id, owner string, amount uint64) *utxo.UTXO {
	return &utxo.UTXO{
		ID:           id,
		TxID:         "tx-" + id,
		Owner:        owner,
		Amount:       amount,
		Status:       utxo.StatusActive,
		Jurisdiction: "US",
		CreatedAt:    time.Now().UTC(),
	}
}

func TestSQLCreateGetSpend(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Create(ctx, newTestUtxo("u1:0", "alice", 100)))

	u, err := store.Get(ctx, "u1:0")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Owner)
	assert.Equal(t, uint64(100), u.Amount)
	assert.Equal(t, utxo.StatusActive, u.Status)

	require.Error(t, store.Create(ctx, newTestUtxo("u1:0", "alice", 100)))

	spends := []*utxo.Spend{{UtxoID: "u1:0", SpendingTxID: "tx-2", SpendingTime: time.Now().UTC()}}
	require.NoError(t, store.Spend(ctx, spends))

	u, err = store.Get(ctx, "u1:0")
	require.NoError(t, err)
	assert.Equal(t, utxo.StatusSpent, u.Status)
	assert.Equal(t, "tx-2", u.SpendingTxID)

	err = store.Spend(ctx, []*utxo.Spend{{UtxoID: "u1:0", SpendingTxID: "tx-3", SpendingTime: time.Now().UTC()}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSpent))

	require.NoError(t, store.UnSpend(ctx, spends))

	u, err = store.Get(ctx, "u1:0")
	require.NoError(t, err)
	assert.Equal(t, utxo.StatusActive, u.Status)
}

func TestSQLSpendRollsBackOnFrozenInput(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Create(ctx, newTestUtxo("u1:0", "alice", 100)))
	require.NoError(t, store.Create(ctx, newTestUtxo("u2:0", "alice", 50)))
	require.NoError(t, store.Freeze(ctx, "u2:0", "act-1"))

	err := store.Spend(ctx, []*utxo.Spend{
		{UtxoID: "u1:0", SpendingTxID: "tx-3", SpendingTime: time.Now().UTC()},
		{UtxoID: "u2:0", SpendingTxID: "tx-3", SpendingTime: time.Now().UTC()},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrFrozen))

	u, err := store.Get(ctx, "u1:0")
	require.NoError(t, err)
	assert.Equal(t, utxo.StatusActive, u.Status)
}

func TestSQLGovernanceTransitions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Create(ctx, newTestUtxo("u1:0", "alice", 100)))

	require.NoError(t, store.Freeze(ctx, "u1:0", "act-1"))

	u, _ := store.Get(ctx, "u1:0")
	assert.Equal(t, utxo.StatusFrozen, u.Status)
	assert.Equal(t, "act-1", u.FreezeReason)

	require.NoError(t, store.UnFreeze(ctx, "u1:0"))

	u, _ = store.Get(ctx, "u1:0")
	assert.Equal(t, utxo.StatusActive, u.Status)
	assert.Empty(t, u.FreezeReason)

	require.NoError(t, store.Seize(ctx, "u1:0", "act-2"))

	u, _ = store.Get(ctx, "u1:0")
	assert.Equal(t, utxo.StatusSeized, u.Status)

	err := store.Seize(ctx, "u1:0", "act-3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSeized))
}

func TestSQLTotalSupplyAndReserves(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	total, err := store.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	require.NoError(t, store.Create(ctx, newTestUtxo("u1:0", "alice", 100)))
	require.NoError(t, store.Create(ctx, newTestUtxo("u2:0", "bob", 200)))
	require.NoError(t, store.Seize(ctx, "u2:0", "act-1"))

	total, err = store.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), total)

	state, err := store.VerifiedReserves(ctx)
	require.NoError(t, err)
	assert.Zero(t, state.Amount)

	now := time.Now().UTC()
	require.NoError(t, store.SetVerifiedReserves(ctx, &utxo.ReserveState{Amount: 500, AttestedAt: now, AttestedBy: "auditor-1"}))
	require.NoError(t, store.SetVerifiedReserves(ctx, &utxo.ReserveState{Amount: 700, AttestedAt: now, AttestedBy: "auditor-1"}))

	state, err = store.VerifiedReserves(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(700), state.Amount)
}

func TestSQLTransactionHistory(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Now().UTC().Truncate(time.Second)

	for i, rec := range []*model.TxRecord{
		{TxID: "tx-1", Kind: model.TxKindMint, Owners: []string{"alice"}, Amount: 100},
		{TxID: "tx-2", Kind: model.TxKindTransfer, Owners: []string{"alice", "bob"}, Amount: 40, Metadata: map[string]string{"memo": "rent"}},
		{TxID: "tx-3", Kind: model.TxKindBurn, Owners: []string{"bob"}, Amount: 10},
	} {
		rec.Timestamp = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, store.SaveTransaction(ctx, rec))
	}

	err := store.SaveTransaction(ctx, &model.TxRecord{TxID: "tx-1", Owners: []string{"alice"}, Timestamp: base})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTxAlreadyExists))

	rec, err := store.GetTransaction(ctx, "tx-2")
	require.NoError(t, err)
	assert.Equal(t, model.TxKindTransfer, rec.Kind)
	assert.Equal(t, []string{"alice", "bob"}, rec.Owners)
	assert.Equal(t, "rent", rec.Metadata["memo"])

	_, err = store.GetTransaction(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTxNotFound))

	records, err := store.ListTransactionsByOwner(ctx, "bob", 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "tx-3", records[0].TxID)
	assert.Equal(t, "tx-2", records[1].TxID)
}
