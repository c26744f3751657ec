package executor

import (
	"context"
	"testing"
	"time"

	"github.com/lifafa03/USDw-stablecoin-sub000/errors"
	"github.com/lifafa03/USDw-stablecoin-sub000/model"
	"github.com/lifafa03/USDw-stablecoin-sub000/services/validator"
	"github.com/lifafa03/USDw-stablecoin-sub000/settings"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/policy"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/utxo"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/utxo/memory"
	"github.com/lifafa03/USDw-stablecoin-sub000/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testHarness struct {
	store    *memory.Memory
	policies *policy.Engine
	executor *Executor
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	logger := ulogger.NewVerboseTestLogger(t)
	tSettings := settings.NewSettings()
	store := memory.New(logger)
	policies := policy.NewEngine(logger, tSettings)
	t.Cleanup(policies.Close)

	require.NoError(t, store.SetVerifiedReserves(context.Background(), &utxo.ReserveState{
		Amount:     1_000_000,
		AttestedAt: time.Now().UTC(),
		AttestedBy: "auditor-1",
	}))

	return &testHarness{
		store:    store,
		policies: policies,
		executor: New(logger, tSettings, store, policies),
	}
}

func normalizedTransfer(txID string) *validator.NormalizedTx {
	now := time.Now().UTC()

	return &validator.NormalizedTx{
		Tx: &model.Transfer{
			TxCommon: model.TxCommon{TxID: txID, Timestamp: now},
			Inputs:   []model.Input{{UTXOID: "u1:0"}},
			Outputs:  []model.Output{{Owner: "bob", Amount: 100, Jurisdiction: "US"}},
		},
		Spends: []*utxo.Spend{{UtxoID: "u1:0", SpendingTxID: txID, SpendingTime: now}},
		NewUtxos: []*utxo.UTXO{{
			ID: model.UTXOID(txID, 0), TxID: txID, Owner: "bob", Amount: 100,
			Status: utxo.StatusActive, Jurisdiction: "US", CreatedAt: now,
		}},
		Amount:     100,
		DailySpend: map[string]uint64{"alice": 100},
		Owners:     []string{"alice", "bob"},
	}
}

func (h *testHarness) fund(t *testing.T, id, owner string, amount uint64) {
	t.Helper()

	require.NoError(t, h.store.Create(context.Background(), &utxo.UTXO{
		ID: id, TxID: "fund-" + id, Owner: owner, Amount: amount,
		Status: utxo.StatusActive, Jurisdiction: "US", CreatedAt: time.Now().UTC(),
	}))
}

func TestApplyTransfer(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	h.fund(t, "u1:0", "alice", 100)

	require.NoError(t, h.executor.Apply(ctx, normalizedTransfer("tx-1")))

	spent, err := h.store.Get(ctx, "u1:0")
	require.NoError(t, err)
	assert.Equal(t, utxo.StatusSpent, spent.Status)
	assert.Equal(t, "tx-1", spent.SpendingTxID)

	created, err := h.store.Get(ctx, "tx-1:0")
	require.NoError(t, err)
	assert.Equal(t, "bob", created.Owner)
	assert.Equal(t, utxo.StatusActive, created.Status)

	rec, err := h.store.GetTransaction(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, model.TxKindTransfer, rec.Kind)

	assert.Equal(t, uint64(100), h.policies.DailySpent("alice"))
	assert.False(t, h.executor.Halted())
}

func TestApplyRollsBackOnDuplicateTransaction(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	h.fund(t, "u1:0", "alice", 100)
	h.fund(t, "u2:0", "alice", 100)

	require.NoError(t, h.executor.Apply(ctx, normalizedTransfer("tx-1")))

	// same tx id again, spending a different utxo
	dup := normalizedTransfer("tx-1")
	dup.Spends[0].UtxoID = "u2:0"
	dup.NewUtxos = nil

	err := h.executor.Apply(ctx, dup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTxAlreadyExists))

	// the second spend was rolled back
	u, err := h.store.Get(ctx, "u2:0")
	require.NoError(t, err)
	assert.Equal(t, utxo.StatusActive, u.Status)
	assert.False(t, h.executor.Halted())
}

func TestApplyFailsOnSpentInput(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	h.fund(t, "u1:0", "alice", 100)

	require.NoError(t, h.executor.Apply(ctx, normalizedTransfer("tx-1")))

	err := h.executor.Apply(ctx, normalizedTransfer("tx-2"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSpent))

	_, err = h.store.GetTransaction(ctx, "tx-2")
	require.Error(t, err)
}

func TestApplyHaltsWhenSupplyExceedsReserves(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	require.NoError(t, h.store.SetVerifiedReserves(ctx, &utxo.ReserveState{
		Amount:     50,
		AttestedAt: time.Now().UTC(),
	}))

	now := time.Now().UTC()
	mint := &validator.NormalizedTx{
		Tx: &model.Mint{
			TxCommon: model.TxCommon{TxID: "mint-1", Timestamp: now},
			Outputs:  []model.Output{{Owner: "alice", Amount: 100, Jurisdiction: "US"}},
		},
		NewUtxos: []*utxo.UTXO{{
			ID: "mint-1:0", TxID: "mint-1", Owner: "alice", Amount: 100,
			Status: utxo.StatusActive, Jurisdiction: "US", CreatedAt: now,
		}},
		Amount:     100,
		DailySpend: map[string]uint64{},
		Owners:     []string{"alice"},
	}

	err := h.executor.Apply(ctx, mint)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvariantViolation))
	assert.True(t, h.executor.Halted())

	// latched: everything is rejected from now on
	err = h.executor.Apply(ctx, normalizedTransfer("tx-9"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvariantViolation))

	status, _, err := h.executor.Health(ctx, false)
	require.Error(t, err)
	assert.Equal(t, 503, status)
}
