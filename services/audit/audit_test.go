package audit

import (
	"context"
	"testing"
	"time"

	"github.com/lifafa03/USDw-stablecoin-sub000/model"
	"github.com/lifafa03/USDw-stablecoin-sub000/settings"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/utxo"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/utxo/memory"
	"github.com/lifafa03/USDw-stablecoin-sub000/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()

	tSettings := settings.NewSettings()
	tSettings.Kafka.Hosts = "" // no kafka in unit tests

	l := NewLog(ulogger.NewVerboseTestLogger(t), tSettings)
	t.Cleanup(func() { _ = l.Close() })

	return l
}

func TestLogRecord(t *testing.T) {
	ctx := context.Background()
	l := newTestLog(t)

	first := l.Record(ctx, EventTransaction, "alice", "tx-1", 100, nil)
	second := l.Record(ctx, EventGovernance, "officer-1", "u1:0", 0, map[string]string{"action": "Freeze"})

	assert.NotEmpty(t, first.EventID)
	assert.NotEqual(t, first.EventID, second.EventID)
	assert.False(t, first.Timestamp.IsZero())

	events := l.Events()
	require.Len(t, events, 2)
	assert.Equal(t, EventTransaction, events[0].Type)
	assert.Equal(t, EventGovernance, events[1].Type)

	byTarget := l.EventsByTarget("u1:0")
	require.Len(t, byTarget, 1)
	assert.Equal(t, "Freeze", byTarget[0].Details["action"])
}

func newCheckerHarness(t *testing.T) (*memory.Memory, *Checker, *Log) {
	t.Helper()

	logger := ulogger.NewVerboseTestLogger(t)
	store := memory.New(logger)
	l := newTestLog(t)

	return store, NewChecker(logger, store, l), l
}

func TestCheckerCleanLedger(t *testing.T) {
	ctx := context.Background()
	store, checker, _ := newCheckerHarness(t)

	require.NoError(t, store.SetVerifiedReserves(ctx, &utxo.ReserveState{Amount: 1_000, AttestedAt: time.Now().UTC()}))
	require.NoError(t, store.Create(ctx, &utxo.UTXO{
		ID: "u1:0", TxID: "tx-1", Owner: "alice", Amount: 500,
		Status: utxo.StatusActive, CreatedAt: time.Now().UTC(),
	}))

	violations, err := checker.RunAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestCheckerSupplyBacking(t *testing.T) {
	ctx := context.Background()
	store, checker, auditLog := newCheckerHarness(t)

	// supply 500, reserves 100
	require.NoError(t, store.SetVerifiedReserves(ctx, &utxo.ReserveState{Amount: 100, AttestedAt: time.Now().UTC()}))
	require.NoError(t, store.Create(ctx, &utxo.UTXO{
		ID: "u1:0", TxID: "tx-1", Owner: "alice", Amount: 500,
		Status: utxo.StatusActive, CreatedAt: time.Now().UTC(),
	}))

	violations, err := checker.RunAll(ctx)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "supply_backing", violations[0].Check)

	// violations land in the audit trail
	events := auditLog.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventViolation, events[0].Type)
}

func TestCheckerSpentIntegrity(t *testing.T) {
	ctx := context.Background()
	store, checker, _ := newCheckerHarness(t)

	require.NoError(t, store.SetVerifiedReserves(ctx, &utxo.ReserveState{Amount: 1_000, AttestedAt: time.Now().UTC()}))
	require.NoError(t, store.Create(ctx, &utxo.UTXO{
		ID: "u1:0", TxID: "tx-1", Owner: "alice", Amount: 100,
		Status: utxo.StatusActive, CreatedAt: time.Now().UTC(),
	}))

	// spend without a matching history record
	require.NoError(t, store.Spend(ctx, []*utxo.Spend{{UtxoID: "u1:0", SpendingTxID: "tx-ghost", SpendingTime: time.Now().UTC()}}))

	violations, err := checker.CheckSpentIntegrity(ctx)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Detail, "tx-ghost")

	// with the record in place the check passes
	require.NoError(t, store.SaveTransaction(ctx, &model.TxRecord{
		TxID: "tx-ghost", Kind: model.TxKindTransfer, Owners: []string{"alice"}, Amount: 100, Timestamp: time.Now().UTC(),
	}))

	violations, err = checker.CheckSpentIntegrity(ctx)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestCheckerSpentIntegrityReturnsWhileStoreLocked(t *testing.T) {
	// The memory store holds its mutex for the whole of Scan, so the check
	// must not call back into the store from inside the scan callback.
	ctx := context.Background()
	store, checker, _ := newCheckerHarness(t)

	require.NoError(t, store.Create(ctx, &utxo.UTXO{
		ID: "u1:0", TxID: "tx-1", Owner: "alice", Amount: 100,
		Status: utxo.StatusActive, CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, store.Spend(ctx, []*utxo.Spend{{UtxoID: "u1:0", SpendingTxID: "tx-2", SpendingTime: time.Now().UTC()}}))
	require.NoError(t, store.SaveTransaction(ctx, &model.TxRecord{
		TxID: "tx-2", Kind: model.TxKindTransfer, Owners: []string{"alice"}, Amount: 100, Timestamp: time.Now().UTC(),
	}))

	done := make(chan struct{})

	go func() {
		defer close(done)

		violations, err := checker.CheckSpentIntegrity(ctx)
		assert.NoError(t, err)
		assert.Empty(t, violations)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("CheckSpentIntegrity did not return with a spent utxo in the store")
	}
}

func TestCheckerGovernanceMarkers(t *testing.T) {
	ctx := context.Background()
	store, checker, _ := newCheckerHarness(t)

	require.NoError(t, store.Create(ctx, &utxo.UTXO{
		ID: "u1:0", TxID: "tx-1", Owner: "alice", Amount: 100,
		Status: utxo.StatusFrozen, CreatedAt: time.Now().UTC(),
	}))

	violations, err := checker.CheckGovernanceMarkers(ctx)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "governance_markers", violations[0].Check)

	require.NoError(t, store.Create(ctx, &utxo.UTXO{
		ID: "u2:0", TxID: "tx-2", Owner: "bob", Amount: 100,
		Status: utxo.StatusFrozen, FreezeReason: "act-1", CreatedAt: time.Now().UTC(),
	}))

	violations, err = checker.CheckGovernanceMarkers(ctx)
	require.NoError(t, err)
	require.Len(t, violations, 1) // still just u1:0
}
