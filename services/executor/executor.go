// Package executor applies validated transactions to the utxo store. Either
// every effect of a transaction lands or none do. When the executor finds the
// store in a state it cannot reconcile it latches halted and refuses all
// further work until an operator intervenes.
package executor

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/lifafa03/USDw-stablecoin-sub000/errors"
	"github.com/lifafa03/USDw-stablecoin-sub000/model"
	"github.com/lifafa03/USDw-stablecoin-sub000/services/validator"
	"github.com/lifafa03/USDw-stablecoin-sub000/settings"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/policy"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/utxo"
	"github.com/lifafa03/USDw-stablecoin-sub000/ulogger"
	"github.com/lifafa03/USDw-stablecoin-sub000/util/tracing"
)

type Executor struct {
	logger       ulogger.Logger
	settings     *settings.Settings
	utxoStore    utxo.Store
	policyEngine *policy.Engine
	halted       atomic.Bool
}

func New(logger ulogger.Logger, tSettings *settings.Settings, utxoStore utxo.Store, policyEngine *policy.Engine) *Executor {
	initPrometheusMetrics()

	return &Executor{
		logger:       logger,
		settings:     tSettings,
		utxoStore:    utxoStore,
		policyEngine: policyEngine,
	}
}

func (e *Executor) Health(_ context.Context, _ bool) (int, string, error) {
	if e.halted.Load() {
		return http.StatusServiceUnavailable, "Executor halted on invariant violation", errors.ErrInvariantViolation
	}

	return http.StatusOK, "Executor", nil
}

// Halted reports whether the executor has latched on an invariant violation.
func (e *Executor) Halted() bool {
	return e.halted.Load()
}

// halt latches the executor. Only operator intervention resets it.
func (e *Executor) halt(reason string) {
	if e.halted.CompareAndSwap(false, true) {
		prometheusInvariantViolations.Inc()
		e.logger.Errorf("CRITICAL: executor halted: %s", reason)
	}
}

// Apply commits a validated transaction: inputs are spent, outputs created,
// the history record written and daily allowances consumed. A failure midway
// rolls the spends back.
func (e *Executor) Apply(ctx context.Context, normalized *validator.NormalizedTx) error {
	start := time.Now()
	defer func() {
		prometheusApplyDuration.Observe(float64(time.Since(start).Microseconds()))
	}()

	ctx, span := tracing.Start(ctx, "Apply")
	defer span.End()

	if e.halted.Load() {
		return errors.NewInvariantViolationError("executor is halted, transaction rejected")
	}

	common := normalized.Tx.Common()

	if len(normalized.Spends) > 0 {
		if err := e.utxoStore.Spend(ctx, normalized.Spends); err != nil {
			return err
		}
	}

	rec := &model.TxRecord{
		TxID:      common.TxID,
		Kind:      normalized.Tx.Kind(),
		Owners:    normalized.Owners,
		Amount:    normalized.Amount,
		Timestamp: common.Timestamp,
		Metadata:  common.Metadata,
	}

	if err := e.utxoStore.SaveTransaction(ctx, rec); err != nil {
		e.rollbackSpends(ctx, normalized)
		return err
	}

	for _, u := range normalized.NewUtxos {
		if err := e.utxoStore.Create(ctx, u); err != nil {
			// the history record is already committed, the store and the log
			// now disagree
			e.rollbackSpends(ctx, normalized)
			e.halt(errors.NewInvariantViolationError("failed to create output %s for committed transaction %s", u.ID, common.TxID, err).Error())

			return errors.NewInvariantViolationError("transaction %s partially applied", common.TxID, err)
		}
	}

	for owner, amount := range normalized.DailySpend {
		e.policyEngine.ConsumeDailyLimit(owner, amount)
	}

	if err := e.checkSupplyBacking(ctx); err != nil {
		e.halt(err.Error())
		return err
	}

	prometheusTransactionsApplied.WithLabelValues(normalized.Tx.Kind().String()).Inc()

	return nil
}

func (e *Executor) rollbackSpends(ctx context.Context, normalized *validator.NormalizedTx) {
	if len(normalized.Spends) == 0 {
		return
	}

	if err := e.utxoStore.UnSpend(ctx, normalized.Spends); err != nil {
		e.halt(errors.NewInvariantViolationError("failed to roll back spends for %s", normalized.Tx.Common().TxID, err).Error())
	}
}

// checkSupplyBacking verifies the reserve invariant after every commit.
func (e *Executor) checkSupplyBacking(ctx context.Context) error {
	supply, err := e.utxoStore.TotalSupply(ctx)
	if err != nil {
		return errors.NewStorageError("failed to read total supply", err)
	}

	reserves, err := e.utxoStore.VerifiedReserves(ctx)
	if err != nil {
		return errors.NewStorageError("failed to read verified reserves", err)
	}

	if supply > reserves.Amount {
		return errors.NewInvariantViolationError("total supply %d exceeds verified reserves %d", supply, reserves.Amount)
	}

	return nil
}
