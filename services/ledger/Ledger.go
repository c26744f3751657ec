// Package ledger is the facade over the whole engine: it owns the single
// logical writer, routes submissions through validation and execution, and
// answers read-only queries concurrently.
package ledger

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/lifafa03/USDw-stablecoin-sub000/errors"
	"github.com/lifafa03/USDw-stablecoin-sub000/model"
	"github.com/lifafa03/USDw-stablecoin-sub000/services/audit"
	"github.com/lifafa03/USDw-stablecoin-sub000/services/executor"
	"github.com/lifafa03/USDw-stablecoin-sub000/services/governance"
	"github.com/lifafa03/USDw-stablecoin-sub000/services/validator"
	"github.com/lifafa03/USDw-stablecoin-sub000/settings"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/policy"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/utxo"
	"github.com/lifafa03/USDw-stablecoin-sub000/ulogger"
	"github.com/lifafa03/USDw-stablecoin-sub000/util/tracing"
	"github.com/lifafa03/USDw-stablecoin-sub000/verifier"
)

// Balance is an owner's holdings split by spendability.
type Balance struct {
	Active uint64
	Frozen uint64
}

type Ledger struct {
	logger       ulogger.Logger
	settings     *settings.Settings
	utxoStore    utxo.Store
	policyEngine *policy.Engine
	validator    validator.Interface
	executor     *executor.Executor
	governance   *governance.Manager
	auditLog     *audit.Log
	checker      *audit.Checker

	// writeMu serializes all state mutations. Queries do not take it.
	writeMu sync.Mutex
}

func New(logger ulogger.Logger, tSettings *settings.Settings, utxoStore utxo.Store, policyEngine *policy.Engine, v verifier.Interface) *Ledger {
	initPrometheusMetrics()

	txValidator := validator.New(logger, tSettings, utxoStore, policyEngine, v)
	txExecutor := executor.New(logger, tSettings, utxoStore, policyEngine)
	auditLog := audit.NewLog(logger, tSettings)

	return &Ledger{
		logger:       logger,
		settings:     tSettings,
		utxoStore:    utxoStore,
		policyEngine: policyEngine,
		validator:    txValidator,
		executor:     txExecutor,
		governance:   governance.New(logger, tSettings, utxoStore, policyEngine, v, txValidator, txExecutor),
		auditLog:     auditLog,
		checker:      audit.NewChecker(logger, utxoStore, auditLog),
	}
}

// Close releases background resources.
func (l *Ledger) Close() error {
	l.policyEngine.Close()

	return l.auditLog.Close()
}

// Health aggregates the health of the engine's parts.
func (l *Ledger) Health(ctx context.Context, checkLiveness bool) (int, string, error) {
	prometheusHealth.Inc()

	if checkLiveness {
		return http.StatusOK, "Ledger", nil
	}

	if status, msg, err := l.utxoStore.Health(ctx, checkLiveness); err != nil {
		return status, msg, err
	}

	if status, msg, err := l.executor.Health(ctx, checkLiveness); err != nil {
		return status, msg, err
	}

	return http.StatusOK, "Ledger", nil
}

// SubmitTransaction validates and commits a transaction under the single
// writer lock. A rejected transaction leaves no trace beyond an audit event.
func (l *Ledger) SubmitTransaction(ctx context.Context, tx model.Transaction) (*model.TxRecord, error) {
	start := time.Now()
	defer func() {
		prometheusSubmitDuration.Observe(float64(time.Since(start).Microseconds()))
	}()

	ctx, span := tracing.Start(ctx, "SubmitTransaction")
	defer span.End()

	if tx == nil {
		prometheusTransactionsSubmitted.WithLabelValues("rejected").Inc()
		return nil, errors.NewTxInvalidError("transaction is nil")
	}

	txID := tx.Common().TxID

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	if _, err := l.utxoStore.GetTransaction(ctx, txID); err == nil {
		prometheusTransactionsSubmitted.WithLabelValues("duplicate").Inc()
		return nil, errors.NewTxAlreadyExistsError("%s already committed", txID)
	} else if !errors.Is(err, errors.ErrTxNotFound) {
		return nil, err
	}

	normalized, err := l.validator.Validate(ctx, tx)
	if err != nil {
		prometheusTransactionsSubmitted.WithLabelValues("rejected").Inc()
		l.auditLog.Record(ctx, audit.EventRejection, submitter(tx), txID, 0, map[string]string{"error": err.Error()})

		return nil, err
	}

	if err = l.executor.Apply(ctx, normalized); err != nil {
		prometheusTransactionsSubmitted.WithLabelValues("failed").Inc()
		l.auditLog.Record(ctx, audit.EventRejection, submitter(tx), txID, 0, map[string]string{"error": err.Error()})

		return nil, err
	}

	prometheusTransactionsSubmitted.WithLabelValues("committed").Inc()
	l.auditLog.Record(ctx, audit.EventTransaction, submitter(tx), txID, normalized.Amount, map[string]string{
		"kind": tx.Kind().String(),
	})

	rec, err := l.utxoStore.GetTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// SubmitGovernanceAction applies a governance action under the single writer
// lock.
func (l *Ledger) SubmitGovernanceAction(ctx context.Context, action *model.GovernanceAction) error {
	ctx, span := tracing.Start(ctx, "SubmitGovernanceAction")
	defer span.End()

	if action == nil {
		return errors.NewInvalidArgumentError("governance action is nil")
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	if err := l.governance.Apply(ctx, action); err != nil {
		prometheusGovernanceSubmitted.WithLabelValues("rejected").Inc()
		l.auditLog.Record(ctx, audit.EventRejection, action.Actor, action.Target, action.Amount, map[string]string{
			"action": action.Type.String(),
			"error":  err.Error(),
		})

		return err
	}

	prometheusGovernanceSubmitted.WithLabelValues("applied").Inc()
	l.auditLog.Record(ctx, audit.EventGovernance, action.Actor, action.Target, action.Amount, map[string]string{
		"action":    action.Type.String(),
		"action_id": action.ActionID,
	})

	return nil
}

// FreezeOwner sweeps every active utxo of the action's target into frozen.
func (l *Ledger) FreezeOwner(ctx context.Context, action *model.GovernanceAction) (int, error) {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	frozen, err := l.governance.FreezeOwner(ctx, action)
	if err != nil {
		return frozen, err
	}

	l.auditLog.Record(ctx, audit.EventGovernance, action.Actor, action.Target, 0, map[string]string{
		"action":    "FreezeOwner",
		"action_id": action.ActionID,
	})

	return frozen, nil
}

// UnfreezeOwner reverses a FreezeOwner sweep.
func (l *Ledger) UnfreezeOwner(ctx context.Context, action *model.GovernanceAction, freezeActionID string) (int, error) {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	unfrozen, err := l.governance.UnfreezeOwner(ctx, action, freezeActionID)
	if err != nil {
		return unfrozen, err
	}

	l.auditLog.Record(ctx, audit.EventGovernance, action.Actor, action.Target, 0, map[string]string{
		"action":    "UnfreezeOwner",
		"action_id": action.ActionID,
	})

	return unfrozen, nil
}

// GetBalance returns the target owner's holdings. Frozen value is reported
// separately, it is owned but not spendable.
func (l *Ledger) GetBalance(ctx context.Context, owner string) (*Balance, error) {
	utxos, err := l.utxoStore.GetByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	balance := &Balance{}

	for _, u := range utxos {
		switch u.Status {
		case utxo.StatusActive:
			balance.Active += u.Amount
		case utxo.StatusFrozen:
			balance.Frozen += u.Amount
		}
	}

	return balance, nil
}

// GetUTXO returns a single utxo by id.
func (l *Ledger) GetUTXO(ctx context.Context, id string) (*utxo.UTXO, error) {
	return l.utxoStore.Get(ctx, id)
}

// GetUTXOs returns the owner's non-terminal utxos.
func (l *Ledger) GetUTXOs(ctx context.Context, owner string) ([]*utxo.UTXO, error) {
	return l.utxoStore.GetByOwner(ctx, owner)
}

// GetTotalSupply returns the circulating supply.
func (l *Ledger) GetTotalSupply(ctx context.Context) (uint64, error) {
	return l.utxoStore.TotalSupply(ctx)
}

// GetVerifiedReserves returns the last reserve attestation.
func (l *Ledger) GetVerifiedReserves(ctx context.Context) (*utxo.ReserveState, error) {
	return l.utxoStore.VerifiedReserves(ctx)
}

// GetTransaction returns a committed transaction record.
func (l *Ledger) GetTransaction(ctx context.Context, txID string) (*model.TxRecord, error) {
	return l.utxoStore.GetTransaction(ctx, txID)
}

// GetHistory returns one page of the owner's transaction history, newest
// first. Pages are numbered from zero.
func (l *Ledger) GetHistory(ctx context.Context, owner string, page int) ([]*model.TxRecord, error) {
	if page < 0 {
		return nil, errors.NewInvalidArgumentError("page must not be negative")
	}

	size := l.settings.Ledger.HistoryPageSize

	return l.utxoStore.ListTransactionsByOwner(ctx, owner, size, page*size)
}

// AuditEvents returns the audit trail for a target.
func (l *Ledger) AuditEvents(target string) []audit.Event {
	return l.auditLog.EventsByTarget(target)
}

// RunAudit re-verifies the ledger's invariants.
func (l *Ledger) RunAudit(ctx context.Context) ([]audit.Violation, error) {
	return l.checker.RunAll(ctx)
}

func submitter(tx model.Transaction) string {
	sigs := tx.Common().Signatures
	if len(sigs) == 0 {
		return ""
	}

	return sigs[0].Signer
}
