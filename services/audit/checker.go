package audit

import (
	"context"

	"github.com/lifafa03/USDw-stablecoin-sub000/errors"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/utxo"
	"github.com/lifafa03/USDw-stablecoin-sub000/ulogger"
)

// Violation is one failed invariant check.
type Violation struct {
	Check  string
	Detail string
}

// Checker re-verifies the ledger's global invariants from scratch, reading
// only the utxo store. It trusts nothing the executor computed incrementally.
type Checker struct {
	logger    ulogger.Logger
	utxoStore utxo.Store
	auditLog  *Log
}

func NewChecker(logger ulogger.Logger, utxoStore utxo.Store, auditLog *Log) *Checker {
	initPrometheusMetrics()

	return &Checker{
		logger:    logger,
		utxoStore: utxoStore,
		auditLog:  auditLog,
	}
}

// RunAll executes every invariant check and returns the violations found.
// Each violation is recorded in the audit log and logged at error level.
func (c *Checker) RunAll(ctx context.Context) ([]Violation, error) {
	checks := []func(ctx context.Context) ([]Violation, error){
		c.CheckSupplyBacking,
		c.CheckSupplyConsistency,
		c.CheckSpentIntegrity,
		c.CheckGovernanceMarkers,
	}

	violations := make([]Violation, 0)

	for _, check := range checks {
		found, err := check(ctx)
		if err != nil {
			return nil, err
		}

		violations = append(violations, found...)
	}

	for _, v := range violations {
		prometheusInvariantViolations.WithLabelValues(v.Check).Inc()
		c.logger.Errorf("CRITICAL: invariant violation [%s]: %s", v.Check, v.Detail)

		if c.auditLog != nil {
			c.auditLog.Record(ctx, EventViolation, "audit", v.Check, 0, map[string]string{"detail": v.Detail})
		}
	}

	return violations, nil
}

// CheckSupplyBacking verifies total supply does not exceed verified reserves.
func (c *Checker) CheckSupplyBacking(ctx context.Context) ([]Violation, error) {
	supply, err := c.utxoStore.TotalSupply(ctx)
	if err != nil {
		return nil, err
	}

	reserves, err := c.utxoStore.VerifiedReserves(ctx)
	if err != nil {
		return nil, err
	}

	if supply > reserves.Amount {
		return []Violation{{
			Check:  "supply_backing",
			Detail: errors.NewInvariantViolationError("total supply %d exceeds verified reserves %d", supply, reserves.Amount).Error(),
		}}, nil
	}

	return nil, nil
}

// CheckSupplyConsistency recomputes the circulating supply from the raw utxo
// set and compares it with the store's own aggregate.
func (c *Checker) CheckSupplyConsistency(ctx context.Context) ([]Violation, error) {
	var recomputed uint64

	err := c.utxoStore.Scan(ctx, func(u *utxo.UTXO) error {
		if u.Status.CountsTowardSupply() {
			recomputed += u.Amount
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	reported, err := c.utxoStore.TotalSupply(ctx)
	if err != nil {
		return nil, err
	}

	if recomputed != reported {
		return []Violation{{
			Check:  "supply_consistency",
			Detail: errors.NewInvariantViolationError("recomputed supply %d != reported supply %d", recomputed, reported).Error(),
		}}, nil
	}

	return nil, nil
}

// CheckSpentIntegrity verifies every spent utxo names a spending transaction
// that exists in the history log. The spent pairs are collected first and
// resolved after the scan completes, so store implementations that hold a
// lock for the duration of Scan are safe to audit.
func (c *Checker) CheckSpentIntegrity(ctx context.Context) ([]Violation, error) {
	violations := make([]Violation, 0)

	type spentRef struct {
		utxoID       string
		spendingTxID string
	}

	refs := make([]spentRef, 0)

	err := c.utxoStore.Scan(ctx, func(u *utxo.UTXO) error {
		if u.Status != utxo.StatusSpent {
			return nil
		}

		if u.SpendingTxID == "" {
			violations = append(violations, Violation{
				Check:  "spent_integrity",
				Detail: "spent utxo " + u.ID + " has no spending transaction",
			})

			return nil
		}

		refs = append(refs, spentRef{utxoID: u.ID, spendingTxID: u.SpendingTxID})

		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, ref := range refs {
		if _, err := c.utxoStore.GetTransaction(ctx, ref.spendingTxID); err != nil {
			if errors.Is(err, errors.ErrTxNotFound) {
				violations = append(violations, Violation{
					Check:  "spent_integrity",
					Detail: "spent utxo " + ref.utxoID + " references unknown transaction " + ref.spendingTxID,
				})

				continue
			}

			return nil, err
		}
	}

	return violations, nil
}

// CheckGovernanceMarkers verifies every frozen or seized utxo carries the
// governance action that put it there.
func (c *Checker) CheckGovernanceMarkers(ctx context.Context) ([]Violation, error) {
	violations := make([]Violation, 0)

	err := c.utxoStore.Scan(ctx, func(u *utxo.UTXO) error {
		switch u.Status {
		case utxo.StatusFrozen:
			if u.FreezeReason == "" {
				violations = append(violations, Violation{
					Check:  "governance_markers",
					Detail: "frozen utxo " + u.ID + " has no originating action",
				})
			}
		case utxo.StatusSeized:
			if u.SeizeReason == "" {
				violations = append(violations, Violation{
					Check:  "governance_markers",
					Detail: "seized utxo " + u.ID + " has no originating action",
				})
			}
		case utxo.StatusActive, utxo.StatusSpent:
			// nothing to verify
		default:
			violations = append(violations, Violation{
				Check:  "governance_markers",
				Detail: "utxo " + u.ID + " has unknown status " + u.Status.String(),
			})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return violations, nil
}
