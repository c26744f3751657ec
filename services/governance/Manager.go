// Package governance applies privileged ledger mutations: freezes, seizures,
// redemptions and reserve attestations. Every action is checked against the
// policy's role requirements, signature verified and, where the action table
// says so, rate limited by a cooldown.
package governance

import (
	"context"
	"net/http"

	"github.com/lifafa03/USDw-stablecoin-sub000/errors"
	"github.com/lifafa03/USDw-stablecoin-sub000/model"
	"github.com/lifafa03/USDw-stablecoin-sub000/services/executor"
	"github.com/lifafa03/USDw-stablecoin-sub000/services/validator"
	"github.com/lifafa03/USDw-stablecoin-sub000/settings"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/policy"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/utxo"
	"github.com/lifafa03/USDw-stablecoin-sub000/ulogger"
	"github.com/lifafa03/USDw-stablecoin-sub000/util/tracing"
	"github.com/lifafa03/USDw-stablecoin-sub000/verifier"
)

type Manager struct {
	logger       ulogger.Logger
	settings     *settings.Settings
	utxoStore    utxo.Store
	policyEngine *policy.Engine
	verifier     verifier.Interface
	validator    validator.Interface
	executor     *executor.Executor
	cooldowns    *cooldownTracker
}

func New(logger ulogger.Logger, tSettings *settings.Settings, utxoStore utxo.Store, policyEngine *policy.Engine, v verifier.Interface, txValidator validator.Interface, txExecutor *executor.Executor) *Manager {
	initPrometheusMetrics()

	return &Manager{
		logger:       logger,
		settings:     tSettings,
		utxoStore:    utxoStore,
		policyEngine: policyEngine,
		verifier:     verifier.NewBounded(v, tSettings.Ledger.VerifierTimeout),
		validator:    txValidator,
		executor:     txExecutor,
		cooldowns:    newCooldownTracker(),
	}
}

func (m *Manager) Health(_ context.Context, _ bool) (int, string, error) {
	return http.StatusOK, "Governance", nil
}

// Apply authorizes and executes a governance action.
func (m *Manager) Apply(ctx context.Context, action *model.GovernanceAction) error {
	ctx, span := tracing.Start(ctx, "GovernanceApply")
	defer span.End()

	err := m.apply(ctx, action)
	if err != nil {
		prometheusGovernanceRejected.WithLabelValues(action.Type.String()).Inc()
		return err
	}

	prometheusGovernanceActions.WithLabelValues(action.Type.String()).Inc()

	return nil
}

func (m *Manager) apply(ctx context.Context, action *model.GovernanceAction) error {
	if action == nil || action.ActionID == "" {
		return errors.NewInvalidArgumentError("governance action has no id")
	}

	if action.Target == "" {
		return errors.NewInvalidArgumentError("governance action %s has no target", action.ActionID)
	}

	switch action.Type {
	case model.GovActionFreeze:
		return m.freeze(ctx, action)
	case model.GovActionUnfreeze:
		return m.unfreeze(ctx, action)
	case model.GovActionSeize:
		return m.seize(ctx, action)
	case model.GovActionRedeem:
		return m.redeem(ctx, action)
	case model.GovActionAttestReserve:
		return m.attestReserve(ctx, action)
	default:
		return errors.NewInvalidArgumentError("governance action %s has unknown type", action.ActionID)
	}
}

// authorize checks the actor role against the policy's role requirements for
// the action type and verifies the action signature.
func (m *Manager) authorize(ctx context.Context, action *model.GovernanceAction) error {
	p, err := m.policyEngine.GetPolicy(0)
	if err != nil {
		return err
	}

	allowed := p.RoleRequirements[action.Type]
	if len(allowed) == 0 {
		return errors.NewUnauthorizedError("no role is permitted to perform %s", action.Type)
	}

	roleOK := false

	for _, role := range allowed {
		if action.ActorRole == role {
			roleOK = true
			break
		}
	}

	if !roleOK {
		return errors.NewUnauthorizedError("%s requires one of %v, actor %s has role %s", action.Type, allowed, action.Actor, action.ActorRole)
	}

	if action.Signature.Signer != action.Actor {
		return errors.NewUnauthorizedError("action %s signature signer %s does not match actor %s", action.ActionID, action.Signature.Signer, action.Actor)
	}

	valid, err := m.verifier.Verify(ctx, action.ActorRole, action.Signature.PayloadHash, action.Signature.Bytes)
	if err != nil {
		return err
	}

	if !valid {
		return errors.NewVerificationFailedError("action %s signature failed verification", action.ActionID)
	}

	return nil
}

func (m *Manager) freeze(ctx context.Context, action *model.GovernanceAction) error {
	if err := m.authorize(ctx, action); err != nil {
		return err
	}

	return m.utxoStore.Freeze(ctx, action.Target, action.ActionID)
}

func (m *Manager) unfreeze(ctx context.Context, action *model.GovernanceAction) error {
	if err := m.authorize(ctx, action); err != nil {
		return err
	}

	if err := m.cooldowns.Check(action.Target, model.GovActionUnfreeze); err != nil {
		return err
	}

	if err := m.utxoStore.UnFreeze(ctx, action.Target); err != nil {
		return err
	}

	m.cooldowns.Mark(action.Target, model.GovActionUnfreeze, m.settings.Governance.UnfreezeCooldown)

	return nil
}

func (m *Manager) seize(ctx context.Context, action *model.GovernanceAction) error {
	if err := m.authorize(ctx, action); err != nil {
		return err
	}

	p, err := m.policyEngine.GetPolicy(0)
	if err != nil {
		return err
	}

	u, err := m.utxoStore.Get(ctx, action.Target)
	if err != nil {
		return err
	}

	if p.MaxSeizeAmount > 0 && u.Amount > p.MaxSeizeAmount {
		return errors.NewAmountLimitError("seizure of %s (%d) exceeds the per-action cap %d", u.ID, u.Amount, p.MaxSeizeAmount)
	}

	return m.utxoStore.Seize(ctx, action.Target, action.ActionID)
}

// redeem burns value held by the target owner against an off-ledger payout.
// It goes through the normal validate and apply path as a burn, skipping the
// compliance stage: a redemption may liquidate a sanctioned account.
func (m *Manager) redeem(ctx context.Context, action *model.GovernanceAction) error {
	if err := m.authorize(ctx, action); err != nil {
		return err
	}

	if action.Amount == 0 {
		return errors.NewInvalidArgumentError("redeem %s has zero amount", action.ActionID)
	}

	p, err := m.policyEngine.GetPolicy(0)
	if err != nil {
		return err
	}

	if p.MaxRedeemAmount > 0 && action.Amount > p.MaxRedeemAmount {
		return errors.NewAmountLimitError("redeem %s amount %d exceeds the per-action cap %d", action.ActionID, action.Amount, p.MaxRedeemAmount)
	}

	// redemptions are rate limited per issuer, not per redeemed owner
	if err = m.cooldowns.Check(action.Actor, model.GovActionRedeem); err != nil {
		return err
	}

	inputs, err := m.selectRedeemInputs(ctx, action)
	if err != nil {
		return err
	}

	burn := &model.Burn{
		TxCommon: model.TxCommon{
			TxID:      "redeem-" + action.ActionID,
			Timestamp: action.Timestamp,
			PolicyRef: 0,
			Signatures: []model.Signature{{
				Signer:      action.Target,
				Role:        model.RoleOwner,
				PayloadHash: action.Signature.PayloadHash,
				Bytes:       action.Signature.Bytes,
			}},
			Metadata: map[string]string{
				"action_id":  action.ActionID,
				"payout_ref": action.PayoutRef,
			},
		},
		Inputs: inputs,
	}

	normalized, err := m.validator.Validate(ctx, burn,
		validator.WithSkipComplianceChecks(true),
		validator.WithSkipSignatureChecks(true),
	)
	if err != nil {
		return err
	}

	if err = m.executor.Apply(ctx, normalized); err != nil {
		return err
	}

	m.cooldowns.Mark(action.Actor, model.GovActionRedeem, m.settings.Governance.RedeemCooldown)

	return nil
}

// selectRedeemInputs picks active utxos of the target owner that cover the
// redemption exactly. Burns consume whole utxos, so a redemption must match a
// combination of the owner's denominations.
func (m *Manager) selectRedeemInputs(ctx context.Context, action *model.GovernanceAction) ([]model.Input, error) {
	utxos, err := m.utxoStore.GetByOwner(ctx, action.Target)
	if err != nil {
		return nil, err
	}

	inputs := make([]model.Input, 0)

	var sum uint64

	for _, u := range utxos {
		if u.Status != utxo.StatusActive {
			continue
		}

		if sum+u.Amount > action.Amount {
			continue
		}

		inputs = append(inputs, model.Input{UTXOID: u.ID})
		sum += u.Amount

		if sum == action.Amount {
			return inputs, nil
		}
	}

	return nil, errors.NewTxInvalidError("redeem %s: owner %s cannot cover %d exactly, best %d", action.ActionID, action.Target, action.Amount, sum)
}

// attestReserve verifies a reserve proof and records the attested amount. An
// attestation that would leave the circulating supply unbacked is rejected.
func (m *Manager) attestReserve(ctx context.Context, action *model.GovernanceAction) error {
	if err := m.authorize(ctx, action); err != nil {
		return err
	}

	if action.Target != m.settings.Ledger.AssetCode {
		return errors.NewInvalidArgumentError("attestation %s targets %s, reserves are attested for %s", action.ActionID, action.Target, m.settings.Ledger.AssetCode)
	}

	if err := m.cooldowns.Check(action.Target, model.GovActionAttestReserve); err != nil {
		return err
	}

	attestation, err := m.verifier.VerifyReserveProof(ctx, action.Proof)
	if err != nil {
		return err
	}

	if !attestation.Valid {
		return errors.NewVerificationFailedError("action %s reserve proof rejected", action.ActionID)
	}

	supply, err := m.utxoStore.TotalSupply(ctx)
	if err != nil {
		return err
	}

	if attestation.AttestedAmount < supply {
		return errors.NewInvariantViolationError("attested reserves %d below circulating supply %d", attestation.AttestedAmount, supply)
	}

	if err = m.utxoStore.SetVerifiedReserves(ctx, &utxo.ReserveState{
		Amount:     attestation.AttestedAmount,
		AttestedAt: action.Timestamp,
		AttestedBy: action.Actor,
	}); err != nil {
		return err
	}

	m.cooldowns.Mark(action.Target, model.GovActionAttestReserve, m.settings.Governance.AttestCooldown)

	return nil
}

// FreezeOwner freezes every active utxo held by owner. Partial progress is
// possible when a utxo changes state mid-sweep, the returned error names the
// utxo that failed.
func (m *Manager) FreezeOwner(ctx context.Context, action *model.GovernanceAction) (int, error) {
	if err := m.authorize(ctx, action); err != nil {
		return 0, err
	}

	utxos, err := m.utxoStore.GetByOwner(ctx, action.Target)
	if err != nil {
		return 0, err
	}

	frozen := 0

	for _, u := range utxos {
		if u.Status != utxo.StatusActive {
			continue
		}

		if err = m.utxoStore.Freeze(ctx, u.ID, action.ActionID); err != nil {
			return frozen, err
		}

		frozen++
	}

	return frozen, nil
}

// UnfreezeOwner reverses FreezeOwner for every utxo frozen under the given
// originating action id.
func (m *Manager) UnfreezeOwner(ctx context.Context, action *model.GovernanceAction, freezeActionID string) (int, error) {
	if err := m.authorize(ctx, action); err != nil {
		return 0, err
	}

	if err := m.cooldowns.Check(action.Target, model.GovActionUnfreeze); err != nil {
		return 0, err
	}

	utxos, err := m.utxoStore.GetByOwner(ctx, action.Target)
	if err != nil {
		return 0, err
	}

	unfrozen := 0

	for _, u := range utxos {
		if u.Status != utxo.StatusFrozen || u.FreezeReason != freezeActionID {
			continue
		}

		if err = m.utxoStore.UnFreeze(ctx, u.ID); err != nil {
			return unfrozen, err
		}

		unfrozen++
	}

	if unfrozen > 0 {
		m.cooldowns.Mark(action.Target, model.GovActionUnfreeze, m.settings.Governance.UnfreezeCooldown)
	}

	return unfrozen, nil
}
