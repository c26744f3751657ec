package governance

import (
	"context"
	"testing"
	"time"

	"github.com/lifafa03/USDw-stablecoin-sub000/errors"
	"github.com/lifafa03/USDw-stablecoin-sub000/model"
	"github.com/lifafa03/USDw-stablecoin-sub000/services/executor"
	"github.com/lifafa03/USDw-stablecoin-sub000/services/validator"
	"github.com/lifafa03/USDw-stablecoin-sub000/settings"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/policy"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/utxo"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/utxo/memory"
	"github.com/lifafa03/USDw-stablecoin-sub000/ulogger"
	"github.com/lifafa03/USDw-stablecoin-sub000/verifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testHarness struct {
	store    *memory.Memory
	policies *policy.Engine
	verifier *verifier.MockVerifier
	manager  *Manager
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	logger := ulogger.NewVerboseTestLogger(t)
	tSettings := settings.NewSettings()
	store := memory.New(logger)
	policies := policy.NewEngine(logger, tSettings)
	t.Cleanup(policies.Close)

	v := &verifier.MockVerifier{ReserveAmount: 1_000_000}
	tv := validator.New(logger, tSettings, store, policies, v)
	ex := executor.New(logger, tSettings, store, policies)

	require.NoError(t, store.SetVerifiedReserves(context.Background(), &utxo.ReserveState{
		Amount:     1_000_000,
		AttestedAt: time.Now().UTC(),
		AttestedBy: "auditor-1",
	}))

	return &testHarness{
		store:    store,
		policies: policies,
		verifier: v,
		manager:  New(logger, tSettings, store, policies, v, tv, ex),
	}
}

func (h *testHarness) fund(t *testing.T, id, owner string, amount uint64) {
	t.Helper()

	require.NoError(t, h.store.Create(context.Background(), &utxo.UTXO{
		ID: id, TxID: "fund-" + id, Owner: owner, Amount: amount,
		Status: utxo.StatusActive, Jurisdiction: "US", CreatedAt: time.Now().UTC(),
	}))
}

func action(id string, typ model.GovActionType, actor string, role model.Role, target string) *model.GovernanceAction {
	return &model.GovernanceAction{
		ActionID:  id,
		Type:      typ,
		Actor:     actor,
		ActorRole: role,
		Target:    target,
		Timestamp: time.Now().UTC(),
		Signature: model.Signature{
			Signer:      actor,
			Role:        role,
			PayloadHash: []byte("payload"),
			Bytes:       []byte(actor),
		},
	}
}

func TestFreezeRequiresComplianceRole(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	h.fund(t, "u1:0", "alice", 100)

	err := h.manager.Apply(ctx, action("act-1", model.GovActionFreeze, "eve", model.RoleOwner, "u1:0"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	require.NoError(t, h.manager.Apply(ctx, action("act-2", model.GovActionFreeze, "officer-1", model.RoleCompliance, "u1:0")))

	u, err := h.store.Get(ctx, "u1:0")
	require.NoError(t, err)
	assert.Equal(t, utxo.StatusFrozen, u.Status)
	assert.Equal(t, "act-2", u.FreezeReason)
}

func TestFreezeRejectsBadSignature(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	h.fund(t, "u1:0", "alice", 100)
	h.verifier.RejectSigners = map[string]bool{"officer-1": true}

	err := h.manager.Apply(ctx, action("act-1", model.GovActionFreeze, "officer-1", model.RoleCompliance, "u1:0"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrVerificationFailed))
}

func TestUnfreezeCooldown(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	h.fund(t, "u1:0", "alice", 100)

	require.NoError(t, h.manager.Apply(ctx, action("act-1", model.GovActionFreeze, "officer-1", model.RoleCompliance, "u1:0")))
	require.NoError(t, h.manager.Apply(ctx, action("act-2", model.GovActionUnfreeze, "officer-1", model.RoleCompliance, "u1:0")))

	require.NoError(t, h.manager.Apply(ctx, action("act-3", model.GovActionFreeze, "officer-1", model.RoleCompliance, "u1:0")))

	// second unfreeze of the same target is inside the 24h window
	err := h.manager.Apply(ctx, action("act-4", model.GovActionUnfreeze, "officer-1", model.RoleCompliance, "u1:0"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCooldownActive))

	var data *errors.CooldownErrData

	require.True(t, errors.AsData(err, &data))
	assert.Equal(t, "u1:0", data.Target)
	assert.True(t, data.RetryAfter.After(time.Now().UTC()))

	// a different target is unaffected
	h.fund(t, "u2:0", "bob", 100)
	require.NoError(t, h.manager.Apply(ctx, action("act-5", model.GovActionFreeze, "officer-1", model.RoleCompliance, "u2:0")))
	require.NoError(t, h.manager.Apply(ctx, action("act-6", model.GovActionUnfreeze, "officer-1", model.RoleCompliance, "u2:0")))
}

func TestSeize(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	h.fund(t, "u1:0", "alice", 100)

	err := h.manager.Apply(ctx, action("act-1", model.GovActionSeize, "officer-1", model.RoleCompliance, "u1:0"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	require.NoError(t, h.manager.Apply(ctx, action("act-2", model.GovActionSeize, "admin-1", model.RoleAdmin, "u1:0")))

	u, err := h.store.Get(ctx, "u1:0")
	require.NoError(t, err)
	assert.Equal(t, utxo.StatusSeized, u.Status)
	assert.Equal(t, "act-2", u.SeizeReason)

	// seized value no longer counts toward supply
	total, err := h.store.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSeizeFrozenUtxo(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	h.fund(t, "u1:0", "alice", 100)

	require.NoError(t, h.manager.Apply(ctx, action("act-1", model.GovActionFreeze, "officer-1", model.RoleCompliance, "u1:0")))
	require.NoError(t, h.manager.Apply(ctx, action("act-2", model.GovActionSeize, "admin-1", model.RoleAdmin, "u1:0")))

	u, err := h.store.Get(ctx, "u1:0")
	require.NoError(t, err)
	assert.Equal(t, utxo.StatusSeized, u.Status)
}

func TestSeizeAmountCap(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	h.fund(t, "u1:0", "alice", 2_000_000) // above the 1M default cap

	err := h.manager.Apply(ctx, action("act-1", model.GovActionSeize, "admin-1", model.RoleAdmin, "u1:0"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAmountLimit))
}

func TestRedeem(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	h.fund(t, "u1:0", "alice", 300)
	h.fund(t, "u2:0", "alice", 200)

	redeem := action("act-1", model.GovActionRedeem, "issuer-1", model.RoleIssuer, "alice")
	redeem.Amount = 500
	redeem.PayoutRef = "wire-77"

	require.NoError(t, h.manager.Apply(ctx, redeem))

	for _, id := range []string{"u1:0", "u2:0"} {
		u, err := h.store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, utxo.StatusSpent, u.Status)
	}

	rec, err := h.store.GetTransaction(ctx, "redeem-act-1")
	require.NoError(t, err)
	assert.Equal(t, model.TxKindBurn, rec.Kind)
	assert.Equal(t, uint64(500), rec.Amount)
	assert.Equal(t, "wire-77", rec.Metadata["payout_ref"])

	total, err := h.store.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRedeemCooldown(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	h.fund(t, "u1:0", "alice", 100)
	h.fund(t, "u2:0", "alice", 100)

	redeem := action("act-1", model.GovActionRedeem, "issuer-1", model.RoleIssuer, "alice")
	redeem.Amount = 100

	require.NoError(t, h.manager.Apply(ctx, redeem))

	again := action("act-2", model.GovActionRedeem, "issuer-1", model.RoleIssuer, "alice")
	again.Amount = 100

	err := h.manager.Apply(ctx, again)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCooldownActive))
}

func TestRedeemCooldownIsPerIssuer(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	h.fund(t, "u1:0", "alice", 100)
	h.fund(t, "u2:0", "bob", 100)

	first := action("act-1", model.GovActionRedeem, "issuer-1", model.RoleIssuer, "alice")
	first.Amount = 100

	require.NoError(t, h.manager.Apply(ctx, first))

	// same issuer, different owner: still rate limited
	second := action("act-2", model.GovActionRedeem, "issuer-1", model.RoleIssuer, "bob")
	second.Amount = 100

	err := h.manager.Apply(ctx, second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCooldownActive))

	var data *errors.CooldownErrData

	require.True(t, errors.AsData(err, &data))
	assert.Equal(t, "issuer-1", data.Target)

	// a different issuer is unaffected
	third := action("act-3", model.GovActionRedeem, "issuer-2", model.RoleIssuer, "bob")
	third.Amount = 100

	require.NoError(t, h.manager.Apply(ctx, third))
}

func TestRedeemRequiresExactCover(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	h.fund(t, "u1:0", "alice", 300)

	redeem := action("act-1", model.GovActionRedeem, "issuer-1", model.RoleIssuer, "alice")
	redeem.Amount = 250

	err := h.manager.Apply(ctx, redeem)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTxInvalid))

	// nothing was burned
	u, err := h.store.Get(ctx, "u1:0")
	require.NoError(t, err)
	assert.Equal(t, utxo.StatusActive, u.Status)
}

func TestRedeemLiquidatesFrozenOwnerFunds(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	h.fund(t, "u1:0", "alice", 100)
	h.policies.SetBlacklisted("alice", true)

	redeem := action("act-1", model.GovActionRedeem, "issuer-1", model.RoleIssuer, "alice")
	redeem.Amount = 100

	// compliance stage is skipped for redemptions
	require.NoError(t, h.manager.Apply(ctx, redeem))
}

func TestAttestReserve(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	h.verifier.ReserveAmount = 2_000_000

	attest := action("act-1", model.GovActionAttestReserve, "auditor-1", model.RoleAuditor, "USDw")
	attest.Proof = []byte("zkproof")

	require.NoError(t, h.manager.Apply(ctx, attest))

	state, err := h.store.VerifiedReserves(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_000_000), state.Amount)
	assert.Equal(t, "auditor-1", state.AttestedBy)

	// inside the 6h window
	err = h.manager.Apply(ctx, action("act-2", model.GovActionAttestReserve, "auditor-1", model.RoleAuditor, "USDw"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCooldownActive))
}

func TestAttestReserveRejectsUnknownAsset(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	attest := action("act-1", model.GovActionAttestReserve, "auditor-1", model.RoleAuditor, "EURw")
	attest.Proof = []byte("zkproof")

	err := h.manager.Apply(ctx, attest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestAttestReserveBelowSupply(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	h.fund(t, "u1:0", "alice", 500)
	h.verifier.ReserveAmount = 100

	attest := action("act-1", model.GovActionAttestReserve, "auditor-1", model.RoleAuditor, "USDw")

	err := h.manager.Apply(ctx, attest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvariantViolation))

	// the previous attestation stands
	state, err := h.store.VerifiedReserves(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), state.Amount)
}

func TestAuthorizeFollowsPolicyRoleRequirements(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	h.fund(t, "u1:0", "alice", 100)

	// a newer policy restricts freezes to admins
	strict := &policy.Policy{
		Version:          2,
		RoleRequirements: policy.DefaultRoleRequirements(),
	}
	strict.RoleRequirements[model.GovActionFreeze] = []model.Role{model.RoleAdmin}
	require.NoError(t, h.policies.AddPolicy(strict))

	err := h.manager.Apply(ctx, action("act-1", model.GovActionFreeze, "officer-1", model.RoleCompliance, "u1:0"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	require.NoError(t, h.manager.Apply(ctx, action("act-2", model.GovActionFreeze, "admin-1", model.RoleAdmin, "u1:0")))
}

func TestFreezeOwnerAndUnfreezeOwner(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	h.fund(t, "u1:0", "alice", 100)
	h.fund(t, "u2:0", "alice", 200)
	h.fund(t, "u3:0", "bob", 400)

	frozen, err := h.manager.FreezeOwner(ctx, action("act-1", model.GovActionFreeze, "officer-1", model.RoleCompliance, "alice"))
	require.NoError(t, err)
	assert.Equal(t, 2, frozen)

	for _, id := range []string{"u1:0", "u2:0"} {
		u, err := h.store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, utxo.StatusFrozen, u.Status)
	}

	u, err := h.store.Get(ctx, "u3:0")
	require.NoError(t, err)
	assert.Equal(t, utxo.StatusActive, u.Status)

	unfrozen, err := h.manager.UnfreezeOwner(ctx, action("act-2", model.GovActionUnfreeze, "officer-1", model.RoleCompliance, "alice"), "act-1")
	require.NoError(t, err)
	assert.Equal(t, 2, unfrozen)
}
