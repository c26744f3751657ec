package validator

import (
	"context"
	"net/http"
	"time"

	"github.com/lifafa03/USDw-stablecoin-sub000/errors"
	"github.com/lifafa03/USDw-stablecoin-sub000/model"
	"github.com/lifafa03/USDw-stablecoin-sub000/settings"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/policy"
	"github.com/lifafa03/USDw-stablecoin-sub000/stores/utxo"
	"github.com/lifafa03/USDw-stablecoin-sub000/ulogger"
	"github.com/lifafa03/USDw-stablecoin-sub000/util/tracing"
	"github.com/lifafa03/USDw-stablecoin-sub000/verifier"
)

var _ Interface = &TxValidator{}

// TxValidator runs the validation pipeline against live ledger state. It
// holds no mutable state of its own.
type TxValidator struct {
	logger       ulogger.Logger
	settings     *settings.Settings
	utxoStore    utxo.Store
	policyEngine *policy.Engine
	verifier     verifier.Interface
}

func New(logger ulogger.Logger, tSettings *settings.Settings, utxoStore utxo.Store, policyEngine *policy.Engine, v verifier.Interface) *TxValidator {
	initPrometheusMetrics()

	return &TxValidator{
		logger:       logger,
		settings:     tSettings,
		utxoStore:    utxoStore,
		policyEngine: policyEngine,
		verifier:     verifier.NewBounded(v, tSettings.Ledger.VerifierTimeout),
	}
}

func (tv *TxValidator) Health(_ context.Context, _ bool) (int, string, error) {
	prometheusHealth.Inc()

	return http.StatusOK, "Validator", nil
}

func (tv *TxValidator) Validate(ctx context.Context, tx model.Transaction, opts ...Option) (*NormalizedTx, error) {
	start := time.Now()
	defer func() {
		prometheusTransactionValidateTotal.Observe(float64(time.Since(start).Microseconds()))
	}()

	ctx, span := tracing.Start(ctx, "Validate")
	defer span.End()

	options := ProcessOptions(opts...)

	if err := tv.validateStructure(tx); err != nil {
		prometheusInvalidTransactions.WithLabelValues("structure").Inc()
		return nil, err
	}

	p, err := tv.resolvePolicy(tx)
	if err != nil {
		prometheusInvalidTransactions.WithLabelValues("policy").Inc()
		return nil, err
	}

	inputs, err := tv.resolveInputs(ctx, tx)
	if err != nil {
		prometheusInvalidTransactions.WithLabelValues("inputs").Inc()
		return nil, err
	}

	if !options.skipComplianceChecks {
		if err = tv.checkCompliance(tx, p, inputs); err != nil {
			prometheusInvalidTransactions.WithLabelValues("compliance").Inc()
			return nil, err
		}
	}

	normalized, err := tv.checkBusinessRules(ctx, tx, p, inputs, options)
	if err != nil {
		prometheusInvalidTransactions.WithLabelValues("business").Inc()
		return nil, err
	}

	return normalized, nil
}

// validateStructure is the schema stage: shape, positive amounts, unique
// inputs, presence of signatures. Nothing here touches a store.
func (tv *TxValidator) validateStructure(tx model.Transaction) error {
	if tx == nil {
		return errors.NewTxInvalidError("transaction is nil")
	}

	common := tx.Common()

	if common.TxID == "" {
		return errors.NewTxInvalidError("transaction has no id")
	}

	if common.Timestamp.IsZero() {
		return errors.NewTxInvalidError("transaction %s has no timestamp", common.TxID)
	}

	if len(common.Signatures) == 0 {
		return errors.NewTxInvalidError("transaction %s has no signatures", common.TxID)
	}

	var (
		inputs  []model.Input
		outputs []model.Output
	)

	switch t := tx.(type) {
	case *model.Mint:
		outputs = t.Outputs

		if len(outputs) == 0 {
			return errors.NewTxInvalidError("mint %s has no outputs", common.TxID)
		}

	case *model.Transfer:
		inputs = t.Inputs
		outputs = t.Outputs

		if len(inputs) == 0 {
			return errors.NewTxInvalidError("transfer %s has no inputs", common.TxID)
		}

		if len(outputs) == 0 {
			return errors.NewTxInvalidError("transfer %s has no outputs", common.TxID)
		}

	case *model.Burn:
		inputs = t.Inputs

		if len(inputs) == 0 {
			return errors.NewTxInvalidError("burn %s has no inputs", common.TxID)
		}

	default:
		return errors.NewTxInvalidError("transaction %s has unknown kind", common.TxID)
	}

	seen := make(map[string]bool, len(inputs))

	for _, in := range inputs {
		if in.UTXOID == "" {
			return errors.NewTxInvalidError("transaction %s has input without utxo id", common.TxID)
		}

		if seen[in.UTXOID] {
			return errors.NewTxInvalidError("transaction %s spends %s twice", common.TxID, in.UTXOID)
		}

		seen[in.UTXOID] = true
	}

	for i, out := range outputs {
		if out.Owner == "" {
			return errors.NewTxInvalidError("transaction %s output %d has no owner", common.TxID, i)
		}

		if out.Amount == 0 {
			return errors.NewTxInvalidError("transaction %s output %d has zero amount", common.TxID, i)
		}
	}

	return nil
}

// resolvePolicy is the policy stage: pin the policy version and check amount
// bounds against it.
func (tv *TxValidator) resolvePolicy(tx model.Transaction) (*policy.Policy, error) {
	common := tx.Common()

	p, err := tv.policyEngine.GetPolicy(common.PolicyRef)
	if err != nil {
		return nil, err
	}

	// burn amounts are only known after input resolution, their bounds are
	// checked in the business stage
	if _, ok := tx.(*model.Burn); !ok {
		amount := sumOutputs(txOutputs(tx))

		if p.MinTxAmount > 0 && amount < p.MinTxAmount {
			return nil, errors.NewAmountLimitError("transaction %s amount %d below minimum %d", common.TxID, amount, p.MinTxAmount)
		}

		if p.MaxTxAmount > 0 && amount > p.MaxTxAmount {
			return nil, errors.NewAmountLimitError("transaction %s amount %d above maximum %d", common.TxID, amount, p.MaxTxAmount)
		}
	}

	if t, ok := tx.(*model.Mint); ok {
		if p.MaxMintPerTx > 0 && sumOutputs(t.Outputs) > p.MaxMintPerTx {
			return nil, errors.NewAmountLimitError("mint %s exceeds per-transaction mint cap %d", common.TxID, p.MaxMintPerTx)
		}
	}

	return p, nil
}

// resolveInputs is the utxo stage: every input must exist and be active.
func (tv *TxValidator) resolveInputs(ctx context.Context, tx model.Transaction) ([]*utxo.UTXO, error) {
	inputs := txInputs(tx)
	resolved := make([]*utxo.UTXO, 0, len(inputs))

	for _, in := range inputs {
		u, err := tv.utxoStore.Get(ctx, in.UTXOID)
		if err != nil {
			return nil, err
		}

		switch u.Status {
		case utxo.StatusActive:
			// ok
		case utxo.StatusSpent:
			return nil, errors.NewUtxoSpentErr(u.ID, u.SpendingTxID, tx.Common().Timestamp, nil)
		case utxo.StatusFrozen:
			return nil, errors.NewFrozenError("utxo %s is frozen", u.ID)
		case utxo.StatusSeized:
			return nil, errors.NewSeizedError("utxo %s is seized", u.ID)
		default:
			return nil, errors.NewUtxoInvalidStatusError("utxo %s has unknown status %s", u.ID, u.Status)
		}

		resolved = append(resolved, u)
	}

	return resolved, nil
}

// checkCompliance is the compliance stage: blacklists, jurisdictions, KYC
// tiers and daily limits. It reads the policy engine but never writes it.
func (tv *TxValidator) checkCompliance(tx model.Transaction, p *policy.Policy, inputs []*utxo.UTXO) error {
	common := tx.Common()

	for _, u := range inputs {
		if tv.policyEngine.IsBlacklisted(u.Owner) {
			return errors.NewBlacklistedError("party %s is blacklisted", u.Owner)
		}
	}

	for _, out := range txOutputs(tx) {
		if tv.policyEngine.IsBlacklisted(out.Owner) {
			return errors.NewBlacklistedError("party %s is blacklisted", out.Owner)
		}

		if !p.AllowsJurisdiction(out.Jurisdiction) {
			return errors.NewJurisdictionError("jurisdiction %s not allowed for output to %s", out.Jurisdiction, out.Owner)
		}

		if tv.policyEngine.KYCLevel(out.Owner) < out.KYCTag {
			return errors.NewKYCTierError("party %s does not meet tier %s required by output", out.Owner, out.KYCTag)
		}
	}

	// daily limits apply to both sides of a transfer: net value leaving each
	// sender and net value arriving at each recipient
	if _, ok := tx.(*model.Transfer); ok {
		for party, moved := range netFlows(tx, inputs) {
			level := tv.policyEngine.KYCLevel(party)
			if level == model.KYCLevelNone {
				return errors.NewKYCTierError("party %s has no kyc registration", party)
			}

			if err := tv.policyEngine.CheckDailyLimit(p, party, level, moved); err != nil {
				return errors.NewComplianceError("transaction %s failed daily limit check", common.TxID, err)
			}
		}
	}

	return nil
}

// checkBusinessRules is the final stage: value conservation, reserve backing,
// authorization. On success it assembles the normalized transaction.
func (tv *TxValidator) checkBusinessRules(ctx context.Context, tx model.Transaction, p *policy.Policy, inputs []*utxo.UTXO, options *Options) (*NormalizedTx, error) {
	common := tx.Common()
	inputSum := sumInputs(inputs)
	outputs := txOutputs(tx)
	outputSum := sumOutputs(outputs)

	switch tx.(type) {
	case *model.Transfer:
		if inputSum != outputSum {
			return nil, errors.NewTxConservationError("transfer %s inputs %d != outputs %d", common.TxID, inputSum, outputSum)
		}

		if err := tv.checkOwnerAuthorization(ctx, tx, inputs, options); err != nil {
			return nil, err
		}

	case *model.Burn:
		if p.MinBurnAmount > 0 && inputSum < p.MinBurnAmount {
			return nil, errors.NewAmountLimitError("burn %s amount %d below minimum burn amount %d", common.TxID, inputSum, p.MinBurnAmount)
		}

		if p.MaxTxAmount > 0 && inputSum > p.MaxTxAmount {
			return nil, errors.NewAmountLimitError("burn %s amount %d above maximum %d", common.TxID, inputSum, p.MaxTxAmount)
		}

		if err := tv.checkBurnAuthorization(ctx, tx, inputs, options); err != nil {
			return nil, err
		}

	case *model.Mint:
		if err := tv.checkIssuerAuthorization(ctx, tx, options); err != nil {
			return nil, err
		}

		if err := tv.checkReserveBacking(ctx, outputSum); err != nil {
			return nil, err
		}
	}

	amount := outputSum
	if _, ok := tx.(*model.Burn); ok {
		amount = inputSum
	}

	normalized := &NormalizedTx{
		Tx:         tx,
		Policy:     p,
		Inputs:     inputs,
		Amount:     amount,
		DailySpend: map[string]uint64{},
	}

	if _, ok := tx.(*model.Transfer); ok {
		normalized.DailySpend = netFlows(tx, inputs)
	}

	normalized.Spends = make([]*utxo.Spend, 0, len(inputs))
	for _, u := range inputs {
		normalized.Spends = append(normalized.Spends, &utxo.Spend{
			UtxoID:       u.ID,
			SpendingTxID: common.TxID,
			SpendingTime: common.Timestamp,
		})
	}

	normalized.NewUtxos = make([]*utxo.UTXO, 0, len(outputs))
	for i, out := range outputs {
		normalized.NewUtxos = append(normalized.NewUtxos, &utxo.UTXO{
			ID:           model.UTXOID(common.TxID, i),
			TxID:         common.TxID,
			Vout:         uint32(i),
			Owner:        out.Owner,
			Amount:       out.Amount,
			Status:       utxo.StatusActive,
			Jurisdiction: out.Jurisdiction,
			KYCTag:       out.KYCTag.String(),
			CreatedAt:    common.Timestamp,
		})
	}

	owners := make(map[string]bool)
	for _, u := range inputs {
		owners[u.Owner] = true
	}

	for _, out := range outputs {
		owners[out.Owner] = true
	}

	normalized.Owners = make([]string, 0, len(owners))
	for owner := range owners {
		normalized.Owners = append(normalized.Owners, owner)
	}

	return normalized, nil
}

// checkOwnerAuthorization requires a verified owner signature for every input
// owner.
func (tv *TxValidator) checkOwnerAuthorization(ctx context.Context, tx model.Transaction, inputs []*utxo.UTXO, options *Options) error {
	common := tx.Common()

	signedBy := make(map[string]*model.Signature, len(common.Signatures))
	for i := range common.Signatures {
		sig := &common.Signatures[i]
		signedBy[sig.Signer] = sig
	}

	for _, u := range inputs {
		sig, ok := signedBy[u.Owner]
		if !ok {
			return errors.NewUnauthorizedError("transaction %s is missing a signature from %s", common.TxID, u.Owner)
		}

		if options.skipSignatureChecks {
			continue
		}

		valid, err := tv.verifier.Verify(ctx, model.RoleOwner, sig.PayloadHash, sig.Bytes)
		if err != nil {
			return err
		}

		if !valid {
			return errors.NewVerificationFailedError("transaction %s signature from %s failed verification", common.TxID, u.Owner)
		}
	}

	return nil
}

// checkBurnAuthorization accepts a verified issuer signature as an
// alternative to owner signatures covering every input.
func (tv *TxValidator) checkBurnAuthorization(ctx context.Context, tx model.Transaction, inputs []*utxo.UTXO, options *Options) error {
	common := tx.Common()

	for i := range common.Signatures {
		sig := &common.Signatures[i]

		if sig.Role != model.RoleIssuer {
			continue
		}

		if options.skipSignatureChecks {
			return nil
		}

		valid, err := tv.verifier.Verify(ctx, model.RoleIssuer, sig.PayloadHash, sig.Bytes)
		if err != nil {
			return err
		}

		if !valid {
			return errors.NewVerificationFailedError("burn %s issuer signature failed verification", common.TxID)
		}

		return nil
	}

	return tv.checkOwnerAuthorization(ctx, tx, inputs, options)
}

// checkIssuerAuthorization requires a verified issuer signature on a mint.
func (tv *TxValidator) checkIssuerAuthorization(ctx context.Context, tx model.Transaction, options *Options) error {
	common := tx.Common()

	for i := range common.Signatures {
		sig := &common.Signatures[i]

		if sig.Role != model.RoleIssuer {
			continue
		}

		if options.skipSignatureChecks {
			return nil
		}

		valid, err := tv.verifier.Verify(ctx, model.RoleIssuer, sig.PayloadHash, sig.Bytes)
		if err != nil {
			return err
		}

		if !valid {
			return errors.NewVerificationFailedError("mint %s issuer signature failed verification", common.TxID)
		}

		return nil
	}

	return errors.NewUnauthorizedError("mint %s has no issuer signature", common.TxID)
}

// checkReserveBacking rejects a mint that would push total supply past the
// attested reserves.
func (tv *TxValidator) checkReserveBacking(ctx context.Context, mintAmount uint64) error {
	supply, err := tv.utxoStore.TotalSupply(ctx)
	if err != nil {
		return err
	}

	reserves, err := tv.utxoStore.VerifiedReserves(ctx)
	if err != nil {
		return err
	}

	if supply+mintAmount > reserves.Amount {
		return errors.NewReserveExceededError("mint of %d would take supply %d past verified reserves %d", mintAmount, supply, reserves.Amount)
	}

	return nil
}

func txInputs(tx model.Transaction) []model.Input {
	switch t := tx.(type) {
	case *model.Transfer:
		return t.Inputs
	case *model.Burn:
		return t.Inputs
	default:
		return nil
	}
}

func txOutputs(tx model.Transaction) []model.Output {
	switch t := tx.(type) {
	case *model.Mint:
		return t.Outputs
	case *model.Transfer:
		return t.Outputs
	default:
		return nil
	}
}

func sumInputs(inputs []*utxo.UTXO) uint64 {
	var sum uint64
	for _, u := range inputs {
		sum += u.Amount
	}

	return sum
}

func sumOutputs(outputs []model.Output) uint64 {
	var sum uint64
	for _, out := range outputs {
		sum += out.Amount
	}

	return sum
}

// netFlows computes the net value moved per party in a transfer: for input
// owners the consumed inputs minus change returned to them, for recipients
// the value received beyond what they put in. Change back to the sender
// counts toward neither side.
func netFlows(tx model.Transaction, inputs []*utxo.UTXO) map[string]uint64 {
	consumed := make(map[string]uint64)
	for _, u := range inputs {
		consumed[u.Owner] += u.Amount
	}

	received := make(map[string]uint64)
	for _, out := range txOutputs(tx) {
		received[out.Owner] += out.Amount
	}

	flows := make(map[string]uint64, len(consumed)+len(received))

	for owner, amount := range consumed {
		if amount > received[owner] {
			flows[owner] = amount - received[owner]
		}
	}

	for owner, amount := range received {
		if amount > consumed[owner] {
			flows[owner] = amount - consumed[owner]
		}
	}

	return flows
}
