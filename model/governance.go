package model

import "time"

// GovActionType discriminates privileged ledger mutations.
type GovActionType int

const (
	GovActionUnknown GovActionType = iota
	GovActionFreeze
	GovActionUnfreeze
	GovActionSeize
	GovActionRedeem
	GovActionAttestReserve
)

func (t GovActionType) String() string {
	switch t {
	case GovActionFreeze:
		return "Freeze"
	case GovActionUnfreeze:
		return "Unfreeze"
	case GovActionSeize:
		return "Seize"
	case GovActionRedeem:
		return "Redeem"
	case GovActionAttestReserve:
		return "AttestReserve"
	default:
		return "Unknown"
	}
}

// GovernanceAction is a privileged state mutation request. Target is a utxo
// id for Freeze/Unfreeze/Seize, an owner id for Redeem and the asset code for
// AttestReserve.
type GovernanceAction struct {
	ActionID  string
	Type      GovActionType
	Actor     string
	ActorRole Role
	Target    string
	Reason    string
	Amount    uint64
	PayoutRef string
	Proof     []byte
	Timestamp time.Time
	Signature Signature
}
