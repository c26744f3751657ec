// Package policy holds versioned transaction policies and the compliance
// state they are checked against: KYC registrations, blacklists and rolling
// daily limits.
package policy

import (
	"github.com/lifafa03/USDw-stablecoin-sub000/model"
)

// Policy is one immutable version of the transaction rule set. Transactions
// reference the version they were validated against so historical records
// stay interpretable after policy updates.
type Policy struct {
	Version              uint32
	MinTxAmount          uint64
	MaxTxAmount          uint64
	MinBurnAmount        uint64
	MaxMintPerTx         uint64
	MaxSeizeAmount       uint64
	MaxRedeemAmount      uint64
	AllowedJurisdictions []string
	TierDailyLimits      map[model.KYCLevel]uint64
	RoleRequirements     map[model.GovActionType][]model.Role
}

// DefaultRoleRequirements is the governance action table: which roles may
// perform each action type.
func DefaultRoleRequirements() map[model.GovActionType][]model.Role {
	return map[model.GovActionType][]model.Role{
		model.GovActionFreeze:        {model.RoleCompliance},
		model.GovActionUnfreeze:      {model.RoleCompliance, model.RoleAdmin},
		model.GovActionSeize:         {model.RoleAdmin},
		model.GovActionRedeem:        {model.RoleIssuer},
		model.GovActionAttestReserve: {model.RoleAuditor},
	}
}

// AllowsJurisdiction reports whether j is in the policy's allow list. An
// empty list allows everything.
func (p *Policy) AllowsJurisdiction(j string) bool {
	if len(p.AllowedJurisdictions) == 0 {
		return true
	}

	for _, allowed := range p.AllowedJurisdictions {
		if allowed == j {
			return true
		}
	}

	return false
}

// DailyLimit returns the daily transfer limit for a KYC level. Levels without
// an entry get no allowance.
func (p *Policy) DailyLimit(level model.KYCLevel) uint64 {
	if p.TierDailyLimits == nil {
		return 0
	}

	return p.TierDailyLimits[level]
}
