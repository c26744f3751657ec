package policy

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/lifafa03/USDw-stablecoin-sub000/errors"
	"github.com/lifafa03/USDw-stablecoin-sub000/model"
	"github.com/lifafa03/USDw-stablecoin-sub000/settings"
	"github.com/lifafa03/USDw-stablecoin-sub000/ulogger"
)

// Engine resolves policy versions and answers compliance queries. Daily
// spending counters live in a ttl cache and expire at the next UTC midnight.
type Engine struct {
	logger         ulogger.Logger
	mu             sync.RWMutex
	policies       map[uint32]*Policy
	defaultVersion uint32
	kyc            map[string]model.KYCLevel
	blacklist      map[string]bool
	dailySpent     *ttlcache.Cache[string, uint64]
	now            func() time.Time
}

func NewEngine(logger ulogger.Logger, tSettings *settings.Settings) *Engine {
	e := &Engine{
		logger:    logger,
		policies:  make(map[uint32]*Policy),
		kyc:       make(map[string]model.KYCLevel),
		blacklist: make(map[string]bool),
		dailySpent: ttlcache.New[string, uint64](
			ttlcache.WithDisableTouchOnHit[string, uint64](),
		),
		now: func() time.Time { return time.Now().UTC() },
	}

	go e.dailySpent.Start()

	defaultPolicy := &Policy{
		Version:              tSettings.Policy.DefaultVersion,
		MinTxAmount:          tSettings.Policy.MinTxAmount,
		MaxTxAmount:          tSettings.Policy.MaxTxAmount,
		MinBurnAmount:        tSettings.Policy.MinBurnAmount,
		MaxMintPerTx:         tSettings.Policy.MaxMintPerTx,
		MaxSeizeAmount:       tSettings.Policy.MaxSeizeAmount,
		MaxRedeemAmount:      tSettings.Policy.MaxRedeemAmount,
		AllowedJurisdictions: tSettings.Policy.AllowedJurisdictions,
		TierDailyLimits: map[model.KYCLevel]uint64{
			model.KYCLevelTier0: tSettings.Policy.Tier0DailyLimit,
			model.KYCLevelTier1: tSettings.Policy.Tier1DailyLimit,
			model.KYCLevelTier2: tSettings.Policy.Tier2DailyLimit,
		},
		RoleRequirements: DefaultRoleRequirements(),
	}

	e.policies[defaultPolicy.Version] = defaultPolicy
	e.defaultVersion = defaultPolicy.Version

	return e
}

// Close stops the daily counter janitor.
func (e *Engine) Close() {
	e.dailySpent.Stop()
}

// AddPolicy registers a new policy version and makes it the default when its
// version is higher than the current default.
func (e *Engine) AddPolicy(p *Policy) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.policies[p.Version]; ok {
		return errors.NewInvalidArgumentError("policy version %d already registered", p.Version)
	}

	e.policies[p.Version] = p

	if p.Version > e.defaultVersion {
		e.defaultVersion = p.Version
	}

	return nil
}

// GetPolicy resolves a policy reference. Version 0 resolves to the current
// default.
func (e *Engine) GetPolicy(version uint32) (*Policy, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if version == 0 {
		version = e.defaultVersion
	}

	p, ok := e.policies[version]
	if !ok {
		return nil, errors.NewPolicyNotFoundError("policy version %d not found", version)
	}

	return p, nil
}

// DefaultVersion returns the version GetPolicy(0) resolves to.
func (e *Engine) DefaultVersion() uint32 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.defaultVersion
}

func (e *Engine) RegisterKYC(party string, level model.KYCLevel) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.kyc[party] = level
}

func (e *Engine) KYCLevel(party string) model.KYCLevel {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.kyc[party]
}

func (e *Engine) SetBlacklisted(party string, blacklisted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if blacklisted {
		e.blacklist[party] = true
	} else {
		delete(e.blacklist, party)
	}
}

func (e *Engine) IsBlacklisted(party string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.blacklist[party]
}

// DailySpent returns the amount party has moved in the current UTC day.
func (e *Engine) DailySpent(party string) uint64 {
	item := e.dailySpent.Get(party)
	if item == nil {
		return 0
	}

	return item.Value()
}

// CheckDailyLimit reports whether party can move amount more today under
// policy p. It never mutates the counters, so a transaction rejected at a
// later validation stage leaves no trace here.
func (e *Engine) CheckDailyLimit(p *Policy, party string, level model.KYCLevel, amount uint64) error {
	limit := p.DailyLimit(level)
	spent := e.DailySpent(party)

	if spent+amount > limit {
		return errors.NewDailyLimitError("party %s would exceed daily limit %d for %s: spent %d, requested %d", party, limit, level, spent, amount)
	}

	return nil
}

// ConsumeDailyLimit records amount against party's counter for the current
// UTC day. Called once per committed transaction.
func (e *Engine) ConsumeDailyLimit(party string, amount uint64) {
	spent := e.DailySpent(party)

	e.dailySpent.Set(party, spent+amount, e.untilMidnight())
}

func (e *Engine) untilMidnight() time.Duration {
	now := e.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)

	return midnight.Sub(now)
}
