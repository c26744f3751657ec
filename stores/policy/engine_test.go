package policy

import (
	"testing"
	"time"

	"github.com/lifafa03/USDw-stablecoin-sub000/errors"
	"github.com/lifafa03/USDw-stablecoin-sub000/model"
	"github.com/lifafa03/USDw-stablecoin-sub000/settings"
	"github.com/lifafa03/USDw-stablecoin-sub000/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	e := NewEngine(ulogger.NewVerboseTestLogger(t), settings.NewSettings())
	t.Cleanup(e.Close)

	return e
}

func TestGetPolicy(t *testing.T) {
	e := newTestEngine(t)

	p, err := e.GetPolicy(0)
	require.NoError(t, err)
	assert.Equal(t, e.DefaultVersion(), p.Version)

	_, err = e.GetPolicy(999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrPolicyNotFound))
}

func TestAddPolicyBumpsDefault(t *testing.T) {
	e := newTestEngine(t)

	base := e.DefaultVersion()

	require.NoError(t, e.AddPolicy(&Policy{Version: base + 1, MaxTxAmount: 500}))
	assert.Equal(t, base+1, e.DefaultVersion())

	// older versions stay resolvable
	p, err := e.GetPolicy(base)
	require.NoError(t, err)
	assert.Equal(t, base, p.Version)

	err = e.AddPolicy(&Policy{Version: base + 1})
	require.Error(t, err)
}

func TestAllowsJurisdiction(t *testing.T) {
	p := &Policy{AllowedJurisdictions: []string{"US", "EU"}}

	assert.True(t, p.AllowsJurisdiction("US"))
	assert.False(t, p.AllowsJurisdiction("KP"))

	open := &Policy{}
	assert.True(t, open.AllowsJurisdiction("anywhere"))
}

func TestKYCAndBlacklist(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, model.KYCLevelNone, e.KYCLevel("alice"))

	e.RegisterKYC("alice", model.KYCLevelTier1)
	assert.Equal(t, model.KYCLevelTier1, e.KYCLevel("alice"))

	assert.False(t, e.IsBlacklisted("mallory"))

	e.SetBlacklisted("mallory", true)
	assert.True(t, e.IsBlacklisted("mallory"))

	e.SetBlacklisted("mallory", false)
	assert.False(t, e.IsBlacklisted("mallory"))
}

func TestDailyLimitCheckIsPure(t *testing.T) {
	e := newTestEngine(t)

	p, err := e.GetPolicy(0)
	require.NoError(t, err)

	limit := p.DailyLimit(model.KYCLevelTier0)
	require.Positive(t, limit)

	// repeated checks never consume allowance
	for i := 0; i < 5; i++ {
		require.NoError(t, e.CheckDailyLimit(p, "alice", model.KYCLevelTier0, limit))
	}

	assert.Zero(t, e.DailySpent("alice"))

	err = e.CheckDailyLimit(p, "alice", model.KYCLevelTier0, limit+1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDailyLimit))
}

func TestConsumeDailyLimit(t *testing.T) {
	e := newTestEngine(t)

	p, err := e.GetPolicy(0)
	require.NoError(t, err)

	limit := p.DailyLimit(model.KYCLevelTier0)

	e.ConsumeDailyLimit("alice", limit-10)
	assert.Equal(t, limit-10, e.DailySpent("alice"))

	require.NoError(t, e.CheckDailyLimit(p, "alice", model.KYCLevelTier0, 10))

	err = e.CheckDailyLimit(p, "alice", model.KYCLevelTier0, 11)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDailyLimit))
}

func TestDailyCountersResetAtMidnight(t *testing.T) {
	e := newTestEngine(t)

	// pin the clock just before midnight so the counter ttl is tiny
	e.now = func() time.Time {
		now := time.Now().UTC()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)

		return midnight.Add(-10 * time.Millisecond)
	}

	e.ConsumeDailyLimit("alice", 100)

	assert.Eventually(t, func() bool {
		return e.DailySpent("alice") == 0
	}, 2*time.Second, 20*time.Millisecond)
}
