package settings

import (
	"net/url"
	"time"
)

type LedgerSettings struct {
	AssetCode       string
	MaxTxAmount     uint64
	VerifierTimeout time.Duration
	HistoryPageSize int
}

type PolicySettings struct {
	DefaultVersion       uint32
	MinTxAmount          uint64
	MaxTxAmount          uint64
	MinBurnAmount        uint64
	MaxMintPerTx         uint64
	MaxSeizeAmount       uint64
	MaxRedeemAmount      uint64
	AllowedJurisdictions []string
	Tier0DailyLimit      uint64
	Tier1DailyLimit      uint64
	Tier2DailyLimit      uint64
}

type GovernanceSettings struct {
	UnfreezeCooldown time.Duration
	RedeemCooldown   time.Duration
	AttestCooldown   time.Duration
}

type UtxoStoreSettings struct {
	StoreURL  *url.URL
	DBTimeout time.Duration
}

type KafkaSettings struct {
	Hosts      string
	AuditTopic string
}

type TracingSettings struct {
	Enabled      bool
	CollectorURL *url.URL
	SampleRate   float64
	ServiceName  string
}

type Settings struct {
	Ledger     LedgerSettings
	Policy     PolicySettings
	Governance GovernanceSettings
	UtxoStore  UtxoStoreSettings
	Kafka      KafkaSettings
	Tracing    TracingSettings
}
