package settings

import (
	"strings"
	"time"
)

func NewSettings() *Settings {
	return &Settings{
		Ledger: LedgerSettings{
			AssetCode:       getString("ledger_assetCode", "USDw"),
			MaxTxAmount:     getUint64("ledger_maxTxAmount", 1_000_000_000_000), // 10B USDw in cents
			VerifierTimeout: getDuration("ledger_verifierTimeout", 2*time.Second),
			HistoryPageSize: getInt("ledger_historyPageSize", 100),
		},
		Policy: PolicySettings{
			DefaultVersion:       1,
			MinTxAmount:          getUint64("policy_minTxAmount", 1),
			MaxTxAmount:          getUint64("policy_maxTxAmount", 1_000_000),
			MinBurnAmount:        getUint64("policy_minBurnAmount", 1),
			MaxMintPerTx:         getUint64("policy_maxMintPerTx", 1_000_000),
			MaxSeizeAmount:       getUint64("policy_maxSeizeAmount", 1_000_000),
			MaxRedeemAmount:      getUint64("policy_maxRedeemAmount", 1_000_000),
			AllowedJurisdictions: strings.Split(getString("policy_allowedJurisdictions", "US|EU|UK|NG"), "|"),
			Tier0DailyLimit:      getUint64("policy_tier0DailyLimit", 10_000),
			Tier1DailyLimit:      getUint64("policy_tier1DailyLimit", 100_000),
			Tier2DailyLimit:      getUint64("policy_tier2DailyLimit", 1_000_000),
		},
		Governance: GovernanceSettings{
			UnfreezeCooldown: getDuration("governance_unfreezeCooldown", 24*time.Hour),
			RedeemCooldown:   getDuration("governance_redeemCooldown", time.Hour),
			AttestCooldown:   getDuration("governance_attestCooldown", 6*time.Hour),
		},
		UtxoStore: UtxoStoreSettings{
			StoreURL:  getURL("utxostore", "sqlite:///utxostore"),
			DBTimeout: getDuration("utxostore_dbTimeout", 5*time.Second),
		},
		Kafka: KafkaSettings{
			Hosts:      getString("KAFKA_HOSTS", ""),
			AuditTopic: getString("KAFKA_AUDIT", "usdw-audit"),
		},
		Tracing: TracingSettings{
			Enabled:      getBool("tracing_enabled", false),
			CollectorURL: getURL("tracing_collectorURL", "http://localhost:4318"),
			SampleRate:   getFloat64("tracing_sampleRate", 1.0),
			ServiceName:  getString("SERVICE_NAME", "usdw-ledger"),
		},
	}
}
