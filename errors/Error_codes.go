package errors

// ERR is the numeric error code carried by every *Error. Codes are grouped in
// blocks: 0-9 generic, 10-19 transaction, 20-29 utxo, 30-39 compliance,
// 40-49 governance, 50-59 policy, 60-69 verification, 70-79 storage/service.
type ERR int32

const (
	ERR_UNKNOWN             ERR = 0
	ERR_INVALID_ARGUMENT    ERR = 1
	ERR_PROCESSING          ERR = 2
	ERR_CONFIGURATION       ERR = 3
	ERR_CONTEXT_CANCELED    ERR = 4
	ERR_ERROR               ERR = 5
	ERR_TX_INVALID          ERR = 10
	ERR_TX_NOT_FOUND        ERR = 11
	ERR_TX_ALREADY_EXISTS   ERR = 12
	ERR_TX_CONSERVATION     ERR = 13
	ERR_UTXO_NOT_FOUND      ERR = 20
	ERR_UTXO_SPENT          ERR = 21
	ERR_UTXO_FROZEN         ERR = 22
	ERR_UTXO_SEIZED         ERR = 23
	ERR_UTXO_INVALID_STATUS ERR = 24
	ERR_COMPLIANCE          ERR = 30
	ERR_BLACKLISTED         ERR = 31
	ERR_KYC_TIER            ERR = 32
	ERR_DAILY_LIMIT         ERR = 33
	ERR_JURISDICTION        ERR = 34
	ERR_UNAUTHORIZED        ERR = 40
	ERR_COOLDOWN_ACTIVE     ERR = 41
	ERR_AMOUNT_LIMIT        ERR = 42
	ERR_POLICY_NOT_FOUND    ERR = 50
	ERR_RESERVE_EXCEEDED    ERR = 51
	ERR_VERIFICATION_FAILED ERR = 60
	ERR_VERIFICATION_TIMEOUT ERR = 61
	ERR_INVARIANT_VIOLATION ERR = 70
	ERR_STORAGE_ERROR       ERR = 71
	ERR_SERVICE_ERROR       ERR = 72
)

var ERR_name = map[int32]string{
	0:  "ERR_UNKNOWN",
	1:  "ERR_INVALID_ARGUMENT",
	2:  "ERR_PROCESSING",
	3:  "ERR_CONFIGURATION",
	4:  "ERR_CONTEXT_CANCELED",
	5:  "ERR_ERROR",
	10: "ERR_TX_INVALID",
	11: "ERR_TX_NOT_FOUND",
	12: "ERR_TX_ALREADY_EXISTS",
	13: "ERR_TX_CONSERVATION",
	20: "ERR_UTXO_NOT_FOUND",
	21: "ERR_UTXO_SPENT",
	22: "ERR_UTXO_FROZEN",
	23: "ERR_UTXO_SEIZED",
	24: "ERR_UTXO_INVALID_STATUS",
	30: "ERR_COMPLIANCE",
	31: "ERR_BLACKLISTED",
	32: "ERR_KYC_TIER",
	33: "ERR_DAILY_LIMIT",
	34: "ERR_JURISDICTION",
	40: "ERR_UNAUTHORIZED",
	41: "ERR_COOLDOWN_ACTIVE",
	42: "ERR_AMOUNT_LIMIT",
	50: "ERR_POLICY_NOT_FOUND",
	51: "ERR_RESERVE_EXCEEDED",
	60: "ERR_VERIFICATION_FAILED",
	61: "ERR_VERIFICATION_TIMEOUT",
	70: "ERR_INVARIANT_VIOLATION",
	71: "ERR_STORAGE_ERROR",
	72: "ERR_SERVICE_ERROR",
}

var ERR_value = func() map[string]int32 {
	m := make(map[string]int32, len(ERR_name))
	for v, name := range ERR_name {
		m[name] = v
	}

	return m
}()

func (e ERR) String() string {
	if name, ok := ERR_name[int32(e)]; ok {
		return name
	}

	return "ERR_UNKNOWN"
}
