package errors

var (
	ErrUnknown             = New(ERR_UNKNOWN, "unknown error")
	ErrInvalidArgument     = New(ERR_INVALID_ARGUMENT, "invalid argument")
	ErrProcessing          = New(ERR_PROCESSING, "error processing")
	ErrConfiguration       = New(ERR_CONFIGURATION, "configuration error")
	ErrContextCanceled     = New(ERR_CONTEXT_CANCELED, "context canceled")
	ErrError               = New(ERR_ERROR, "generic error")
	ErrTxInvalid           = New(ERR_TX_INVALID, "tx invalid")
	ErrTxNotFound          = New(ERR_TX_NOT_FOUND, "tx not found")
	ErrTxAlreadyExists     = New(ERR_TX_ALREADY_EXISTS, "tx already exists")
	ErrTxConservation      = New(ERR_TX_CONSERVATION, "tx input and output amounts differ")
	ErrUtxoNotFound        = New(ERR_UTXO_NOT_FOUND, "utxo not found")
	ErrSpent               = New(ERR_UTXO_SPENT, "utxo already spent")
	ErrFrozen              = New(ERR_UTXO_FROZEN, "utxo frozen")
	ErrSeized              = New(ERR_UTXO_SEIZED, "utxo seized")
	ErrUtxoInvalidStatus   = New(ERR_UTXO_INVALID_STATUS, "utxo status transition not allowed")
	ErrCompliance          = New(ERR_COMPLIANCE, "compliance check failed")
	ErrBlacklisted         = New(ERR_BLACKLISTED, "party is blacklisted")
	ErrKYCTier             = New(ERR_KYC_TIER, "kyc tier insufficient")
	ErrDailyLimit          = New(ERR_DAILY_LIMIT, "daily limit exceeded")
	ErrJurisdiction        = New(ERR_JURISDICTION, "jurisdiction not allowed")
	ErrUnauthorized        = New(ERR_UNAUTHORIZED, "unauthorized")
	ErrCooldownActive      = New(ERR_COOLDOWN_ACTIVE, "cooldown active")
	ErrAmountLimit         = New(ERR_AMOUNT_LIMIT, "amount exceeds limit")
	ErrPolicyNotFound      = New(ERR_POLICY_NOT_FOUND, "policy not found")
	ErrReserveExceeded     = New(ERR_RESERVE_EXCEEDED, "mint exceeds verified reserves")
	ErrVerificationFailed  = New(ERR_VERIFICATION_FAILED, "signature verification failed")
	ErrVerificationTimeout = New(ERR_VERIFICATION_TIMEOUT, "verification timed out")
	ErrInvariantViolation  = New(ERR_INVARIANT_VIOLATION, "ledger invariant violated")
	ErrStorageError        = New(ERR_STORAGE_ERROR, "storage error")
	ErrServiceError        = New(ERR_SERVICE_ERROR, "service error")
)

// errors initialization functions

func NewUnknownError(message string, params ...interface{}) error {
	return New(ERR_UNKNOWN, message, params...)
}
func NewInvalidArgumentError(message string, params ...interface{}) error {
	return New(ERR_INVALID_ARGUMENT, message, params...)
}
func NewProcessingError(message string, params ...interface{}) error {
	return New(ERR_PROCESSING, message, params...)
}
func NewConfigurationError(message string, params ...interface{}) error {
	return New(ERR_CONFIGURATION, message, params...)
}
func NewContextCanceledError(message string, params ...interface{}) error {
	return New(ERR_CONTEXT_CANCELED, message, params...)
}
func NewError(message string, params ...interface{}) error {
	return New(ERR_ERROR, message, params...)
}
func NewTxInvalidError(message string, params ...interface{}) error {
	return New(ERR_TX_INVALID, message, params...)
}
func NewTxNotFoundError(message string, params ...interface{}) error {
	return New(ERR_TX_NOT_FOUND, message, params...)
}
func NewTxAlreadyExistsError(message string, params ...interface{}) error {
	return New(ERR_TX_ALREADY_EXISTS, message, params...)
}
func NewTxConservationError(message string, params ...interface{}) error {
	return New(ERR_TX_CONSERVATION, message, params...)
}
func NewUtxoNotFoundError(message string, params ...interface{}) error {
	return New(ERR_UTXO_NOT_FOUND, message, params...)
}
func NewSpentError(message string, params ...interface{}) error {
	return New(ERR_UTXO_SPENT, message, params...)
}
func NewFrozenError(message string, params ...interface{}) error {
	return New(ERR_UTXO_FROZEN, message, params...)
}
func NewSeizedError(message string, params ...interface{}) error {
	return New(ERR_UTXO_SEIZED, message, params...)
}
func NewUtxoInvalidStatusError(message string, params ...interface{}) error {
	return New(ERR_UTXO_INVALID_STATUS, message, params...)
}
func NewComplianceError(message string, params ...interface{}) error {
	return New(ERR_COMPLIANCE, message, params...)
}
func NewBlacklistedError(message string, params ...interface{}) error {
	return New(ERR_BLACKLISTED, message, params...)
}
func NewKYCTierError(message string, params ...interface{}) error {
	return New(ERR_KYC_TIER, message, params...)
}
func NewDailyLimitError(message string, params ...interface{}) error {
	return New(ERR_DAILY_LIMIT, message, params...)
}
func NewJurisdictionError(message string, params ...interface{}) error {
	return New(ERR_JURISDICTION, message, params...)
}
func NewUnauthorizedError(message string, params ...interface{}) error {
	return New(ERR_UNAUTHORIZED, message, params...)
}
func NewAmountLimitError(message string, params ...interface{}) error {
	return New(ERR_AMOUNT_LIMIT, message, params...)
}
func NewPolicyNotFoundError(message string, params ...interface{}) error {
	return New(ERR_POLICY_NOT_FOUND, message, params...)
}
func NewReserveExceededError(message string, params ...interface{}) error {
	return New(ERR_RESERVE_EXCEEDED, message, params...)
}
func NewVerificationFailedError(message string, params ...interface{}) error {
	return New(ERR_VERIFICATION_FAILED, message, params...)
}
func NewVerificationTimeoutError(message string, params ...interface{}) error {
	return New(ERR_VERIFICATION_TIMEOUT, message, params...)
}
func NewInvariantViolationError(message string, params ...interface{}) error {
	return New(ERR_INVARIANT_VIOLATION, message, params...)
}
func NewStorageError(message string, params ...interface{}) error {
	return New(ERR_STORAGE_ERROR, message, params...)
}
func NewServiceError(message string, params ...interface{}) error {
	return New(ERR_SERVICE_ERROR, message, params...)
}
