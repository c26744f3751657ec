package errors

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorCodeToGRPCCode maps ledger error codes to gRPC status codes for the
// host platform's transport layer.
func ErrorCodeToGRPCCode(code ERR) codes.Code {
	switch code {
	case ERR_INVALID_ARGUMENT, ERR_TX_INVALID, ERR_TX_CONSERVATION:
		return codes.InvalidArgument
	case ERR_TX_NOT_FOUND, ERR_UTXO_NOT_FOUND, ERR_POLICY_NOT_FOUND:
		return codes.NotFound
	case ERR_TX_ALREADY_EXISTS:
		return codes.AlreadyExists
	case ERR_UTXO_SPENT, ERR_UTXO_FROZEN, ERR_UTXO_SEIZED, ERR_UTXO_INVALID_STATUS:
		return codes.FailedPrecondition
	case ERR_COMPLIANCE, ERR_BLACKLISTED, ERR_KYC_TIER, ERR_JURISDICTION:
		return codes.PermissionDenied
	case ERR_UNAUTHORIZED, ERR_VERIFICATION_FAILED:
		return codes.Unauthenticated
	case ERR_DAILY_LIMIT, ERR_COOLDOWN_ACTIVE, ERR_AMOUNT_LIMIT, ERR_RESERVE_EXCEEDED:
		return codes.ResourceExhausted
	case ERR_VERIFICATION_TIMEOUT:
		return codes.DeadlineExceeded
	case ERR_CONTEXT_CANCELED:
		return codes.Canceled
	case ERR_UNKNOWN:
		return codes.Unknown
	default:
		return codes.Internal
	}
}

// WrapGRPC converts a ledger error into a gRPC status error. The ERR code is
// preserved in the status message so UnwrapGRPC can restore it on the far side.
func WrapGRPC(err error) error {
	if err == nil {
		return nil
	}

	castedErr, ok := err.(*Error)
	if !ok {
		return status.New(codes.Unknown, err.Error()).Err()
	}

	return status.New(ErrorCodeToGRPCCode(castedErr.code), castedErr.Error()).Err()
}

// UnwrapGRPC restores a *Error from a gRPC status error. The original code is
// recovered from the status message prefix written by Error().
func UnwrapGRPC(err error) *Error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return &Error{
			code:       ERR_ERROR,
			message:    "error unwrapping gRPC details",
			wrappedErr: err,
		}
	}

	msg := st.Message()
	for name, v := range ERR_value {
		if len(msg) >= len(name) && msg[:len(name)] == name {
			return &Error{
				code:    ERR(v),
				message: msg,
			}
		}
	}

	return &Error{
		code:    ERR_ERROR,
		message: msg,
	}
}
