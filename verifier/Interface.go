// Package verifier defines the capability interface through which the ledger
// engine consumes the host platform's cryptographic services. Signature and
// reserve-proof verification are implemented by an external collaborator; the
// core only depends on this interface.
package verifier

import (
	"context"

	"github.com/lifafa03/USDw-stablecoin-sub000/model"
)

// Attestation is the result of verifying a reserve proof.
type Attestation struct {
	Valid          bool
	AttestedAmount uint64
}

type Interface interface {
	// Verify checks a signature over payloadHash made by an actor claiming the
	// given role.
	Verify(ctx context.Context, role model.Role, payloadHash []byte, signature []byte) (bool, error)

	// VerifyReserveProof checks a zero-knowledge reserve proof and returns the
	// attested reserve amount.
	VerifyReserveProof(ctx context.Context, proof []byte) (*Attestation, error)
}
