package verifier

import (
	"context"

	"github.com/lifafa03/USDw-stablecoin-sub000/model"
)

// check interface compliance
var _ Interface = &MockVerifier{}

// MockVerifier is a configurable verifier for tests. The zero value accepts
// every signature and every reserve proof for amount zero.
type MockVerifier struct {
	VerifyFunc             func(ctx context.Context, role model.Role, payloadHash []byte, signature []byte) (bool, error)
	VerifyReserveProofFunc func(ctx context.Context, proof []byte) (*Attestation, error)

	// RejectSigners lists signers whose signatures are rejected when
	// VerifyFunc is nil. Signer identity is carried in the signature bytes in
	// tests.
	RejectSigners map[string]bool

	// ReserveAmount is returned by VerifyReserveProof when
	// VerifyReserveProofFunc is nil.
	ReserveAmount uint64
}

func (m *MockVerifier) Verify(ctx context.Context, role model.Role, payloadHash []byte, signature []byte) (bool, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, role, payloadHash, signature)
	}

	if m.RejectSigners != nil && m.RejectSigners[string(signature)] {
		return false, nil
	}

	return true, nil
}

func (m *MockVerifier) VerifyReserveProof(ctx context.Context, proof []byte) (*Attestation, error) {
	if m.VerifyReserveProofFunc != nil {
		return m.VerifyReserveProofFunc(ctx, proof)
	}

	return &Attestation{
		Valid:          true,
		AttestedAmount: m.ReserveAmount,
	}, nil
}
