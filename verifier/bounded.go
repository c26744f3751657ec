package verifier

import (
	"context"
	"time"

	"github.com/lifafa03/USDw-stablecoin-sub000/errors"
	"github.com/lifafa03/USDw-stablecoin-sub000/model"
)

var _ Interface = &Bounded{}

// Bounded wraps a verifier with a deadline. A verification that does not
// complete within the timeout fails with ERR_VERIFICATION_TIMEOUT rather than
// blocking the validation pipeline.
type Bounded struct {
	inner   Interface
	timeout time.Duration
}

func NewBounded(inner Interface, timeout time.Duration) *Bounded {
	return &Bounded{
		inner:   inner,
		timeout: timeout,
	}
}

func (b *Bounded) Verify(ctx context.Context, role model.Role, payloadHash []byte, signature []byte) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	type result struct {
		ok  bool
		err error
	}

	ch := make(chan result, 1)

	go func() {
		ok, err := b.inner.Verify(ctx, role, payloadHash, signature)
		ch <- result{ok: ok, err: err}
	}()

	select {
	case r := <-ch:
		return r.ok, r.err
	case <-ctx.Done():
		return false, errors.NewVerificationTimeoutError("signature verification exceeded %s", b.timeout, ctx.Err())
	}
}

func (b *Bounded) VerifyReserveProof(ctx context.Context, proof []byte) (*Attestation, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	type result struct {
		att *Attestation
		err error
	}

	ch := make(chan result, 1)

	go func() {
		att, err := b.inner.VerifyReserveProof(ctx, proof)
		ch <- result{att: att, err: err}
	}()

	select {
	case r := <-ch:
		return r.att, r.err
	case <-ctx.Done():
		return nil, errors.NewVerificationTimeoutError("reserve proof verification exceeded %s", b.timeout, ctx.Err())
	}
}
