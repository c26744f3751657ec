// Package model defines the wire-independent domain types of the USDw ledger
// engine: the transaction variants, governance actions, roles and committed
// transaction records. Serialization of these types on the host platform is
// owned by the surrounding storage and transport collaborators.
package model

import (
	"fmt"
	"time"
)

// TxKind discriminates the transaction union.
type TxKind int

const (
	TxKindUnknown TxKind = iota
	TxKindMint
	TxKindTransfer
	TxKindBurn
)

func (k TxKind) String() string {
	switch k {
	case TxKindMint:
		return "Mint"
	case TxKindTransfer:
		return "Transfer"
	case TxKindBurn:
		return "Burn"
	default:
		return "Unknown"
	}
}

// Signature is an opaque signature produced by the host platform's key
// management. The core never inspects Bytes; it hands them to the injected
// Verifier.
type Signature struct {
	Signer      string
	Role        Role
	PayloadHash []byte
	Bytes       []byte
}

// Input references the utxo a transaction consumes.
type Input struct {
	UTXOID string
}

// Output describes a utxo a transaction creates. The utxo id is assigned by
// the executor as "{tx_id}:{index}".
type Output struct {
	Owner        string
	Amount       uint64
	Jurisdiction string
	KYCTag       KYCLevel
}

// TxCommon carries the fields shared by every transaction variant.
type TxCommon struct {
	TxID       string
	Timestamp  time.Time
	PolicyRef  uint32
	Signatures []Signature
	Metadata   map[string]string
}

// Transaction is the tagged union over Mint, Transfer and Burn. The variants
// have exactly the fields their shape allows: a Mint has no inputs at all
// rather than an empty slice checked at runtime.
type Transaction interface {
	Kind() TxKind
	Common() *TxCommon
}

type Mint struct {
	TxCommon
	Outputs []Output
}

func (m *Mint) Kind() TxKind      { return TxKindMint }
func (m *Mint) Common() *TxCommon { return &m.TxCommon }

type Transfer struct {
	TxCommon
	Inputs  []Input
	Outputs []Output
}

func (t *Transfer) Kind() TxKind      { return TxKindTransfer }
func (t *Transfer) Common() *TxCommon { return &t.TxCommon }

type Burn struct {
	TxCommon
	Inputs []Input
}

func (b *Burn) Kind() TxKind      { return TxKindBurn }
func (b *Burn) Common() *TxCommon { return &b.TxCommon }

// KYCLevel is the compliance verification tier of a party. Higher tiers
// allow larger daily volumes.
type KYCLevel int

const (
	KYCLevelNone KYCLevel = iota
	KYCLevelTier0
	KYCLevelTier1
	KYCLevelTier2
)

func (l KYCLevel) String() string {
	switch l {
	case KYCLevelTier0:
		return "tier0"
	case KYCLevelTier1:
		return "tier1"
	case KYCLevelTier2:
		return "tier2"
	default:
		return "none"
	}
}

// TxRecord is the committed transaction envelope kept by the utxo store for
// history queries and duplicate submission detection.
type TxRecord struct {
	TxID      string
	Kind      TxKind
	Owners    []string
	Amount    uint64
	Timestamp time.Time
	Metadata  map[string]string
}

// UTXOID composes the canonical utxo identifier for output index n of txID.
func UTXOID(txID string, n int) string {
	return fmt.Sprintf("%s:%d", txID, n)
}
