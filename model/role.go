package model

import (
	"strings"

	"github.com/lifafa03/USDw-stablecoin-sub000/errors"
)

// Role is the enumerated actor role used throughout the ledger engine.
// Free-form role strings coming from the host platform's identity layer are
// resolved exactly once, at the system boundary, via ParseRole.
type Role int

const (
	RoleUnknown Role = iota
	RoleIssuer
	RoleCompliance
	RoleAdmin
	RoleAuditor
	RoleOwner
)

var roleNames = map[Role]string{
	RoleUnknown:    "unknown",
	RoleIssuer:     "issuer",
	RoleCompliance: "compliance",
	RoleAdmin:      "admin",
	RoleAuditor:    "auditor",
	RoleOwner:      "owner",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}

	return "unknown"
}

// ParseRole resolves a boundary role string into a Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "issuer":
		return RoleIssuer, nil
	case "compliance":
		return RoleCompliance, nil
	case "admin":
		return RoleAdmin, nil
	case "auditor":
		return RoleAuditor, nil
	case "owner":
		return RoleOwner, nil
	default:
		return RoleUnknown, errors.NewInvalidArgumentError("unknown role %q", s)
	}
}
