// Package entity contains the core business objects of the ledger.
package entity

import (
	"slices"
	"strings"
)

// Role represents the kind of account acting on the ledger.
type Role string

const (
	// RoleStandard is an end user who redeems codes.
	RoleStandard Role = "standard"
	// RoleMerchant issues transaction codes.
	RoleMerchant Role = "merchant"
	// RoleAdministrator audits and exports the ledger. Gated by the allowlist.
	RoleAdministrator Role = "administrator"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleStandard, RoleMerchant, RoleAdministrator:
		return true
	default:
		return false
	}
}

// ParseRole accepts the canonical role names plus the short forms used by
// older login forms ("user", "admin").
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "user":
		return RoleStandard, true
	case "merchant":
		return RoleMerchant, true
	case "administrator", "admin":
		return RoleAdministrator, true
	default:
		return "", false
	}
}

// IsAdminAllowed reports whether email may hold the administrator role under
// the given allowlist. Nothing caches the answer.
func IsAdminAllowed(email string, allowlist []string) bool {
	email = NormalizeEmail(email)
	if email == "" {
		return false
	}

	return slices.ContainsFunc(allowlist, func(allowed string) bool {
		return NormalizeEmail(allowed) == email
	})
}
