package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the authenticated actor presented to the credit engine.
// The engine trusts the role tags it is given.
type Claims struct {
	jwt.RegisteredClaims
	ActorID string   `json:"actor_id"`
	Roles   []string `json:"roles"`
}

// HasRole reports whether the claims include the given role tag.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// Role tags understood by the credit engine.
const (
	RoleAdmin      = "admin"
	RoleAnalyst1   = "analyst1"
	RoleAnalyst2   = "analyst2"
	RoleAnalyst3   = "analyst3"
	RoleServicing  = "servicing"
	RoleCommercial = "commercial"
	RoleApplicant  = "applicant"
)
