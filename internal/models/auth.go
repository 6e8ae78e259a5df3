package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the roles recognised on curator routes.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleCurator UserRole = "CURATOR"
	RoleViewer  UserRole = "VIEWER"
)

// JWTClaims represents the payload of tokens issued by the TrendX bot backend.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Username string   `json:"username"`
	jwt.RegisteredClaims
}

// CanCurate reports whether the role may read and export manual curation data.
func (r UserRole) CanCurate() bool {
	return r == RoleAdmin || r == RoleCurator
}
