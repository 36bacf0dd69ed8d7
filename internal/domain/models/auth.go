package models

import "github.com/golang-jwt/jwt/v5"

// RoleAnonymous marks tokens issued without a signed-in user
const RoleAnonymous = "anon"

// Claims are the JWT claims the API reads. The subject is the user id that owns workspaces.
type Claims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
}

// GetUserID returns the subject claim
func (c *Claims) GetUserID() string {
	return c.Subject
}

// IsAnonymous reports whether the token belongs to no user
func (c *Claims) IsAnonymous() bool {
	return c.Role == RoleAnonymous
}
