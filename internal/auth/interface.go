package auth

import "filebox/internal/domain/models"

// JWTVerifier checks bearer tokens presented to the HTTP API.
type JWTVerifier interface {
	// VerifyToken returns the claims of a valid token, or an error matching
	// domain.ErrUnauthorized (bad signature, expired, no subject, anonymous).
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases the verifier. Callers stop JWKS refreshes by cancelling the constructor context.
	Close() error
}
