package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the standard claims carried by a session token.
// sub is the user email, jti the revocation identifier.
type SessionClaims struct {
	jwt.RegisteredClaims
}
