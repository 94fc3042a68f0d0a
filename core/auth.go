package core

import (
	"crypto/subtle"
	"time"
)

// Challenge is a pending second-factor challenge for a subject
type Challenge struct {
	Subject   Email          // Subject the code was issued to
	AttemptID LoginAttemptID // Identifier handed to the client
	Code      TwoFACode      // Code delivered out of band
}

// Matches reports whether both the attempt id and the code equal the stored ones
func (c Challenge) Matches(attemptID LoginAttemptID, code TwoFACode) bool {
	idOK := subtle.ConstantTimeCompare([]byte(c.AttemptID), []byte(attemptID))
	codeOK := subtle.ConstantTimeCompare([]byte(c.Code), []byte(code))
	return idOK&codeOK == 1
}

// Session represents an authenticated user session decoded from a token
type Session struct {
	ID        string    // Token identifier, used for revocation
	Subject   Email     // Authenticated user
	IssuedAt  time.Time // When the token was minted
	ExpiresAt time.Time // When the token stops validating
}

// User is a directory record
type User struct {
	Email        Email
	PasswordHash string
	Requires2FA  bool
}
