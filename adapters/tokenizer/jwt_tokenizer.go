package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/layer-3/sentinel/core"
	"github.com/layer-3/sentinel/ports"
)

const AudienceAccess = "session:access"

// JWTTokenizer implements the Tokenizer interface using HS256 signed JWTs
type JWTTokenizer struct {
	secret []byte
	ttl    time.Duration
	clock  ports.Clock
}

// NewJWTTokenizer creates a new JWT tokenizer. The secret is read once and kept for the process lifetime.
func NewJWTTokenizer(secret []byte, ttl time.Duration, clock ports.Clock) (*JWTTokenizer, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret must not be empty")
	}
	if ttl < time.Second {
		return nil, fmt.Errorf("token ttl must be at least one second, got %s", ttl)
	}
	if clock == nil {
		clock = ports.SystemClock
	}

	return &JWTTokenizer{
		secret: secret,
		ttl:    ttl,
		clock:  clock,
	}, nil
}

// TTL returns the validity window of minted tokens
func (j *JWTTokenizer) TTL() time.Duration {
	return j.ttl
}

// Mint issues a token for subject expiring ttl from now
func (j *JWTTokenizer) Mint(subject core.Email) (string, *core.Session, error) {
	// NumericDate has second precision, keep the session in step with what is encoded
	now := j.clock.Now().Truncate(time.Second)

	session := &core.Session{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  now,
		ExpiresAt: now.Add(j.ttl),
	}

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Subject.String(),
			ID:        session.ID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			Audience:  jwt.ClaimStrings{AudienceAccess},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, session, nil
}

// Parse verifies a token and returns the session it carries
func (j *JWTTokenizer) Parse(tokenStr string) (*core.Session, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(AudienceAccess),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.clock.Now),
	)
	if err != nil {
		return nil, mapParseError(err)
	}

	if !token.Valid {
		return nil, core.ErrMalformedToken
	}

	if claims.Subject == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing sub or jti", core.ErrMalformedToken)
	}

	session := &core.Session{
		ID:        claims.ID,
		Subject:   core.Email(claims.Subject),
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}

	return session, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", core.ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", core.ErrBadSignature, err)
	default:
		return fmt.Errorf("%w: %w", core.ErrMalformedToken, err)
	}
}
