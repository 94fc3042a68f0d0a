package ports

import (
	"context"
	"time"

	"github.com/layer-3/sentinel/core"
)

// KVStore is the key-value capability the session stores are built on.
// Get returns core.ErrNotFound on a miss; every other failure wraps core.ErrUnexpected.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// DeleteIfEqual removes key only while it still holds expected, as one atomic step.
	// It reports whether this call removed it.
	DeleteIfEqual(ctx context.Context, key, expected string) (bool, error)
}

// RevocationStore remembers token identifiers that must no longer validate
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// ChallengeStore keeps at most one pending 2FA challenge per subject
type ChallengeStore interface {
	Create(ctx context.Context, challenge core.Challenge) error
	Get(ctx context.Context, subject core.Email) (core.Challenge, error)
	Remove(ctx context.Context, subject core.Email) error
	// Consume removes challenge if it is still the pending one and reports whether this call did
	Consume(ctx context.Context, challenge core.Challenge) (bool, error)
}
