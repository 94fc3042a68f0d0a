package store

import (
	"context"
	"fmt"
	"time"

	"github.com/layer-3/sentinel/ports"
)

const revokedTokenPrefix = "banned_token:"

// RevocationStore records revoked token identifiers on top of a KVStore.
// Entries expire after ttl, which must cover the token lifetime.
type RevocationStore struct {
	kv  ports.KVStore
	ttl time.Duration
}

// NewRevocationStore creates a revocation store keeping entries for ttl
func NewRevocationStore(kv ports.KVStore, ttl time.Duration) *RevocationStore {
	return &RevocationStore{kv: kv, ttl: ttl}
}

// Revoke marks tokenID as revoked. Revoking twice refreshes the entry.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string) error {
	if err := s.kv.Set(ctx, revokedTokenPrefix+tokenID, "true", s.ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// IsRevoked checks if tokenID was revoked
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	revoked, err := s.kv.Exists(ctx, revokedTokenPrefix+tokenID)
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}

	return revoked, nil
}
