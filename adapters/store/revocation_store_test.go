package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/sentinel/core"
)

func TestRevocationStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RevokeThenCheck", func(t *testing.T) {
		s := NewRevocationStore(NewMemoryStore(time.Minute), time.Minute)

		revoked, err := s.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.False(t, revoked)

		require.NoError(t, s.Revoke(ctx, "jti-1"))

		revoked, err = s.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("Success_Idempotent", func(t *testing.T) {
		s := NewRevocationStore(NewMemoryStore(time.Minute), time.Minute)

		require.NoError(t, s.Revoke(ctx, "jti-2"))
		require.NoError(t, s.Revoke(ctx, "jti-2"))

		revoked, err := s.IsRevoked(ctx, "jti-2")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("Success_KeyPrefix", func(t *testing.T) {
		kv := NewMemoryStore(time.Minute)
		s := NewRevocationStore(kv, time.Minute)

		require.NoError(t, s.Revoke(ctx, "jti-3"))

		ok, err := kv.Exists(ctx, "banned_token:jti-3")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Success_EntryExpiresWithTTL", func(t *testing.T) {
		kv, mr := newRedisBackend(t)
		s := NewRevocationStore(kv, 10*time.Minute)

		require.NoError(t, s.Revoke(ctx, "jti-4"))
		assert.Equal(t, 10*time.Minute, mr.TTL("banned_token:jti-4"))

		mr.FastForward(10 * time.Minute)

		revoked, err := s.IsRevoked(ctx, "jti-4")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("Success_ConcurrentRevocations", func(t *testing.T) {
		s := NewRevocationStore(NewMemoryStore(time.Minute), time.Minute)

		var wg sync.WaitGroup
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, s.Revoke(ctx, "jti-shared"))
			}()
		}
		wg.Wait()

		revoked, err := s.IsRevoked(ctx, "jti-shared")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("Error_BackendFailure", func(t *testing.T) {
		kv, mr := newRedisBackend(t)
		s := NewRevocationStore(kv, time.Minute)
		mr.SetError("ERR unavailable")

		assert.ErrorIs(t, s.Revoke(ctx, "jti-5"), core.ErrUnexpected)

		_, err := s.IsRevoked(ctx, "jti-5")
		assert.ErrorIs(t, err, core.ErrUnexpected)
	})
}
