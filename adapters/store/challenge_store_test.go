package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/sentinel/core"
)

func newChallenge(t *testing.T, subject core.Email) core.Challenge {
	t.Helper()

	code, err := core.NewTwoFACode()
	require.NoError(t, err)

	return core.Challenge{Subject: subject, AttemptID: core.NewLoginAttemptID(), Code: code}
}

func TestChallengeStore(t *testing.T) {
	ctx := context.Background()
	alice := core.Email("alice@example.com")

	t.Run("Success_RoundTrip", func(t *testing.T) {
		s := NewChallengeStore(NewMemoryStore(time.Minute), DefaultChallengeTTL)
		c := newChallenge(t, alice)

		require.NoError(t, s.Create(ctx, c))

		got, err := s.Get(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, c, got)
	})

	t.Run("Success_OverwriteKeepsLatest", func(t *testing.T) {
		s := NewChallengeStore(NewMemoryStore(time.Minute), DefaultChallengeTTL)
		first := newChallenge(t, alice)
		second := newChallenge(t, alice)

		require.NoError(t, s.Create(ctx, first))
		require.NoError(t, s.Create(ctx, second))

		got, err := s.Get(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, second, got)
	})

	t.Run("Success_Remove", func(t *testing.T) {
		s := NewChallengeStore(NewMemoryStore(time.Minute), DefaultChallengeTTL)
		require.NoError(t, s.Create(ctx, newChallenge(t, alice)))

		require.NoError(t, s.Remove(ctx, alice))
		require.NoError(t, s.Remove(ctx, alice))

		_, err := s.Get(ctx, alice)
		assert.ErrorIs(t, err, core.ErrChallengeNotFound)
	})

	t.Run("Success_ConsumeOnce", func(t *testing.T) {
		s := NewChallengeStore(NewMemoryStore(time.Minute), DefaultChallengeTTL)
		c := newChallenge(t, alice)
		require.NoError(t, s.Create(ctx, c))

		consumed, err := s.Consume(ctx, c)
		require.NoError(t, err)
		assert.True(t, consumed)

		consumed, err = s.Consume(ctx, c)
		require.NoError(t, err)
		assert.False(t, consumed)

		_, err = s.Get(ctx, alice)
		assert.ErrorIs(t, err, core.ErrChallengeNotFound)
	})

	t.Run("Success_ConsumeLeavesNewerChallenge", func(t *testing.T) {
		kv, _ := newRedisBackend(t)
		s := NewChallengeStore(kv, DefaultChallengeTTL)
		stale := newChallenge(t, alice)
		current := newChallenge(t, alice)
		require.NoError(t, s.Create(ctx, stale))
		require.NoError(t, s.Create(ctx, current))

		consumed, err := s.Consume(ctx, stale)
		require.NoError(t, err)
		assert.False(t, consumed)

		got, err := s.Get(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, current, got)
	})

	t.Run("Success_ConcurrentConsumeSingleWinner", func(t *testing.T) {
		kv, _ := newRedisBackend(t)
		s := NewChallengeStore(kv, DefaultChallengeTTL)
		c := newChallenge(t, alice)
		require.NoError(t, s.Create(ctx, c))

		var (
			wg      sync.WaitGroup
			winners atomic.Int32
		)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				consumed, err := s.Consume(ctx, c)
				assert.NoError(t, err)
				if consumed {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), winners.Load())
	})

	t.Run("Success_WireFormat", func(t *testing.T) {
		kv := NewMemoryStore(time.Minute)
		s := NewChallengeStore(kv, DefaultChallengeTTL)
		c := core.Challenge{
			Subject:   alice,
			AttemptID: "6f9619ff-8b86-d011-b42d-00c04fc964ff",
			Code:      "004217",
		}
		require.NoError(t, s.Create(ctx, c))

		raw, err := kv.Get(ctx, "two_fa_code:alice@example.com")
		require.NoError(t, err)
		assert.JSONEq(t, `{"login_attempt_id":"6f9619ff-8b86-d011-b42d-00c04fc964ff","code":"004217"}`, raw)
	})

	t.Run("Success_ExpiresAfterTTL", func(t *testing.T) {
		kv, mr := newRedisBackend(t)
		s := NewChallengeStore(kv, DefaultChallengeTTL)
		require.NoError(t, s.Create(ctx, newChallenge(t, alice)))

		mr.FastForward(DefaultChallengeTTL)

		_, err := s.Get(ctx, alice)
		assert.ErrorIs(t, err, core.ErrChallengeNotFound)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		s := NewChallengeStore(NewMemoryStore(time.Minute), DefaultChallengeTTL)

		_, err := s.Get(ctx, alice)
		assert.ErrorIs(t, err, core.ErrChallengeNotFound)
	})

	t.Run("Error_CorruptPayload", func(t *testing.T) {
		kv := NewMemoryStore(time.Minute)
		s := NewChallengeStore(kv, DefaultChallengeTTL)
		require.NoError(t, kv.Set(ctx, "two_fa_code:alice@example.com", "{not json", time.Minute))

		_, err := s.Get(ctx, alice)
		assert.ErrorIs(t, err, core.ErrUnexpected)
	})

	t.Run("Error_InvalidStoredCode", func(t *testing.T) {
		kv := NewMemoryStore(time.Minute)
		s := NewChallengeStore(kv, DefaultChallengeTTL)
		payload := `{"login_attempt_id":"6f9619ff-8b86-d011-b42d-00c04fc964ff","code":"12"}`
		require.NoError(t, kv.Set(ctx, "two_fa_code:alice@example.com", payload, time.Minute))

		_, err := s.Get(ctx, alice)
		assert.ErrorIs(t, err, core.ErrUnexpected)
		assert.NotErrorIs(t, err, core.ErrInvalidInput)
	})
}
