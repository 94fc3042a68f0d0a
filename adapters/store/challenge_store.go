package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/sentinel/core"
	"github.com/layer-3/sentinel/ports"
)

const (
	challengePrefix = "two_fa_code:"

	// DefaultChallengeTTL is how long a 2FA challenge stays answerable
	DefaultChallengeTTL = 10 * time.Minute
)

type challengeRecord struct {
	LoginAttemptID string `json:"login_attempt_id"`
	Code           string `json:"code"`
}

// ChallengeStore keeps one pending 2FA challenge per email on top of a KVStore
type ChallengeStore struct {
	kv  ports.KVStore
	ttl time.Duration
}

// NewChallengeStore creates a challenge store whose entries expire after ttl
func NewChallengeStore(kv ports.KVStore, ttl time.Duration) *ChallengeStore {
	return &ChallengeStore{kv: kv, ttl: ttl}
}

// Create stores the challenge, replacing any earlier one for the same subject
func (s *ChallengeStore) Create(ctx context.Context, challenge core.Challenge) error {
	payload, err := encodeChallenge(challenge)
	if err != nil {
		return err
	}

	if err := s.kv.Set(ctx, challengeKey(challenge.Subject), payload, s.ttl); err != nil {
		return fmt.Errorf("failed to store challenge: %w", err)
	}

	return nil
}

// Get returns the pending challenge for subject or core.ErrChallengeNotFound
func (s *ChallengeStore) Get(ctx context.Context, subject core.Email) (core.Challenge, error) {
	raw, err := s.kv.Get(ctx, challengeKey(subject))
	if errors.Is(err, core.ErrNotFound) {
		return core.Challenge{}, core.ErrChallengeNotFound
	}
	if err != nil {
		return core.Challenge{}, fmt.Errorf("failed to load challenge: %w", err)
	}

	var record challengeRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return core.Challenge{}, core.Unexpected(err, "failed to decode challenge")
	}

	attemptID, err := core.ParseLoginAttemptID(record.LoginAttemptID)
	if err != nil {
		return core.Challenge{}, fmt.Errorf("%w: stored challenge has invalid attempt id", core.ErrUnexpected)
	}

	code, err := core.ParseTwoFACode(record.Code)
	if err != nil {
		return core.Challenge{}, fmt.Errorf("%w: stored challenge has invalid code", core.ErrUnexpected)
	}

	return core.Challenge{Subject: subject, AttemptID: attemptID, Code: code}, nil
}

// Remove deletes the challenge for subject; removing a missing challenge is not an error
func (s *ChallengeStore) Remove(ctx context.Context, subject core.Email) error {
	if err := s.kv.Delete(ctx, challengeKey(subject)); err != nil {
		return fmt.Errorf("failed to remove challenge: %w", err)
	}

	return nil
}

// Consume removes challenge only if it is still the pending one for its subject.
// Of several concurrent calls for the same challenge exactly one reports true.
func (s *ChallengeStore) Consume(ctx context.Context, challenge core.Challenge) (bool, error) {
	payload, err := encodeChallenge(challenge)
	if err != nil {
		return false, err
	}

	removed, err := s.kv.DeleteIfEqual(ctx, challengeKey(challenge.Subject), payload)
	if err != nil {
		return false, fmt.Errorf("failed to consume challenge: %w", err)
	}

	return removed, nil
}

func encodeChallenge(challenge core.Challenge) (string, error) {
	payload, err := json.Marshal(challengeRecord{
		LoginAttemptID: challenge.AttemptID.String(),
		Code:           challenge.Code.String(),
	})
	if err != nil {
		return "", core.Unexpected(err, "failed to marshal challenge")
	}

	return string(payload), nil
}

func challengeKey(subject core.Email) string {
	return challengePrefix + subject.String()
}
