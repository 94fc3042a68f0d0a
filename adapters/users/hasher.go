package users

import (
	"fmt"

	"github.com/allisson/go-pwdhash"

	"github.com/layer-3/sentinel/core"
)

// passwordHasher wraps argon2id hashing and keeps a dummy hash so that
// unknown users cost the same to reject as wrong passwords.
type passwordHasher struct {
	hasher    *pwdhash.PasswordHasher
	dummyHash string
}

func newPasswordHasher() (*passwordHasher, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, fmt.Errorf("failed to create password hasher: %w", err)
	}

	dummyHash, err := hasher.Hash([]byte("sentinel-dummy-password"))
	if err != nil {
		return nil, fmt.Errorf("failed to create dummy hash: %w", err)
	}

	return &passwordHasher{hasher: hasher, dummyHash: dummyHash}, nil
}

func (h *passwordHasher) hash(password core.Password) (string, error) {
	hashed, err := h.hasher.Hash([]byte(password.Reveal()))
	if err != nil {
		return "", core.Unexpected(err, "failed to hash password")
	}

	return hashed, nil
}

func (h *passwordHasher) verify(password core.Password, hashed string) error {
	ok, err := h.hasher.Verify([]byte(password.Reveal()), hashed)
	if err != nil {
		return core.Unexpected(err, "failed to verify password")
	}
	if !ok {
		return core.ErrIncorrectCredentials
	}

	return nil
}

// burn spends the same work as verify for a user that does not exist
func (h *passwordHasher) burn(password core.Password) {
	_, _ = h.hasher.Verify([]byte(password.Reveal()), h.dummyHash)
}
