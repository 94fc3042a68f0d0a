package users

import (
	"context"
	"errors"
	"sync"

	"github.com/layer-3/sentinel/core"
)

// MemoryDirectory is an in-process user directory
type MemoryDirectory struct {
	mu     sync.RWMutex
	users  map[core.Email]core.User
	hasher *passwordHasher
}

// NewMemoryDirectory creates an empty in-memory directory
func NewMemoryDirectory() (*MemoryDirectory, error) {
	hasher, err := newPasswordHasher()
	if err != nil {
		return nil, err
	}

	return &MemoryDirectory{
		users:  make(map[core.Email]core.User),
		hasher: hasher,
	}, nil
}

// AddUser stores a new user with a hashed password
func (d *MemoryDirectory) AddUser(ctx context.Context, email core.Email, password core.Password, requires2FA bool) error {
	hashed, err := d.hasher.hash(password)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.users[email]; exists {
		return core.ErrUserAlreadyExists
	}

	d.users[email] = core.User{Email: email, PasswordHash: hashed, Requires2FA: requires2FA}
	return nil
}

// GetUser returns a copy of the stored user
func (d *MemoryDirectory) GetUser(ctx context.Context, email core.Email) (*core.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.users[email]
	if !ok {
		return nil, core.ErrUserNotFound
	}

	return &user, nil
}

// ValidateUser checks the password of email
func (d *MemoryDirectory) ValidateUser(ctx context.Context, email core.Email, password core.Password) error {
	user, err := d.GetUser(ctx, email)
	if errors.Is(err, core.ErrUserNotFound) {
		d.hasher.burn(password)
		return err
	}
	if err != nil {
		return err
	}

	return d.hasher.verify(password, user.PasswordHash)
}
