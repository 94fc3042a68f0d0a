package ports

import (
	"context"

	"github.com/layer-3/sentinel/core"
)

// UserDirectory stores users and verifies their credentials
type UserDirectory interface {
	AddUser(ctx context.Context, email core.Email, password core.Password, requires2FA bool) error
	GetUser(ctx context.Context, email core.Email) (*core.User, error)
	// ValidateUser returns core.ErrUserNotFound or core.ErrIncorrectCredentials on failure
	ValidateUser(ctx context.Context, email core.Email, password core.Password) error
}

// MessageSender delivers messages out of band
type MessageSender interface {
	Send(ctx context.Context, to core.Email, subject, body string) error
}
