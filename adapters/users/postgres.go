package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/layer-3/sentinel/core"
)

const pgUniqueViolation = "23505"

// PostgresDirectory stores users in the PostgreSQL users table
type PostgresDirectory struct {
	db     *sql.DB
	hasher *passwordHasher
}

// NewPostgresDirectory creates a directory on top of db
func NewPostgresDirectory(db *sql.DB) (*PostgresDirectory, error) {
	hasher, err := newPasswordHasher()
	if err != nil {
		return nil, err
	}

	return &PostgresDirectory{db: db, hasher: hasher}, nil
}

// AddUser inserts a new user
func (d *PostgresDirectory) AddUser(ctx context.Context, email core.Email, password core.Password, requires2FA bool) error {
	hashed, err := d.hasher.hash(password)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (email, password_hash, requires_2fa, created_at)
			  VALUES ($1, $2, $3, NOW())`

	_, err = d.db.ExecContext(ctx, query, email.String(), hashed, requires2FA)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrUserAlreadyExists
		}
		return core.Unexpected(err, "failed to create user")
	}

	return nil
}

// GetUser loads a user by email
func (d *PostgresDirectory) GetUser(ctx context.Context, email core.Email) (*core.User, error) {
	var (
		user      core.User
		storedFor string
	)

	query := `SELECT email, password_hash, requires_2fa FROM users WHERE email = $1`

	err := d.db.QueryRowContext(ctx, query, email.String()).Scan(&storedFor, &user.PasswordHash, &user.Requires2FA)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, core.Unexpected(err, "failed to get user by email")
	}
	user.Email = core.Email(storedFor)

	return &user, nil
}

// ValidateUser checks the password of email
func (d *PostgresDirectory) ValidateUser(ctx context.Context, email core.Email, password core.Password) error {
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

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}
