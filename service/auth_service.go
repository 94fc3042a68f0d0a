package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/layer-3/sentinel/core"
	"github.com/layer-3/sentinel/ports"
)

const twoFAMessageSubject = "2FA Code"

// SignupInput is the raw signup request
type SignupInput struct {
	Email       string
	Password    string
	Requires2FA bool
}

// LoginInput is the raw first-factor request
type LoginInput struct {
	Email    string
	Password string
}

// VerifyTwoFAInput is the raw second-factor request
type VerifyTwoFAInput struct {
	Email          string
	LoginAttemptID string
	Code           string
}

// LoginResult is either a granted session or a pending 2FA challenge
type LoginResult struct {
	Token   string
	Session *core.Session

	TwoFactorRequired bool
	LoginAttemptID    core.LoginAttemptID
}

// Authenticator is the set of operations the transport layer depends on
type Authenticator interface {
	Signup(ctx context.Context, in SignupInput) error
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	VerifyTwoFA(ctx context.Context, in VerifyTwoFAInput) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*core.Session, error)
	TokenTTL() time.Duration
}

// AuthService handles authentication business logic
type AuthService struct {
	tokenizer   ports.Tokenizer
	revocations ports.RevocationStore
	challenges  ports.ChallengeStore
	users       ports.UserDirectory
	sender      ports.MessageSender
	eventPub    ports.EventPublisher
	logger      *slog.Logger
}

// NewAuthService creates a new authentication service. eventPub may be nil.
func NewAuthService(
	tokenizer ports.Tokenizer,
	revocations ports.RevocationStore,
	challenges ports.ChallengeStore,
	users ports.UserDirectory,
	sender ports.MessageSender,
	eventPub ports.EventPublisher,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		tokenizer:   tokenizer,
		revocations: revocations,
		challenges:  challenges,
		users:       users,
		sender:      sender,
		eventPub:    eventPub,
		logger:      logger,
	}
}

// TokenTTL is the lifetime of granted sessions
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenizer.TTL()
}

// Signup registers a new user
func (s *AuthService) Signup(ctx context.Context, in SignupInput) error {
	email, err := core.ParseEmail(in.Email)
	if err != nil {
		return err
	}
	password, err := core.ParsePassword(in.Password)
	if err != nil {
		return err
	}

	if err := s.users.AddUser(ctx, email, password, in.Requires2FA); err != nil {
		if errors.Is(err, core.ErrUserAlreadyExists) {
			return err
		}
		return core.Unexpected(err, "failed to add user")
	}

	return nil
}

// Login checks the first factor and either grants a session or issues a 2FA challenge
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email, err := core.ParseEmail(in.Email)
	if err != nil {
		return nil, err
	}
	password, err := core.ParsePassword(in.Password)
	if err != nil {
		return nil, err
	}

	// Every first-factor failure looks the same to the caller
	if err := s.users.ValidateUser(ctx, email, password); err != nil {
		s.logRejection(ctx, "login rejected", err)
		return nil, core.ErrIncorrectCredentials
	}

	user, err := s.users.GetUser(ctx, email)
	if err != nil {
		s.logRejection(ctx, "login rejected", err)
		return nil, core.ErrIncorrectCredentials
	}

	if !user.Requires2FA {
		return s.grantSession(email)
	}

	return s.issueChallenge(ctx, email)
}

// VerifyTwoFA answers a pending challenge and grants a session on an exact match
func (s *AuthService) VerifyTwoFA(ctx context.Context, in VerifyTwoFAInput) (*LoginResult, error) {
	email, err := core.ParseEmail(in.Email)
	if err != nil {
		return nil, err
	}
	attemptID, err := core.ParseLoginAttemptID(in.LoginAttemptID)
	if err != nil {
		return nil, err
	}
	code, err := core.ParseTwoFACode(in.Code)
	if err != nil {
		return nil, err
	}

	challenge, err := s.challenges.Get(ctx, email)
	if errors.Is(err, core.ErrChallengeNotFound) {
		return nil, core.ErrIncorrectCredentials
	}
	if err != nil {
		return nil, core.Unexpected(err, "failed to load 2FA challenge")
	}

	// A mismatch leaves the challenge in place until it expires or is replaced
	if !challenge.Matches(attemptID, code) {
		return nil, core.ErrIncorrectCredentials
	}

	// Only the call that removes the challenge is granted a session
	consumed, err := s.challenges.Consume(ctx, challenge)
	if err != nil {
		return nil, core.Unexpected(err, "failed to consume 2FA challenge")
	}
	if !consumed {
		return nil, core.ErrIncorrectCredentials
	}

	return s.grantSession(email)
}

// Authenticate validates a session token: signature, expiry, then revocation.
// A revocation lookup failure rejects the token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*core.Session, error) {
	if token == "" {
		return nil, core.ErrMissingToken
	}

	session, err := s.tokenizer.Parse(token)
	if err != nil {
		if !errors.Is(err, core.ErrInvalidToken) {
			err = fmt.Errorf("%w: %w", core.ErrInvalidToken, err)
		}
		return nil, fmt.Errorf("invalid access token: %w", err)
	}

	revoked, err := s.revocations.IsRevoked(ctx, session.ID)
	if err != nil {
		return nil, core.Unexpected(err, "failed to check token revocation")
	}

	if revoked {
		return nil, core.ErrTokenInvalidated
	}

	return session, nil
}

// Logout revokes a valid token and notifies other instances
func (s *AuthService) Logout(ctx context.Context, token string) error {
	session, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}

	if err := s.revocations.Revoke(ctx, session.ID); err != nil {
		return core.Unexpected(err, "failed to revoke token")
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishLogout(ctx, session.Subject.String(), session.ID); err != nil {
			// The token is already revoked in the store
			s.logger.WarnContext(ctx, "failed to publish logout event",
				slog.String("token_id", session.ID),
				slog.Any("error", err),
			)
		}
	}

	return nil
}

func (s *AuthService) grantSession(email core.Email) (*LoginResult, error) {
	token, session, err := s.tokenizer.Mint(email)
	if err != nil {
		return nil, core.Unexpected(err, "failed to mint token")
	}

	return &LoginResult{Token: token, Session: session}, nil
}

func (s *AuthService) issueChallenge(ctx context.Context, email core.Email) (*LoginResult, error) {
	code, err := core.NewTwoFACode()
	if err != nil {
		return nil, core.Unexpected(err, "failed to generate 2FA code")
	}

	challenge := core.Challenge{
		Subject:   email,
		AttemptID: core.NewLoginAttemptID(),
		Code:      code,
	}

	// Persist before sending so a delivered code is always answerable
	if err := s.challenges.Create(ctx, challenge); err != nil {
		return nil, core.Unexpected(err, "failed to store 2FA challenge")
	}

	if err := s.sender.Send(ctx, email, twoFAMessageSubject, code.String()); err != nil {
		return nil, core.Unexpected(err, "failed to send 2FA code")
	}

	return &LoginResult{TwoFactorRequired: true, LoginAttemptID: challenge.AttemptID}, nil
}

func (s *AuthService) logRejection(ctx context.Context, msg string, cause error) {
	level := slog.LevelDebug
	if errors.Is(cause, core.ErrUnexpected) {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, msg, slog.Any("error", cause))
}
