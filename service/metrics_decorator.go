package service

import (
	"context"
	"errors"
	"time"

	"github.com/layer-3/sentinel/core"
	"github.com/layer-3/sentinel/internal/metrics"
)

type authServiceWithMetrics struct {
	next    Authenticator
	metrics metrics.BusinessMetrics
}

// NewAuthServiceWithMetrics wraps an Authenticator with operation metrics
func NewAuthServiceWithMetrics(next Authenticator, m metrics.BusinessMetrics) Authenticator {
	return &authServiceWithMetrics{next: next, metrics: m}
}

func (a *authServiceWithMetrics) Signup(ctx context.Context, in SignupInput) error {
	start := time.Now()
	err := a.next.Signup(ctx, in)
	a.record(ctx, "signup", start, err)
	return err
}

func (a *authServiceWithMetrics) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	start := time.Now()
	result, err := a.next.Login(ctx, in)

	operation := "login"
	if err == nil && result.TwoFactorRequired {
		operation = "login_2fa_challenge"
	}
	a.record(ctx, operation, start, err)

	return result, err
}

func (a *authServiceWithMetrics) VerifyTwoFA(ctx context.Context, in VerifyTwoFAInput) (*LoginResult, error) {
	start := time.Now()
	result, err := a.next.VerifyTwoFA(ctx, in)
	a.record(ctx, "verify_2fa", start, err)
	return result, err
}

func (a *authServiceWithMetrics) Logout(ctx context.Context, token string) error {
	start := time.Now()
	err := a.next.Logout(ctx, token)
	a.record(ctx, "logout", start, err)
	return err
}

func (a *authServiceWithMetrics) Authenticate(ctx context.Context, token string) (*core.Session, error) {
	start := time.Now()
	session, err := a.next.Authenticate(ctx, token)
	a.record(ctx, "authenticate", start, err)
	return session, err
}

func (a *authServiceWithMetrics) TokenTTL() time.Duration {
	return a.next.TokenTTL()
}

func (a *authServiceWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	a.metrics.Record(ctx, operation, outcome(err), time.Since(start))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, core.ErrUnexpected):
		return metrics.OutcomeError
	default:
		return metrics.OutcomeRejected
	}
}
