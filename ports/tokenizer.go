package ports

import (
	"time"

	"github.com/layer-3/sentinel/core"
)

// Tokenizer converts between sessions and signed tokens
type Tokenizer interface {
	// Mint issues a token for subject, valid for the configured TTL
	Mint(subject core.Email) (string, *core.Session, error)
	// Parse verifies signature and expiry and returns the decoded session
	Parse(token string) (*core.Session, error)
	// TTL is the validity window of minted tokens
	TTL() time.Duration
}

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock
var SystemClock Clock = ClockFunc(time.Now)
