package identity

import (
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrNoIdentity          = errors.New("identity key is not generated")
	ErrInvalidSeed         = errors.New("invalid identity seed")
	ErrPassphraseRequired  = errors.New("passphrase is required")
	ErrInvalidPassphrase   = errors.New("invalid passphrase")
	ErrPassphraseLocked    = errors.New("passphrase attempts are temporarily locked")
	ErrUnsupportedKeyFile  = errors.New("unsupported identity key file")
	ErrPhraseCodecRequired = errors.New("phrase codec is required")
)

// attemptGuard throttles passphrase guesses against a stored key file.
type attemptGuard struct {
	mu             sync.Mutex
	failedAttempts int
	lockedUntil    time.Time
	now            func() time.Time
}

func newAttemptGuard(now func() time.Time) *attemptGuard {
	return &attemptGuard{now: now}
}

func (g *attemptGuard) check() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lockedUntil.IsZero() {
		return nil
	}
	if g.now().Before(g.lockedUntil) {
		return ErrPassphraseLocked
	}
	return nil
}

func (g *attemptGuard) fail() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failedAttempts++
	g.lockedUntil = g.now().Add(failedAttemptBackoff(g.failedAttempts))
}

func (g *attemptGuard) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failedAttempts = 0
	g.lockedUntil = time.Time{}
}

func failedAttemptBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	// 1s, 2s, 4s... up to 32s max.
	shift := attempt - 1
	if shift > 5 {
		shift = 5
	}
	return time.Second * time.Duration(1<<shift)
}

func normalizePassphrase(passphrase string) (string, error) {
	passphrase = strings.TrimSpace(passphrase)
	if passphrase == "" {
		return "", ErrPassphraseRequired
	}
	return passphrase, nil
}
