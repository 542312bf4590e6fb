// Package limiter throttles repeated failed logins per (email, client IP).
package limiter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Limiter controls login attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether a login may be attempted and, if not, for how long it is blocked.
	Allow(ctx context.Context, email, ipHash string) (bool, time.Duration, error)
	// Success clears recorded failures.
	Success(ctx context.Context, email, ipHash string) error
	// Failure records a failed attempt and reports whether the pair is now blocked.
	Failure(ctx context.Context, email, ipHash string) (bool, time.Duration, error)
}

// HashIP returns a stable digest of an IP so raw addresses are never stored.
func HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

// Noop never blocks.
type Noop struct{}

func (Noop) Allow(context.Context, string, string) (bool, time.Duration, error) {
	return true, 0, nil
}

func (Noop) Success(context.Context, string, string) error { return nil }

func (Noop) Failure(context.Context, string, string) (bool, time.Duration, error) {
	return false, 0, nil
}
