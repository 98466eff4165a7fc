package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// RateLimiter throttles sign-in attempts per client IP and email using a
// fixed window that starts at the first failure. Records are kept in a
// go-cache, so idle clients are forgotten by its janitor.
type RateLimiter struct {
	mu              sync.Mutex
	attempts        *cache.Cache
	maxAttempts     int
	windowDuration  time.Duration
	lockoutDuration time.Duration
	now             func() time.Time
}

type attemptRecord struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// RateLimitConfig contains configuration for the rate limiter.
type RateLimitConfig struct {
	MaxAttempts     int           // Maximum attempts before lockout (default: 5)
	WindowDuration  time.Duration // Time window for counting attempts (default: 15m)
	LockoutDuration time.Duration // How long to lock out after max attempts (default: 30m)
	CleanupInterval time.Duration // How often expired records are purged (default: 5m)
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = 15 * time.Minute
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 30 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	return &RateLimiter{
		attempts:        cache.New(cfg.WindowDuration, cfg.CleanupInterval),
		maxAttempts:     cfg.MaxAttempts,
		windowDuration:  cfg.WindowDuration,
		lockoutDuration: cfg.LockoutDuration,
		now:             time.Now,
	}
}

// Stop forgets all recorded attempts.
func (rl *RateLimiter) Stop() {
	rl.attempts.Flush()
}

func attemptKey(ip, email string) string {
	return ip + "|" + strings.ToLower(strings.TrimSpace(email))
}

func (rl *RateLimiter) lookup(key string) (*attemptRecord, bool) {
	v, ok := rl.attempts.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*attemptRecord), true
}

// Allow reports whether another attempt is permitted and, if not, how long
// the caller has to wait.
func (rl *RateLimiter) Allow(ip, email string) (bool, time.Duration) {
	key := attemptKey(ip, email)
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	record, ok := rl.lookup(key)
	if !ok {
		return true, 0
	}
	if !record.lockedUntil.IsZero() && now.Before(record.lockedUntil) {
		return false, record.lockedUntil.Sub(now)
	}
	if now.Sub(record.firstAttempt) > rl.windowDuration {
		rl.attempts.Delete(key)
		return true, 0
	}
	if record.count < rl.maxAttempts {
		return true, 0
	}
	return false, rl.lockoutDuration
}

// RecordFailure counts a failed attempt and reports whether it triggered a lockout.
func (rl *RateLimiter) RecordFailure(ip, email string) (bool, time.Duration) {
	key := attemptKey(ip, email)
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	record, ok := rl.lookup(key)
	if !ok || now.Sub(record.firstAttempt) > rl.windowDuration {
		record = &attemptRecord{firstAttempt: now}
	}

	record.count++
	if record.count >= rl.maxAttempts {
		record.lockedUntil = now.Add(rl.lockoutDuration)
		rl.attempts.Set(key, record, rl.lockoutDuration)
		return true, rl.lockoutDuration
	}
	rl.attempts.Set(key, record, cache.DefaultExpiration)
	return false, 0
}

// RecordSuccess clears the failure record for a successful login.
func (rl *RateLimiter) RecordSuccess(ip, email string) {
	rl.attempts.Delete(attemptKey(ip, email))
}
