// Package ratelimit adapts the sliding-window limiter to echo's rate-limiter
// middleware. Identifiers are client IPs; the backing store is shared
// (redis) so every relay instance sees the same attempt history.
package ratelimit

import (
	"time"

	"github.com/labstack/echo/v4/middleware"

	"github.com/strictdev/contact-relay/internal/limiter"
)

// Ensure LimiterStore satisfies echo's store contract.
var _ middleware.RateLimiterStore = (*LimiterStore)(nil)

type LimiterStore struct {
	store       limiter.Store
	formID      string
	window      time.Duration
	maxAttempts int
	failOpen    bool
}

type LimiterConfig struct {
	Store       limiter.Store
	FormID      string
	Window      time.Duration
	MaxAttempts int
	FailOpen    bool
}

func NewLimiterStore(config LimiterConfig) *LimiterStore {
	return &LimiterStore{
		store:       config.Store,
		formID:      config.FormID,
		window:      config.Window,
		maxAttempts: config.MaxAttempts,
		failOpen:    config.FailOpen,
	}
}

// observedStore surfaces storage failures that the limiter itself swallows,
// so Allow can apply the configured fail-open policy.
type observedStore struct {
	inner   limiter.Store
	lastErr error
}

func (o *observedStore) Get(key string) (string, error) {
	value, err := o.inner.Get(key)
	if err != nil {
		o.lastErr = err
	}
	return value, err
}

func (o *observedStore) Set(key, value string, ttl time.Duration) error {
	err := o.inner.Set(key, value, ttl)
	if err != nil {
		o.lastErr = err
	}
	return err
}

func (o *observedStore) Remove(key string) error {
	err := o.inner.Remove(key)
	if err != nil {
		o.lastErr = err
	}
	return err
}

// Allow admits or denies one attempt for the identifier. Admitted attempts
// are recorded immediately; storage failures fall back to the configured
// fail-open policy.
func (s *LimiterStore) Allow(identifier string) (bool, error) {
	observed := &observedStore{inner: s.store}
	l := limiter.New(
		observed,
		identifier,
		limiter.WithWindow(s.window),
		limiter.WithMaxAttempts(s.maxAttempts),
	)

	allowed := l.CanSubmit(s.formID)
	if observed.lastErr != nil {
		if s.failOpen {
			// Availability of the contact channel outranks strict
			// throttling; a broken store must admit, not block.
			return true, nil
		}
		return false, observed.lastErr
	}
	if !allowed {
		return false, nil
	}

	l.RecordSubmission(s.formID)
	return true, nil
}

// TimeRemaining exposes the limiter countdown for deny responses.
func (s *LimiterStore) TimeRemaining(identifier string) int {
	l := limiter.New(
		s.store,
		identifier,
		limiter.WithWindow(s.window),
		limiter.WithMaxAttempts(s.maxAttempts),
	)
	return l.TimeRemaining(s.formID)
}
