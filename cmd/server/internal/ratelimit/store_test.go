package ratelimit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/strictdev/contact-relay/internal/limiter"
)

const testFormID = "contact_form"

func newTestStore(failOpen bool, inner limiter.Store) *LimiterStore {
	return NewLimiterStore(LimiterConfig{
		Store:       inner,
		FormID:      testFormID,
		Window:      time.Minute,
		MaxAttempts: 3,
		FailOpen:    failOpen,
	})
}

func TestAllowWithinWindow(t *testing.T) {
	store := newTestStore(true, limiter.NewMemoryStore())

	for i := range 3 {
		allowed, err := store.Allow("192.0.2.1")
		assert.NoError(t, err)
		assert.Truef(t, allowed, "attempt %d should be admitted", i+1)
	}

	allowed, err := store.Allow("192.0.2.1")
	assert.NoError(t, err)
	assert.False(t, allowed)

	assert.Greater(t, store.TimeRemaining("192.0.2.1"), 0)
	assert.LessOrEqual(t, store.TimeRemaining("192.0.2.1"), 60)
}

func TestAllowScopedByIdentifier(t *testing.T) {
	store := newTestStore(true, limiter.NewMemoryStore())

	for range 3 {
		_, _ = store.Allow("192.0.2.1")
	}

	allowed, err := store.Allow("192.0.2.2")
	assert.NoError(t, err)
	assert.True(t, allowed, "other clients keep their own budget")
}

type brokenStore struct{}

func (brokenStore) Get(string) (string, error) {
	return "", errors.New("store down")
}

func (brokenStore) Set(string, string, time.Duration) error {
	return errors.New("store down")
}

func (brokenStore) Remove(string) error {
	return errors.New("store down")
}

func TestAllowFailOpen(t *testing.T) {
	store := newTestStore(true, brokenStore{})

	allowed, err := store.Allow("192.0.2.1")
	assert.NoError(t, err)
	assert.True(t, allowed, "a broken store must admit when failing open")
}

func TestAllowFailClosed(t *testing.T) {
	store := newTestStore(false, brokenStore{})

	allowed, err := store.Allow("192.0.2.1")
	assert.Error(t, err)
	assert.False(t, allowed)
}
