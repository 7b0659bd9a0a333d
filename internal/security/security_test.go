package security_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/strictdev/contact-relay/internal/limiter"
	"github.com/strictdev/contact-relay/internal/security"
)

func TestValidateHoneypot(t *testing.T) {
	assert.True(t, security.ValidateHoneypot(""))
	assert.True(t, security.ValidateHoneypot("   \t\n"))

	// Any non-blank value means bot, no matter how innocuous.
	assert.False(t, security.ValidateHoneypot("anything"))
	assert.False(t, security.ValidateHoneypot(" http://spam.example "))
}

func TestGateOrder(t *testing.T) {
	l := limiter.New(limiter.NewMemoryStore(), "ua-1", limiter.WithMaxAttempts(1))
	gate := security.NewGate(l)

	// Exhaust the rate limit.
	l.RecordSubmission("contact_form")

	// Honeypot wins over rate limiting: the bot must not learn which check
	// rejected it, and detection must not consume limiter state.
	res := gate.Validate("contact_form", "filled-by-bot")
	assert.False(t, res.Valid)
	assert.Equal(t, security.ReasonBotDetected, res.Reason)
	assert.Zero(t, res.TimeRemaining)
}

func TestGateRateLimit(t *testing.T) {
	l := limiter.New(limiter.NewMemoryStore(), "ua-1", limiter.WithMaxAttempts(1))
	gate := security.NewGate(l)

	res := gate.Validate("contact_form", "")
	assert.True(t, res.Valid)

	l.RecordSubmission("contact_form")

	res = gate.Validate("contact_form", "")
	assert.False(t, res.Valid)
	assert.Equal(t, security.ReasonRateLimitExceeded, res.Reason)
	assert.Positive(t, res.TimeRemaining)
}
