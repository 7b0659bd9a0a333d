// Package security is the pre-network gate: honeypot detection first, then
// the sliding-window limiter. A positive bot detection short-circuits before
// a rate-limit slot is consumed.
package security

import (
	"strings"

	"github.com/strictdev/contact-relay/internal/limiter"
)

const (
	ReasonBotDetected       = "bot_detected"
	ReasonRateLimitExceeded = "rate_limit_exceeded"
)

// ValidateHoneypot returns false when the hidden field carries any non-blank
// value. Humans never see the field; only automated form-fillers do.
func ValidateHoneypot(value string) bool {
	return strings.TrimSpace(value) == ""
}

// Result of a gate check. TimeRemaining is only set for rate-limit denials.
type Result struct {
	Valid         bool
	Reason        string
	TimeRemaining int
}

type Gate struct {
	limiter *limiter.Limiter
}

func NewGate(l *limiter.Limiter) *Gate {
	return &Gate{limiter: l}
}

// Validate runs the checks in their fixed order. Callers must treat a
// bot_detected result silently: no error may be surfaced that would tell a
// scraping script it was caught.
func (g *Gate) Validate(formID, honeypotValue string) Result {
	if !ValidateHoneypot(honeypotValue) {
		return Result{Reason: ReasonBotDetected}
	}

	if !g.limiter.CanSubmit(formID) {
		return Result{
			Reason:        ReasonRateLimitExceeded,
			TimeRemaining: g.limiter.TimeRemaining(formID),
		}
	}

	return Result{Valid: true}
}
