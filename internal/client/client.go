// Package client runs the same pre-flight pipeline a browser runs before
// talking to the relay: security gate first, then field validation, then the
// verification token, then one POST. Local failures never reach the network.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/strictdev/contact-relay/internal/form"
	"github.com/strictdev/contact-relay/internal/limiter"
	"github.com/strictdev/contact-relay/internal/security"
	"github.com/strictdev/contact-relay/internal/turnstile"
	"github.com/strictdev/contact-relay/internal/types"
)

// FormID is the identifier the site's contact form registers with the
// limiter.
const FormID = "contact_form"

// ErrBotDetected is deliberately silent: callers abort without any network
// call and without user-visible feedback.
var ErrBotDetected = fmt.Errorf("bot detected")

// RateLimitedError carries the local limiter's countdown for the "try again
// in N seconds" message.
type RateLimitedError struct {
	Seconds int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry in %ds", e.Seconds)
}

// ValidationError carries the per-field messages for inline rendering.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

// RejectedError is a structured refusal from the relay.
type RejectedError struct {
	StatusCode int
	Message    string
	Field      string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("relay rejected submission (status %d): %s", e.StatusCode, e.Message)
}

type Client struct {
	endpoint string
	gate     *security.Gate
	limiter  *limiter.Limiter
	tokens   *turnstile.TokenSource
	http     *http.Client
}

// New builds a client. tokens may be nil when no verification site key is
// configured; the payload then simply carries no token.
func New(endpoint string, l *limiter.Limiter, tokens *turnstile.TokenSource) *Client {
	return &Client{
		endpoint: endpoint,
		gate:     security.NewGate(l),
		limiter:  l,
		tokens:   tokens,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Submit runs the full pipeline for one payload. On success the caller
// should discard the payload; on failure it stays around for resubmission.
func (c *Client) Submit(ctx context.Context, p form.Payload) error {
	gateRes := c.gate.Validate(FormID, p.Honeypot)
	if !gateRes.Valid {
		switch gateRes.Reason {
		case security.ReasonBotDetected:
			return ErrBotDetected
		case security.ReasonRateLimitExceeded:
			return &RateLimitedError{Seconds: gateRes.TimeRemaining}
		}
	}

	verificationRequired := c.tokens != nil
	if verificationRequired {
		if token, ok := c.tokens.Token(); ok {
			p.Token = token
		} else {
			p.Token = ""
		}
	}

	if errs := form.ValidateForm(p, verificationRequired); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}

	// The attempt counts once it goes on the wire, success or not.
	c.limiter.RecordSubmission(FormID)

	return c.post(ctx, p)
}

func (c *Client) post(ctx context.Context, p form.Payload) error {
	body, err := json.Marshal(types.ContactRequest{
		Name:         p.Name,
		Email:        p.Email,
		Company:      p.Company,
		Requirements: p.Requirements,
		Honeypot:     p.Honeypot,
		Token:        p.Token,
	})
	if err != nil {
		return fmt.Errorf("failed to encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to construct request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("submission request failed: %w", err)
	}
	defer resp.Body.Close()

	var answer types.Error
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return fmt.Errorf("unreadable relay response (status %d): %w", resp.StatusCode, err)
	}

	if !answer.Success {
		// A used verification token is gone either way; force the widget to
		// issue a fresh one before the next attempt.
		if c.tokens != nil {
			c.tokens.OnToken("")
		}
		return &RejectedError{
			StatusCode: resp.StatusCode,
			Message:    answer.Message,
			Field:      answer.Field,
		}
	}

	if c.tokens != nil {
		c.tokens.OnToken("")
	}
	return nil
}
