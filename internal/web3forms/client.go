// Package web3forms is the delivery-provider client. The provider performs
// the actual email dispatch; this client only relays a normalized submission
// and interprets the provider's accept/reject answer.
package web3forms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/strictdev/contact-relay/internal/web3forms")

const DefaultEndpoint = "https://api.web3forms.com/submit"

// Bounded so a hung provider cannot pin the submit button indefinitely.
const requestTimeout = 10 * time.Second

// Submission maps the normalized payload into the provider's field names.
// ReplyTo carries the submitter's address so answering the notification mail
// reaches them directly.
type Submission struct {
	AccessKey string `json:"access_key"`
	Subject   string `json:"subject"`
	FromName  string `json:"from_name"`
	Email     string `json:"email"`
	Company   string `json:"company,omitempty"`
	Message   string `json:"message"`
	ReplyTo   string `json:"replyto,omitempty"`
}

// DeliveryError is returned when the provider rejects or the response cannot
// be interpreted. Detail keeps the provider's raw answer for debugging; it is
// never rendered to end users.
type DeliveryError struct {
	StatusCode int
	Detail     any
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery provider rejected submission (status %d)", e.StatusCode)
}

type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient builds a delivery client. endpoint overrides the provider URL,
// for tests; pass "" for the real one.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = 2
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	// Only retry when the request never reached the provider. A 5xx answer
	// may still have dispatched the email; retrying would double-send.
	retryClient.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if resp != nil {
			return false, nil
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	client := retryClient.StandardClient()
	client.Timeout = requestTimeout

	return &Client{endpoint: endpoint, client: client}
}

type providerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Deliver relays the submission. Success requires both an HTTP 2xx status
// and an explicit success flag in the provider's JSON body; everything else,
// including an unparseable body, is a *DeliveryError.
func (c *Client) Deliver(ctx context.Context, sub Submission) error {
	ctx, span := tracer.Start(ctx, "Client.Deliver", trace.WithAttributes(
		attribute.String("subject", sub.Subject),
	))
	defer span.End()

	payload, err := json.Marshal(sub)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to encode submission")
		return fmt.Errorf("failed to encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to construct delivery request")
		return fmt.Errorf("failed to construct delivery request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery request failed")
		return fmt.Errorf("delivery request failed: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("provider.status", resp.StatusCode))

	// Read the whole body up front: on failure the raw text is the only
	// diagnostic we have, and the provider occasionally answers non-JSON.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read provider response")
		return &DeliveryError{StatusCode: resp.StatusCode}
	}

	var body providerResponse
	decoded := json.Unmarshal(raw, &body) == nil

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !decoded || !body.Success {
		var detail any
		if decoded {
			detail = body
		} else if len(raw) > 0 {
			detail = string(raw)
		}

		err := &DeliveryError{StatusCode: resp.StatusCode, Detail: detail}
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider rejected submission")
		return err
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "submission delivered")
	return nil
}
