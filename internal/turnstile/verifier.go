package turnstile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/strictdev/contact-relay/internal/turnstile")

const DefaultEndpoint = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// Bounded so a hung provider cannot pin the submit button indefinitely.
const requestTimeout = 10 * time.Second

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verifier checks tokens against the provider's siteverify endpoint. Tokens
// are single use: the provider invalidates them after one check.
type Verifier struct {
	secret   string
	endpoint string
	client   *http.Client
}

// NewVerifier builds a Verifier for the given secret. endpoint overrides the
// provider URL, for tests; pass "" for the real one.
func NewVerifier(secret, endpoint string) *Verifier {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = 2
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	client := retryClient.StandardClient()
	client.Timeout = requestTimeout

	return &Verifier{secret: secret, endpoint: endpoint, client: client}
}

// Verify reports whether the provider accepts the token. remoteIP is
// optional and forwarded when present. Any transport failure or unparseable
// response counts as a failed verification.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Verifier.Verify", trace.WithAttributes(
		attribute.Bool("remote_ip.present", remoteIP != ""),
	))
	defer span.End()

	payload := url.Values{}
	payload.Set("secret", v.secret)
	payload.Set("response", token)
	if remoteIP != "" {
		payload.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		v.endpoint,
		strings.NewReader(payload.Encode()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to construct siteverify request")
		return false, fmt.Errorf("failed to construct siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "siteverify request failed")
		return false, fmt.Errorf("siteverify request failed: %w", err)
	}
	defer resp.Body.Close()

	var body siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "siteverify response was not json")
		return false, fmt.Errorf("siteverify response was not json: %w", err)
	}

	span.SetAttributes(attribute.Bool("siteverify.success", body.Success))
	span.RecordError(nil)
	span.SetStatus(codes.Ok, "verified token")

	if !body.Success {
		return false, nil
	}
	return true, nil
}
