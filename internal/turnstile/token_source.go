// Package turnstile bridges to Cloudflare Turnstile: a TokenSource tracks the
// widget's callback-driven lifecycle on the submitting side, and a Verifier
// performs the authoritative server-side siteverify check.
package turnstile

import "sync"

// State of the widget lifecycle. The zero value is Unloaded.
type State int

const (
	Unloaded State = iota
	Loading
	Ready
	Verified
	Expired
	Errored
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Verified:
		return "verified"
	case Expired:
		return "expired"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// TokenSource collapses the widget's raw callbacks into a single "current
// token or nothing" accessor so the rest of the pipeline never handles
// callbacks directly. Safe for concurrent use.
//
// The widget reports success, expiry and error through the same callback;
// expiry and error arrive as an empty token and must clear any cached value,
// forcing re-verification before the next submission.
type TokenSource struct {
	mu    sync.Mutex
	state State
	token string
}

func NewTokenSource() *TokenSource {
	return &TokenSource{}
}

// MarkLoading records that the challenge script injection started. Injection
// is idempotent: a source that is past Loading stays where it is.
func (s *TokenSource) MarkLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Unloaded {
		s.state = Loading
	}
}

// MarkReady records that the widget rendered and may issue tokens.
func (s *TokenSource) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Unloaded || s.state == Loading {
		s.state = Ready
	}
}

// OnToken is the widget callback. A non-empty token moves the source to
// Verified; an empty token signals expiry (or error) and clears the cached
// token.
func (s *TokenSource) OnToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" {
		s.token = ""
		s.state = Expired
		return
	}
	s.token = token
	s.state = Verified
}

// OnError is the widget error callback. Like expiry it clears the token.
func (s *TokenSource) OnError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.state = Errored
}

// Token returns the current token. ok is false when no valid token is held;
// an empty-string token is identical to "not yet verified".
func (s *TokenSource) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

func (s *TokenSource) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reset discards widget state, e.g. when the hosting form unmounts. Disposal
// of the underlying widget is best effort; Reset never fails.
func (s *TokenSource) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.state = Unloaded
}
