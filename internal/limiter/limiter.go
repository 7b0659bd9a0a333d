// Package limiter implements the sliding-window submission throttle. One
// record per attempt is kept in a pluggable key/value store and pruned on
// every write; the count inside the trailing window decides admission.
//
// The limiter is defense in depth, not the sole abuse control, so every
// storage failure fails OPEN: a broken store must never block the contact
// channel.
package limiter

import (
	"encoding/json"
	"time"
)

const (
	DefaultWindow      = 60 * time.Second
	DefaultMaxAttempts = 3

	storageKey = "strict_dev_rate_limit"
)

// Store is the minimal persistence surface the limiter needs. Implementations
// may be process-local, browser-storage-like or shared (redis). Get returns
// ("", nil) for a missing key.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string, ttl time.Duration) error
	Remove(key string) error
}

// Record is one submission attempt. Fingerprint is a weak client identifier
// (user agent, IP) used only to scope the limit, never for identity.
type Record struct {
	Timestamp   int64  `json:"timestamp"`
	FormID      string `json:"formId"`
	Fingerprint string `json:"userAgent"`
}

type Limiter struct {
	store       Store
	fingerprint string
	window      time.Duration
	maxAttempts int
	now         func() time.Time
}

type Option func(*Limiter)

// WithWindow overrides the sliding window length.
func WithWindow(d time.Duration) Option {
	return func(l *Limiter) { l.window = d }
}

// WithMaxAttempts overrides the number of attempts admitted per window.
func WithMaxAttempts(n int) Option {
	return func(l *Limiter) { l.maxAttempts = n }
}

// WithClock substitutes the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func New(store Store, fingerprint string, opts ...Option) *Limiter {
	l := &Limiter{
		store:       store,
		fingerprint: fingerprint,
		window:      DefaultWindow,
		maxAttempts: DefaultMaxAttempts,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CanSubmit reports whether another attempt for formID is admissible right
// now. Store errors are treated as "can submit".
func (l *Limiter) CanSubmit(formID string) bool {
	records, err := l.load()
	if err != nil {
		return true
	}
	return len(l.qualifying(records, formID)) < l.maxAttempts
}

// RecordSubmission appends an attempt and garbage-collects everything older
// than the window. Best effort; a failing store is ignored.
func (l *Limiter) RecordSubmission(formID string) {
	records, err := l.load()
	if err != nil {
		return
	}

	now := l.now().UnixMilli()
	records = append(records, Record{
		Timestamp:   now,
		FormID:      formID,
		Fingerprint: l.fingerprint,
	})

	kept := records[:0]
	for _, r := range records {
		if now-r.Timestamp < l.window.Milliseconds() {
			kept = append(kept, r)
		}
	}

	data, err := json.Marshal(kept)
	if err != nil {
		return
	}
	_ = l.store.Set(l.key(), string(data), l.window)
}

// TimeRemaining returns whole seconds until the oldest qualifying attempt
// ages out, or 0 when the caller is not currently limited.
func (l *Limiter) TimeRemaining(formID string) int {
	records, err := l.load()
	if err != nil {
		return 0
	}

	qualifying := l.qualifying(records, formID)
	if len(qualifying) < l.maxAttempts {
		return 0
	}

	oldest := qualifying[0].Timestamp
	for _, r := range qualifying {
		if r.Timestamp < oldest {
			oldest = r.Timestamp
		}
	}

	elapsed := l.now().UnixMilli() - oldest
	remaining := (l.window.Milliseconds() - elapsed + 999) / 1000
	if remaining < 0 {
		return 0
	}
	return int(remaining)
}

// All forms share one blob per fingerprint, mirroring the single
// browser-storage key the site uses; records carry the form id.
func (l *Limiter) key() string {
	return storageKey + ":" + l.fingerprint
}

func (l *Limiter) load() ([]Record, error) {
	data, err := l.store.Get(l.key())
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, nil
	}

	var records []Record
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		// A corrupt blob is discarded rather than wedging the limiter.
		_ = l.store.Remove(l.key())
		return nil, nil
	}
	return records, nil
}

func (l *Limiter) qualifying(records []Record, formID string) []Record {
	cutoff := l.now().UnixMilli() - l.window.Milliseconds()

	var out []Record
	for _, r := range records {
		if r.FormID == formID && r.Fingerprint == l.fingerprint && r.Timestamp > cutoff {
			out = append(out, r)
		}
	}
	return out
}
