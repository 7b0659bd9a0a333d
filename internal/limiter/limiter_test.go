package limiter_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strictdev/contact-relay/internal/limiter"
)

const formID = "contact_form"

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(t *testing.T, fingerprint string) (*limiter.Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)}
	l := limiter.New(limiter.NewMemoryStore(), fingerprint, limiter.WithClock(clock.Now))
	return l, clock
}

func TestWindowProperty(t *testing.T) {
	l, clock := newTestLimiter(t, "ua-1")

	for i := 0; i < limiter.DefaultMaxAttempts; i++ {
		require.True(t, l.CanSubmit(formID), "attempt %d should be admitted", i)
		l.RecordSubmission(formID)
		clock.Advance(time.Second)
	}

	assert.False(t, l.CanSubmit(formID))
	assert.Positive(t, l.TimeRemaining(formID))

	// Once the oldest record ages past the window the next attempt goes
	// through again.
	clock.Advance(limiter.DefaultWindow)
	assert.True(t, l.CanSubmit(formID))
	assert.Zero(t, l.TimeRemaining(formID))
}

func TestTimeRemainingCountsFromOldest(t *testing.T) {
	l, clock := newTestLimiter(t, "ua-1")

	l.RecordSubmission(formID)
	clock.Advance(10 * time.Second)
	l.RecordSubmission(formID)
	l.RecordSubmission(formID)

	// Oldest record is 10s old out of a 60s window.
	assert.Equal(t, 50, l.TimeRemaining(formID))

	clock.Advance(49 * time.Second)
	assert.Equal(t, 1, l.TimeRemaining(formID))

	clock.Advance(2 * time.Second)
	assert.Zero(t, l.TimeRemaining(formID))
}

func TestScopedByFormAndFingerprint(t *testing.T) {
	store := limiter.NewMemoryStore()
	clock := &fakeClock{t: time.Now()}

	a := limiter.New(store, "ua-a", limiter.WithClock(clock.Now))
	b := limiter.New(store, "ua-b", limiter.WithClock(clock.Now))

	for i := 0; i < limiter.DefaultMaxAttempts; i++ {
		a.RecordSubmission(formID)
	}

	assert.False(t, a.CanSubmit(formID))
	assert.True(t, a.CanSubmit("newsletter_form"), "other forms have their own budget")
	assert.True(t, b.CanSubmit(formID), "other clients have their own budget")
}

func TestPruneOnWrite(t *testing.T) {
	l, clock := newTestLimiter(t, "ua-1")

	l.RecordSubmission(formID)
	l.RecordSubmission(formID)
	clock.Advance(limiter.DefaultWindow + time.Second)

	// The stale records are dropped when the next write happens, so only the
	// fresh one counts.
	l.RecordSubmission(formID)
	assert.True(t, l.CanSubmit(formID))
}

type failingStore struct{}

func (failingStore) Get(string) (string, error)              { return "", errors.New("storage unavailable") }
func (failingStore) Set(string, string, time.Duration) error { return errors.New("storage unavailable") }
func (failingStore) Remove(string) error                     { return errors.New("storage unavailable") }

func TestFailsOpenOnStoreErrors(t *testing.T) {
	l := limiter.New(failingStore{}, "ua-1")

	assert.True(t, l.CanSubmit(formID))
	assert.NotPanics(t, func() { l.RecordSubmission(formID) })
	assert.Zero(t, l.TimeRemaining(formID))
}

func TestCorruptBlobIsDiscarded(t *testing.T) {
	store := limiter.NewMemoryStore()
	require.NoError(t, store.Set("strict_dev_rate_limit:ua-1", "{not json", 0))

	l := limiter.New(store, "ua-1")
	assert.True(t, l.CanSubmit(formID))

	value, err := store.Get("strict_dev_rate_limit:ua-1")
	require.NoError(t, err)
	assert.Empty(t, value, "corrupt blob should have been removed")
}
