package strava

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Strava rate limits (defaults, overridden by response headers):
// - 100 requests per 15 minutes, resetting on the quarter hour
// - 1000 requests per day, resetting at midnight UTC

// Quota tracks the API usage Strava reports in its response headers. It never
// blocks: once a window is known to be spent, Exhausted reports true until
// that window resets and the client refuses to send further requests.
type Quota struct {
	mu sync.Mutex

	// 15-minute window
	shortLimit    int
	shortUsage    int
	shortResetsAt time.Time

	// Daily window
	dailyLimit    int
	dailyUsage    int
	dailyResetsAt time.Time

	now func() time.Time
}

// NewQuota creates a Quota with Strava's default limits
func NewQuota() *Quota {
	q := &Quota{
		shortLimit: 100,
		dailyLimit: 1000,
		now:        time.Now,
	}
	q.resetWindows(q.now())
	return q
}

func (q *Quota) resetWindows(now time.Time) {
	q.shortResetsAt = now.Truncate(15 * time.Minute).Add(15 * time.Minute)
	q.dailyResetsAt = now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
}

// expire clears usage for windows that have rolled over. Callers hold mu.
func (q *Quota) expire(now time.Time) {
	if !now.Before(q.shortResetsAt) {
		q.shortUsage = 0
		q.shortResetsAt = now.Truncate(15 * time.Minute).Add(15 * time.Minute)
	}
	if !now.Before(q.dailyResetsAt) {
		q.dailyUsage = 0
		q.dailyResetsAt = now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	}
}

// Exhausted reports whether either window is known to be spent
func (q *Quota) Exhausted() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.expire(q.now())
	return q.shortUsage >= q.shortLimit || q.dailyUsage >= q.dailyLimit
}

// Record counts a request that was sent without usage headers coming back
func (q *Quota) Record() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.expire(q.now())
	q.shortUsage++
	q.dailyUsage++
}

// UpdateFromHeaders updates usage from Strava response headers.
// It reports whether usage headers were present.
func (q *Quota) UpdateFromHeaders(h http.Header) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.expire(q.now())

	// Strava returns: X-RateLimit-Limit: "100,1000" and X-RateLimit-Usage: "34,512"
	found := false
	if short, daily, ok := parsePair(h.Get("X-RateLimit-Usage")); ok {
		q.shortUsage = short
		q.dailyUsage = daily
		found = true
	}
	if short, daily, ok := parsePair(h.Get("X-RateLimit-Limit")); ok {
		q.shortLimit = short
		q.dailyLimit = daily
	}
	return found
}

// MarkExhausted records that Strava refused a request for quota reasons
func (q *Quota) MarkExhausted() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.shortUsage = q.shortLimit
}

// Status returns current rate limit status
func (q *Quota) Status() (shortRemaining, dailyRemaining int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.expire(q.now())
	return q.shortLimit - q.shortUsage, q.dailyLimit - q.dailyUsage
}

func parsePair(v string) (int, int, bool) {
	parts := strings.Split(v, ",")
	if len(parts) < 2 {
		return 0, 0, false
	}
	a, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	b, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return a, b, true
}
