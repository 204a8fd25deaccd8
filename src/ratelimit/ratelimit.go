// Package ratelimit implements fixed-window admission control for the API.
// Budgets reset entirely at window boundaries; counters live behind the
// Store interface so a single instance can run on process memory while a
// multi-instance deployment can share a Redis-backed counter store.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

type Category string

const (
	// Connection requests: 10 per day
	CategoryConnection Category = "connection"
	// Public feed/browsing: 100 per minute
	CategoryFeed Category = "feed"
	// Authentication: 5 per 15 minutes
	CategoryAuth Category = "auth"
	// General API: 50 per minute (for other routes)
	CategoryGeneral Category = "general"
)

type Limit struct {
	Points int
	Window time.Duration
}

// Limits is the budget table, one fixed window per category.
var Limits = map[Category]Limit{
	CategoryConnection: {Points: 10, Window: 24 * time.Hour},
	CategoryFeed:       {Points: 100, Window: time.Minute},
	CategoryAuth:       {Points: 5, Window: 15 * time.Minute},
	CategoryGeneral:    {Points: 50, Window: time.Minute},
}

// Message names surfaced on 429 responses, per category.
var messages = map[Category]string{
	CategoryConnection: "Connection request limit",
	CategoryFeed:       "Feed browsing limit",
	CategoryAuth:       "Authentication limit",
	CategoryGeneral:    "API rate limit",
}

// MessageFor returns the display name of the exceeded budget.
func MessageFor(cat Category) string {
	if m, ok := messages[cat]; ok {
		return m
	}
	return "Rate limit"
}

// Decision is the outcome of a single admission attempt.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds the wait up to whole seconds, never below 1.
func (d Decision) RetryAfterSeconds() int {
	secs := int((d.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// RetryAfterMinutes rounds the wait up to whole minutes.
func (d Decision) RetryAfterMinutes() int {
	secs := d.RetryAfterSeconds()
	return (secs + 59) / 60
}

// Store consumes one point from the (key, category) budget. A denied
// Decision carries the time until the window resets. Implementations must
// be safe for concurrent use and must never over-admit under bursts.
type Store interface {
	Consume(ctx context.Context, key string, cat Category) (Decision, error)
}

type window struct {
	count   int
	resetAt time.Time
}

// MemoryStore is the in-process Store for single-instance deployments.
// A process restart forgets every budget; that is the accepted limitation.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	limits  map[Category]Limit
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*window),
		limits:  Limits,
		now:     time.Now,
	}
}

func (s *MemoryStore) Consume(_ context.Context, key string, cat Category) (Decision, error) {
	limit, ok := s.limits[cat]
	if !ok {
		limit = s.limits[CategoryGeneral]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	bucket := key + "|" + string(cat)

	w, ok := s.windows[bucket]
	if !ok || !now.Before(w.resetAt) {
		// Ventana nueva o expirada: el presupuesto se reinicia completo
		w = &window{resetAt: now.Add(limit.Window)}
		s.windows[bucket] = w
	}

	if w.count >= limit.Points {
		return Decision{
			Allowed:    false,
			Limit:      limit.Points,
			Remaining:  0,
			ResetAt:    w.resetAt,
			RetryAfter: w.resetAt.Sub(now),
		}, nil
	}

	w.count++
	return Decision{
		Allowed:   true,
		Limit:     limit.Points,
		Remaining: limit.Points - w.count,
		ResetAt:   w.resetAt,
	}, nil
}

// Sweep drops expired windows. Called periodically from main so the map
// does not grow with every IP that ever hit the API.
func (s *MemoryStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for bucket, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, bucket)
		}
	}
}
