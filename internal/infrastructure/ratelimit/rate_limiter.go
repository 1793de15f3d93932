package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	ActionSendMessage   = "send_message"
	ActionContactSeller = "contact_seller"
	ActionSearch        = "search"
	ActionRegister      = "register"
)

// Limit allows Burst actions at once and refills one every Every.
type Limit struct {
	Burst int
	Every time.Duration
}

var defaultLimits = map[string]Limit{
	// 10 messages, then one every 6 seconds
	ActionSendMessage: {Burst: 10, Every: 6 * time.Second},
	// 5 new conversations, then one every 12 minutes
	ActionContactSeller: {Burst: 5, Every: 12 * time.Minute},
	// the interpreter calls a paid provider
	ActionSearch: {Burst: 20, Every: 3 * time.Second},
	// keyed by client IP
	ActionRegister: {Burst: 5, Every: time.Minute},
}

var fallbackLimit = Limit{Burst: 20, Every: 3 * time.Second}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per user and action.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limits  map[string]Limit
	now     func() time.Time
}

func NewRateLimiter() *RateLimiter {
	limits := make(map[string]Limit, len(defaultLimits))
	for k, v := range defaultLimits {
		limits[k] = v
	}
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		limits:  limits,
		now:     time.Now,
	}
}

// SetLimit overrides the limit for action. Existing buckets keep theirs.
func (rl *RateLimiter) SetLimit(action string, l Limit) {
	rl.mu.Lock()
	rl.limits[action] = l
	rl.mu.Unlock()
}

// Allow consumes a token for the user's action. When none is available it
// reports how long until the next one.
func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	now := rl.now()
	b := rl.bucket(userID+":"+action, action, now)

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, rl.limitFor(action).Every
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (rl *RateLimiter) bucket(key, action string, now time.Time) *bucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		l := rl.limitLocked(action)
		b = &bucket{limiter: rate.NewLimiter(rate.Every(l.Every), l.Burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b
}

func (rl *RateLimiter) limitFor(action string) Limit {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.limitLocked(action)
}

func (rl *RateLimiter) limitLocked(action string) Limit {
	if l, ok := rl.limits[action]; ok {
		return l
	}
	return fallbackLimit
}

// Cleanup drops buckets idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > maxIdle {
			delete(rl.buckets, key)
		}
	}
}

func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

func (rl *RateLimiter) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			case <-ctx.Done():
				return
			}
		}
	}()
}
