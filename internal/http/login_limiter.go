package httpx

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const loginLimiterIdle = 15 * time.Minute

// LoginLimiterConfig bounds login attempts per visitor.
type LoginLimiterConfig struct {
	PerMinute int
	Burst     int
}

type visitorLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// LoginLimiter throttles login attempts per visitor id. A nil *LoginLimiter allows everything.
type LoginLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu       sync.Mutex
	limiters map[string]*visitorLimiter
}

// NewLoginLimiter returns a limiter, or nil when PerMinute is not positive.
func NewLoginLimiter(cfg LoginLimiterConfig) *LoginLimiter {
	if cfg.PerMinute <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &LoginLimiter{
		limit:    rate.Limit(float64(cfg.PerMinute) / 60.0),
		burst:    burst,
		now:      time.Now,
		limiters: make(map[string]*visitorLimiter),
	}
}

// Allow reports whether key may attempt a login now.
func (l *LoginLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	vl, ok := l.limiters[key]
	if !ok {
		vl = &visitorLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = vl
	}
	vl.lastAccess = now
	return vl.limiter.AllowN(now, 1)
}

// Len returns the number of tracked visitors.
func (l *LoginLimiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Run removes idle entries until ctx is done.
func (l *LoginLimiter) Run(ctx context.Context) {
	if l == nil {
		return
	}
	ticker := time.NewTicker(loginLimiterIdle / 3)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep(loginLimiterIdle)
		}
	}
}

func (l *LoginLimiter) sweep(idle time.Duration) int {
	cutoff := l.now().Add(-idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key, vl := range l.limiters {
		if vl.lastAccess.Before(cutoff) {
			delete(l.limiters, key)
			removed++
		}
	}
	return removed
}
