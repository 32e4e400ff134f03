package httpx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginLimiter_BurstThenBlocked(t *testing.T) {
	l := NewLoginLimiter(LoginLimiterConfig{PerMinute: 1, Burst: 2})
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("v1"))
	assert.True(t, l.Allow("v1"))
	assert.False(t, l.Allow("v1"), "third attempt exceeds the burst")
	assert.True(t, l.Allow("v2"), "visitors are limited independently")

	now = now.Add(time.Minute)
	assert.True(t, l.Allow("v1"), "a token is refilled after a minute")
}

func TestLoginLimiter_Sweep(t *testing.T) {
	l := NewLoginLimiter(LoginLimiterConfig{PerMinute: 10, Burst: 5})
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("old")
	now = now.Add(20 * time.Minute)
	l.Allow("fresh")

	assert.Equal(t, 1, l.sweep(loginLimiterIdle))
	assert.Equal(t, 1, l.Len())
}

func TestLoginLimiter_DisabledAllowsAll(t *testing.T) {
	l := NewLoginLimiter(LoginLimiterConfig{})
	assert.Nil(t, l)
	for range 100 {
		assert.True(t, l.Allow("v"))
	}
	assert.Equal(t, 0, l.Len())
}
