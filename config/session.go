package config

import (
	"strings"
	"time"
)

// Session persistence backends.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// SessionConfig controls per-visitor session handling.
type SessionConfig struct {
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"ats_visitor"`

	// TTL is how long a visitor's backend cookies are persisted.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// ResolveWait is how long a protected request waits for the first session check
	// before the waiting page is shown.
	ResolveWait time.Duration `env:"SESSION_RESOLVE_WAIT" envDefault:"2s"`

	// CheckTimeout bounds one session check against the backend.
	CheckTimeout time.Duration `env:"SESSION_CHECK_TIMEOUT" envDefault:"5s"`

	// IdleTTL evicts in-memory visitors that have not been seen for this long.
	IdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`

	// Store selects visitor persistence: memory or redis.
	Store string `env:"SESSION_STORE" envDefault:"memory"`
}

// Sanitize normalises the store kind and clamps durations.
func (s *SessionConfig) Sanitize() {
	s.CookieName = strings.TrimSpace(s.CookieName)
	if s.CookieName == "" {
		s.CookieName = "ats_visitor"
	}
	s.Store = strings.ToLower(strings.TrimSpace(s.Store))
	if s.Store != SessionStoreRedis {
		s.Store = SessionStoreMemory
	}
	if s.TTL <= 0 {
		s.TTL = 24 * time.Hour
	}
	if s.ResolveWait < 0 {
		s.ResolveWait = 0
	}
	if s.CheckTimeout <= 0 {
		s.CheckTimeout = 5 * time.Second
	}
	if s.IdleTTL < time.Minute {
		s.IdleTTL = time.Minute
	}
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// LoginLimitConfig throttles login attempts per visitor.
type LoginLimitConfig struct {
	PerMinute int `env:"LOGIN_RATE_PER_MINUTE" envDefault:"10"`
	Burst     int `env:"LOGIN_RATE_BURST"      envDefault:"5"`
}

// Sanitize keeps the limiter usable.
func (l *LoginLimitConfig) Sanitize() {
	if l.PerMinute <= 0 {
		l.PerMinute = 10
	}
	if l.Burst <= 0 {
		l.Burst = 1
	}
}
