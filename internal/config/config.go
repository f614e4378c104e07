// Package config assembles the service's operational knobs from
// environment variables into one validated struct, replacing the
// teacher's scattered envOr() package globals with constructor injection.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds every knob named in spec.md §6, all defaulted.
type Config struct {
	HNBaseURL string `validate:"required,url"`
	UserAgent string `validate:"required"`
	RedisAddr string // empty => in-memory cache store

	RefreshInterval      time.Duration `validate:"min=1s"`
	CacheDuration         time.Duration `validate:"min=1s"`
	MaxStories            int           `validate:"min=1,max=200"`
	FanoutConcurrency     int           `validate:"min=1"`
	PerAttemptTimeout     time.Duration `validate:"min=1s"`
	Retries               int           `validate:"min=0"`
	BreakerThreshold      uint32        `validate:"min=1"`
	BreakerOpenDuration   time.Duration `validate:"min=1s"`
	StartupDelay          time.Duration
	ErrorBackoff          time.Duration `validate:"min=0s"`
}

// FromEnv builds a Config from the process environment, applying the
// defaults from spec.md §6 when a variable is unset or empty.
func FromEnv() (Config, error) {
	cfg := Config{
		HNBaseURL:           getStr("HN_BASE_URL", "https://hacker-news.firebaseio.com/v0"),
		UserAgent:           getStr("USER_AGENT", "jr-it-news/1.0 (+https://github.com/jnrpurin/jr-it-news)"),
		RedisAddr:           getStr("REDIS_ADDR", ""),
		RefreshInterval:     getDuration("REFRESH_INTERVAL", 120*time.Second),
		CacheDuration:       getDuration("CACHE_DURATION", 120*time.Second),
		MaxStories:          getInt("MAX_STORIES", 200),
		FanoutConcurrency:   getInt("FANOUT_CONCURRENCY", 10),
		PerAttemptTimeout:   getDuration("PER_ATTEMPT_TIMEOUT", 8*time.Second),
		Retries:             getInt("RETRIES", 3),
		BreakerThreshold:    uint32(getInt("BREAKER_THRESHOLD", 5)),
		BreakerOpenDuration: getDuration("BREAKER_OPEN_DURATION", 30*time.Second),
		StartupDelay:        getDuration("STARTUP_DELAY", 10*time.Second),
		ErrorBackoff:        getDuration("ERROR_BACKOFF", 30*time.Second),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// StoreTTL is the pre-processed snapshot's store-level TTL: cache
// duration plus one minute, per spec.md §9's "double-TTL" note. This is
// deliberately longer than CacheDuration itself so stale-fallback has
// something to return after the snapshot is considered stale on the
// normal path but before the store evicts it. RefreshInterval is a
// separate knob: it only paces the background warmup loop's cadence.
func (c Config) StoreTTL() time.Duration {
	return c.CacheDuration + time.Minute
}

func getStr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return fallback
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
