package cache

import (
	"fmt"
	"time"

	"github.com/kabeer11000/cache/observability"
)

// Reason explains why an entry left the store.
type Reason string

const (
	// ReasonExpire marks removal by the reaper after strict expiry.
	ReasonExpire Reason = "expire"
	// ReasonLRU marks removal by capacity-triggered eviction.
	ReasonLRU Reason = "lru"
	// ReasonDelete marks explicit removal via Delete.
	ReasonDelete Reason = "delete"
	// ReasonClear marks bulk removal via Clear.
	ReasonClear Reason = "clear"
)

// CloneFunc returns a value-equal but reference-independent copy of v.
// The engine never inspects values itself; deep copying is delegated
// entirely to this collaborator.
type CloneFunc func(v any) any

// DisposeFunc observes every entry removal together with its reason.
type DisposeFunc func(key string, value any, reason Reason)

// SizeFunc estimates the in-memory footprint of an entry in bytes.
// It is best-effort only; Stats sums whatever it reports.
type SizeFunc func(key string, value any) int

// Config holds all recognized cache options. The zero value is a valid
// configuration: unbounded, never-expiring, reaper disabled.
//
// Config is immutable after New; mutating it afterwards has no effect.
type Config struct {
	// DefaultTTL applies when Set or GetOrLoad is used without an
	// explicit TTL. Zero means entries never expire.
	DefaultTTL time.Duration `mapstructure:"default_ttl"`

	// MaxEntries bounds the store. Zero means unbounded.
	MaxEntries int `mapstructure:"max_entries"`

	// ReapInterval is the background sweep period. Zero disables the
	// reaper; expired entries are then only reclaimed by eviction.
	ReapInterval time.Duration `mapstructure:"reap_interval"`

	// AllowStale serves expired values unconditionally on reads.
	AllowStale bool `mapstructure:"allow_stale"`

	// StaleWhileRevalidate serves expired values for this long past
	// their expiry. Zero disables the window.
	StaleWhileRevalidate time.Duration `mapstructure:"stale_while_revalidate"`

	// StaleIfError lets GetOrLoad fall back to an expired entry for
	// this long past expiry when the loader fails. Zero disables it.
	StaleIfError time.Duration `mapstructure:"stale_if_error"`

	// CloneOnAccess copies values on write and on read using Clone,
	// giving callers reference independence from the stored value.
	// It has no effect unless Clone is set.
	CloneOnAccess bool `mapstructure:"clone_on_access"`

	// Clone is the copy collaborator used when CloneOnAccess is set.
	Clone CloneFunc `mapstructure:"-"`

	// OnDispose is invoked for every entry removed with reason
	// expire, lru, delete or clear. Panics are isolated.
	OnDispose DisposeFunc `mapstructure:"-"`

	// SizeOf is the byte-estimation collaborator used by Stats.
	SizeOf SizeFunc `mapstructure:"-"`

	// Logger receives debug/warn output. Nil means silent.
	Logger *observability.Logger `mapstructure:"-"`

	// Metrics receives engine counters. Nil is safe.
	Metrics *observability.Metrics `mapstructure:"-"`
}

// Validate checks the configuration for nonsensical values.
func (c *Config) Validate() error {
	if c.DefaultTTL < 0 {
		return fmt.Errorf("cache: default_ttl must not be negative, got %v", c.DefaultTTL)
	}
	if c.MaxEntries < 0 {
		return fmt.Errorf("cache: max_entries must not be negative, got %d", c.MaxEntries)
	}
	if c.ReapInterval < 0 {
		return fmt.Errorf("cache: reap_interval must not be negative, got %v", c.ReapInterval)
	}
	if c.StaleWhileRevalidate < 0 {
		return fmt.Errorf("cache: stale_while_revalidate must not be negative, got %v", c.StaleWhileRevalidate)
	}
	if c.StaleIfError < 0 {
		return fmt.Errorf("cache: stale_if_error must not be negative, got %v", c.StaleIfError)
	}
	return nil
}
