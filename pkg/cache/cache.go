// Package cache stores serialized stage results keyed by the hash of the
// input document, so repeated runs over an unchanged problem skip the work.
//
// Three backends are provided: [FileCache] for the CLI, [RedisCache] for the
// HTTP server, and [NullCache] when caching is disabled. Keys are built by a
// [Keyer]; wrap one in [NewScopedKeyer] to separate namespaces.
package cache

import (
	"context"
	"strconv"
	"time"
)

// Default time-to-live values for cached entries.
const (
	TTLStage   = 7 * 24 * time.Hour
	TTLProcess = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ProcessKeyOpts are the options that change a process-list result.
type ProcessKeyOpts struct {
	CycleLimit int `json:"cycle_limit"`
}

// Keyer builds cache keys.
type Keyer interface {
	// StageKey addresses the result of running stage over an input document
	// with the given hash.
	StageKey(stage, inputHash string) string
	// ProcessKey addresses the process list and nesting derived from an MPG.
	ProcessKey(mpgHash string, opts ProcessKeyOpts) string
}

// DefaultKeyer produces "stage:<name>:<sha256>" and "process:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// StageKey implements Keyer.
func (DefaultKeyer) StageKey(stage, inputHash string) string {
	return hashKey("stage:"+stage, inputHash)
}

// ProcessKey implements Keyer.
func (DefaultKeyer) ProcessKey(mpgHash string, opts ProcessKeyOpts) string {
	return hashKey("process", mpgHash, strconv.Itoa(opts.CycleLimit))
}
