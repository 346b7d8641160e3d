package cache

import (
	"context"
	"sync"
	"time"
)

const (
	// SettingsKey is the cache key of the settings snapshot
	SettingsKey = "voxo:settings"
	// VersionKey counts invalidations of the settings snapshot
	VersionKey = "voxo:settings:version"
)

// Snapshot is a copy of all site settings tagged with the cache version it
// was read under. Version is meaningful on a miss too.
type Snapshot struct {
	Values  map[string]string
	Version uint64
}

// SettingsCache holds a snapshot of all site settings. Invalidate bumps the
// version, and Store drops a snapshot whose version is no longer current, so
// a fill that raced a write never outlives it.
type SettingsCache interface {
	Load(ctx context.Context) (Snapshot, bool, error)
	Store(ctx context.Context, snap Snapshot) error
	Invalidate(ctx context.Context) error
}

// MemorySettingsCache keeps the snapshot in process
type MemorySettingsCache struct {
	mu      sync.RWMutex
	values  map[string]string
	version uint64
	expires time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewMemorySettingsCache creates an in-process cache. ttl <= 0 never expires.
func NewMemorySettingsCache(ttl time.Duration) *MemorySettingsCache {
	return &MemorySettingsCache{ttl: ttl, now: time.Now}
}

func (c *MemorySettingsCache) Load(_ context.Context) (Snapshot, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{Version: c.version}
	if c.values == nil {
		return snap, false, nil
	}
	if c.ttl > 0 && c.now().After(c.expires) {
		return snap, false, nil
	}
	snap.Values = copyMap(c.values)
	return snap, true, nil
}

func (c *MemorySettingsCache) Store(_ context.Context, snap Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if snap.Version != c.version {
		return nil
	}
	c.values = copyMap(snap.Values)
	c.expires = c.now().Add(c.ttl)
	return nil
}

func (c *MemorySettingsCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.version++
	c.values = nil
	return nil
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
