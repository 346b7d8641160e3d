package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemorySettingsCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemorySettingsCache(time.Minute)

	if _, ok, _ := c.Load(ctx); ok {
		t.Fatal("empty cache should miss")
	}

	src := map[string]string{"ai_model": "gemini-1.5-pro"}
	if err := c.Store(ctx, Snapshot{Values: src}); err != nil {
		t.Fatalf("Store() error: %v", err)
	}
	src["ai_model"] = "mutated"

	got, ok, err := c.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load() = %v, %v", ok, err)
	}
	if got.Values["ai_model"] != "gemini-1.5-pro" {
		t.Errorf("cache must hold a copy, got %q", got.Values["ai_model"])
	}

	got.Values["ai_model"] = "changed by caller"
	again, _, _ := c.Load(ctx)
	if again.Values["ai_model"] != "gemini-1.5-pro" {
		t.Error("Load must return a copy")
	}

	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate() error: %v", err)
	}
	if _, ok, _ := c.Load(ctx); ok {
		t.Error("invalidated cache should miss")
	}
}

func TestMemorySettingsCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemorySettingsCache(time.Minute)
	c.now = func() time.Time { return now }

	_ = c.Store(ctx, Snapshot{Values: map[string]string{"k": "v"}})

	now = now.Add(30 * time.Second)
	if _, ok, _ := c.Load(ctx); !ok {
		t.Error("entry should still be fresh")
	}

	now = now.Add(time.Minute)
	if _, ok, _ := c.Load(ctx); ok {
		t.Error("entry should have expired")
	}
}

func TestMemorySettingsCacheDropsStaleFill(t *testing.T) {
	ctx := context.Background()
	c := NewMemorySettingsCache(time.Hour)

	miss, ok, _ := c.Load(ctx)
	if ok {
		t.Fatal("empty cache should miss")
	}

	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate() error: %v", err)
	}

	stale := Snapshot{Values: map[string]string{"ai_model": "old"}, Version: miss.Version}
	if err := c.Store(ctx, stale); err != nil {
		t.Fatalf("Store() error: %v", err)
	}
	if _, ok, _ := c.Load(ctx); ok {
		t.Fatal("a fill read before Invalidate must not be stored")
	}

	fresh, _, _ := c.Load(ctx)
	if fresh.Version != miss.Version+1 {
		t.Errorf("version = %d, want %d", fresh.Version, miss.Version+1)
	}
	_ = c.Store(ctx, Snapshot{Values: map[string]string{"ai_model": "new"}, Version: fresh.Version})
	got, ok, _ := c.Load(ctx)
	if !ok || got.Values["ai_model"] != "new" {
		t.Errorf("Load() = %v, %v; want the current fill", got.Values, ok)
	}
}
