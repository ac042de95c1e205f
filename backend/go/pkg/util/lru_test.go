package util

import (
	"testing"
	"time"
)

// counter 记录 create 被调用的次数，用于判断键是否命中。
type counter struct{ calls int }

func (c *counter) create() int {
	c.calls++
	return c.calls
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewWithConfig[string, int](CacheConfig{Capacity: 2})
	if err != nil {
		t.Fatal(err)
	}
	n := &counter{}
	c.GetOrCreate("a", n.create)
	c.GetOrCreate("b", n.create)
	c.GetOrCreate("a", n.create)
	c.GetOrCreate("c", n.create)
	if n.calls != 3 {
		t.Fatalf("calls = %d, want 3", n.calls)
	}

	if v := c.GetOrCreate("a", n.create); v != 1 {
		t.Errorf("a = %d, want 1 (still cached)", v)
	}
	if v := c.GetOrCreate("b", n.create); v != 4 {
		t.Errorf("b = %d, want 4 (recreated after eviction)", v)
	}
}

func TestLRUExpiresIdleEntries(t *testing.T) {
	now := time.Unix(0, 0)
	c, _ := NewWithConfig[string, int](CacheConfig{Capacity: 10, TTL: time.Minute, Now: func() time.Time { return now }})
	n := &counter{}
	c.GetOrCreate("a", n.create)

	now = now.Add(50 * time.Second)
	if v := c.GetOrCreate("a", n.create); v != 1 {
		t.Fatal("a should still be present")
	}
	now = now.Add(50 * time.Second)
	if v := c.GetOrCreate("a", n.create); v != 1 {
		t.Fatal("access should have refreshed the TTL")
	}
	now = now.Add(61 * time.Second)
	if v := c.GetOrCreate("a", n.create); v != 2 {
		t.Error("a should have expired")
	}
}

func TestGetOrCreateCallsCreateOnce(t *testing.T) {
	c, _ := NewWithConfig[string, *int](CacheConfig{Capacity: 4})
	calls := 0
	create := func() *int { calls++; v := calls; return &v }

	first := c.GetOrCreate("k", create)
	second := c.GetOrCreate("k", create)
	if first != second || calls != 1 {
		t.Errorf("create called %d times", calls)
	}
}

func TestNewWithConfigRequiresCapacity(t *testing.T) {
	if _, err := NewWithConfig[string, int](CacheConfig{}); err == nil {
		t.Error("expected error for zero capacity")
	}
}
