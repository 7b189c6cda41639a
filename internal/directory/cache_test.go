package directory

import (
	"testing"
	"time"

	"github.com/eafc-tic/equiptrack/internal/model"
)

func TestCacheStartsExpired(t *testing.T) {
	c := NewCache()
	if _, ok := c.get(time.Now()); ok {
		t.Fatal("fresh cache must report a miss")
	}
}

func TestCachePutGet(t *testing.T) {
	c := NewCache()
	now := time.Now()
	data := []model.Identity{{ID: "a@school.be", FullName: "A", Role: model.RoleAdmin}}

	c.put(data, now, time.Minute)
	got, ok := c.get(now.Add(30 * time.Second))
	if !ok {
		t.Fatal("expected a hit within the TTL")
	}
	if len(got) != 1 || got[0].ID != "a@school.be" {
		t.Fatalf("unexpected cached data: %+v", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache()
	now := time.Now()
	c.put([]model.Identity{{ID: "a@school.be"}}, now, time.Minute)

	if _, ok := c.get(now.Add(2 * time.Minute)); ok {
		t.Fatal("expected a miss after the TTL elapsed")
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := NewCache()
	now := time.Now()
	c.put([]model.Identity{{ID: "a@school.be"}}, now, time.Hour)

	c.invalidate()
	if _, ok := c.get(now); ok {
		t.Fatal("expected a miss after invalidation")
	}
}

func TestCacheEmptyListingIsMiss(t *testing.T) {
	// A nil listing is indistinguishable from "never filled"; put of nil
	// therefore does not count as a cached value.
	c := NewCache()
	now := time.Now()
	c.put(nil, now, time.Hour)
	if _, ok := c.get(now); ok {
		t.Fatal("nil data must not be served as a hit")
	}
}
