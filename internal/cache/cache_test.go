package cache

import (
	"context"
	"testing"
	"time"
)

type shortKey struct{ id string }

func (k shortKey) CacheKey() string   { return "short:" + k.id }
func (k shortKey) TTL() time.Duration { return 20 * time.Millisecond }

type longKey struct{ id string }

func (k longKey) CacheKey() string   { return "long:" + k.id }
func (k longKey) TTL() time.Duration { return time.Hour }

func TestMemoryTTLComesFromKeyType(t *testing.T) {
	ctx := context.Background()
	short := NewMemory[shortKey, []int]("short", time.Minute)
	long := NewMemory[longKey, []int]("long", time.Minute)

	short.Set(ctx, shortKey{id: "a"}, []int{1, 2})
	long.Set(ctx, longKey{id: "a"}, []int{3})

	if got, ok := short.Get(ctx, shortKey{id: "a"}); !ok || len(got) != 2 {
		t.Fatalf("short entry missing before expiry: %v %v", got, ok)
	}

	time.Sleep(50 * time.Millisecond)

	if _, ok := short.Get(ctx, shortKey{id: "a"}); ok {
		t.Fatalf("short entry should have expired")
	}
	if got, ok := long.Get(ctx, longKey{id: "a"}); !ok || got[0] != 3 {
		t.Fatalf("long entry missing: %v %v", got, ok)
	}
}

func TestMemoryMiss(t *testing.T) {
	m := NewMemory[longKey, string]("miss", 0)
	if _, ok := m.Get(context.Background(), longKey{id: "absent"}); ok {
		t.Fatalf("unexpected hit")
	}
	m.Set(context.Background(), longKey{id: "present"}, "v")
	if m.Len() != 1 {
		t.Fatalf("len: %d", m.Len())
	}
}
