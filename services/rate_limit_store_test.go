package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryWindowStore_FixedWindow(t *testing.T) {
	t.Parallel()

	store := NewMemoryWindowStore()
	ctx := context.Background()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	// First request creates the window with count=1.
	info, err := store.Take(ctx, "caller", 3, time.Minute, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !info.Allowed || info.Remaining != 2 {
		t.Fatalf("first take: allowed=%v remaining=%d", info.Allowed, info.Remaining)
	}
	if info.ResetTime == nil || !info.ResetTime.Equal(now.Add(time.Minute)) {
		t.Fatalf("unexpected reset time: %v", info.ResetTime)
	}

	// Exactly limit requests succeed.
	for i := 0; i < 2; i++ {
		info, err = store.Take(ctx, "caller", 3, time.Minute, now)
		if err != nil || !info.Allowed {
			t.Fatalf("take %d: allowed=%v err=%v", i+2, info.Allowed, err)
		}
	}

	// limit+1 within the window is denied.
	info, err = store.Take(ctx, "caller", 3, time.Minute, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Allowed || info.Remaining != 0 {
		t.Fatalf("over-limit take: allowed=%v remaining=%d", info.Allowed, info.Remaining)
	}

	// Still denied a second time: the counter must not keep growing.
	info, _ = store.Take(ctx, "caller", 3, time.Minute, now)
	if info.Allowed {
		t.Fatal("expected continued denial within window")
	}

	// After the window elapses the counter restarts at 1.
	later := now.Add(time.Minute + time.Second)
	info, err = store.Take(ctx, "caller", 3, time.Minute, later)
	if err != nil || !info.Allowed {
		t.Fatalf("post-expiry take: allowed=%v err=%v", info.Allowed, err)
	}
	if info.Remaining != 2 {
		t.Fatalf("post-expiry remaining = %d, want 2", info.Remaining)
	}
}

func TestMemoryWindowStore_IndependentCallers(t *testing.T) {
	t.Parallel()

	store := NewMemoryWindowStore()
	ctx := context.Background()
	now := time.Now()

	if info, _ := store.Take(ctx, "a", 1, time.Minute, now); !info.Allowed {
		t.Fatal("caller a should be allowed")
	}
	if info, _ := store.Take(ctx, "a", 1, time.Minute, now); info.Allowed {
		t.Fatal("caller a should be exhausted")
	}
	if info, _ := store.Take(ctx, "b", 1, time.Minute, now); !info.Allowed {
		t.Fatal("caller b must not share caller a's window")
	}
}

func TestMemoryWindowStore_NoDoubleSpendOnLastSlot(t *testing.T) {
	t.Parallel()

	store := NewMemoryWindowStore()
	ctx := context.Background()
	now := time.Now()

	// Burn all but the last slot.
	limit := 10
	for i := 0; i < limit-1; i++ {
		if info, _ := store.Take(ctx, "caller", limit, time.Minute, now); !info.Allowed {
			t.Fatalf("warmup take %d denied", i)
		}
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info, err := store.Take(ctx, "caller", limit, time.Minute, now)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if info.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 1 {
		t.Fatalf("last slot allowed %d concurrent takers, want exactly 1", allowed)
	}
}

func TestMemoryWindowStore_Sweep(t *testing.T) {
	t.Parallel()

	store := NewMemoryWindowStore()
	ctx := context.Background()
	now := time.Now()

	store.Take(ctx, "old", 5, time.Minute, now)
	store.Take(ctx, "fresh", 5, time.Hour, now)

	removed := store.Sweep(now.Add(2 * time.Minute))
	if removed != 1 {
		t.Fatalf("swept %d windows, want 1", removed)
	}

	n, _ := store.Len(ctx)
	if n != 1 {
		t.Fatalf("len after sweep = %d, want 1", n)
	}
}

func TestMemoryWindowStore_Reset(t *testing.T) {
	t.Parallel()

	store := NewMemoryWindowStore()
	ctx := context.Background()
	now := time.Now()

	store.Take(ctx, "caller", 1, time.Minute, now)
	if info, _ := store.Take(ctx, "caller", 1, time.Minute, now); info.Allowed {
		t.Fatal("expected denial before reset")
	}

	if err := store.Reset(ctx, "caller"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if info, _ := store.Take(ctx, "caller", 1, time.Minute, now); !info.Allowed {
		t.Fatal("expected fresh window after reset")
	}
}

func TestRedisWindowStore_FixedWindow(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisWindowStore(client)

	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 3; i++ {
		info, err := store.Take(ctx, "caller", 3, time.Minute, now)
		if err != nil {
			t.Fatalf("take %d: %v", i+1, err)
		}
		if !info.Allowed {
			t.Fatalf("take %d denied, want allowed", i+1)
		}
		if info.Remaining != 3-(i+1) {
			t.Fatalf("take %d remaining = %d, want %d", i+1, info.Remaining, 3-(i+1))
		}
	}

	info, err := store.Take(ctx, "caller", 3, time.Minute, now)
	if err != nil {
		t.Fatalf("over-limit take: %v", err)
	}
	if info.Allowed {
		t.Fatal("expected denial at limit")
	}

	// TTL expiry opens a fresh window.
	mr.FastForward(61 * time.Second)

	info, err = store.Take(ctx, "caller", 3, time.Minute, now)
	if err != nil || !info.Allowed {
		t.Fatalf("post-expiry take: allowed=%v err=%v", info.Allowed, err)
	}
	if info.Remaining != 2 {
		t.Fatalf("post-expiry remaining = %d, want 2", info.Remaining)
	}
}

func TestRedisWindowStore_ResetAndLen(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisWindowStore(client)

	ctx := context.Background()
	now := time.Now()

	store.Take(ctx, "a", 1, time.Minute, now)
	store.Take(ctx, "b", 1, time.Minute, now)

	n, err := store.Len(ctx)
	if err != nil || n != 2 {
		t.Fatalf("len = %d err=%v, want 2", n, err)
	}

	if err := store.Reset(ctx, "a"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if info, _ := store.Take(ctx, "a", 1, time.Minute, now); !info.Allowed {
		t.Fatal("expected fresh window after reset")
	}
}
