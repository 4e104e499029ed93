package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/msribeiro2010/napje-pje-proxy/dto"
)

// WindowStore is the keyed counter state behind the rate limiter. Take must
// be atomic: two concurrent calls for the same key on the window's last slot
// must never both be allowed. Implementations own eviction of expired keys.
type WindowStore interface {
	Take(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (*dto.RateLimitInfo, error)
	Reset(ctx context.Context, key string) error
	Len(ctx context.Context) (int, error)
}

// ==================== IN-MEMORY STORE ====================

type rateWindow struct {
	count int
	reset time.Time
}

// MemoryWindowStore is the single-process default. One entry per caller key,
// created lazily, reset in place when the window expires. A denied request
// does not increment the counter.
type MemoryWindowStore struct {
	mutex   sync.Mutex
	windows map[string]*rateWindow
}

func NewMemoryWindowStore() *MemoryWindowStore {
	return &MemoryWindowStore{windows: make(map[string]*rateWindow)}
}

func (s *MemoryWindowStore) Take(_ context.Context, key string, limit int, window time.Duration, now time.Time) (*dto.RateLimitInfo, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	w, exists := s.windows[key]
	if !exists || now.After(w.reset) {
		w = &rateWindow{count: 1, reset: now.Add(window)}
		s.windows[key] = w
		reset := w.reset
		return &dto.RateLimitInfo{Allowed: true, Remaining: limit - 1, ResetTime: &reset}, nil
	}

	if w.count >= limit {
		reset := w.reset
		return &dto.RateLimitInfo{Allowed: false, Remaining: 0, ResetTime: &reset}, nil
	}

	w.count++
	reset := w.reset
	return &dto.RateLimitInfo{Allowed: true, Remaining: limit - w.count, ResetTime: &reset}, nil
}

func (s *MemoryWindowStore) Reset(_ context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.windows, key)
	return nil
}

func (s *MemoryWindowStore) Len(_ context.Context) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.windows), nil
}

// Sweep drops windows whose reset time has passed. Called by the limiter's
// janitor so the map does not grow with every caller the process ever saw.
func (s *MemoryWindowStore) Sweep(now time.Time) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	removed := 0
	for key, w := range s.windows {
		if now.After(w.reset) {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}

// ==================== REDIS STORE ====================

const redisWindowPrefix = "ratelimit:"

// takeScript counts atomically server-side. A denied take decrements back so
// the stored counter never exceeds the limit. Returns {allowed, remaining, pttl}.
var takeScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
local limit = tonumber(ARGV[1])
if current > limit then
	redis.call("DECR", KEYS[1])
	return {0, 0, redis.call("PTTL", KEYS[1])}
end
return {1, limit - current, redis.call("PTTL", KEYS[1])}
`)

// RedisWindowStore shares counters across proxy replicas. Expiry is handled
// by key TTLs, so no sweep is needed; Redis' clock is authoritative and the
// caller-supplied now is only used to shape the reset timestamp.
type RedisWindowStore struct {
	client *redis.Client
}

func NewRedisWindowStore(client *redis.Client) *RedisWindowStore {
	return &RedisWindowStore{client: client}
}

func (s *RedisWindowStore) Take(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (*dto.RateLimitInfo, error) {
	res, err := takeScript.Run(ctx, s.client, []string{redisWindowPrefix + key}, limit, window.Milliseconds()).Int64Slice()
	if err != nil {
		return nil, err
	}

	info := &dto.RateLimitInfo{
		Allowed:   res[0] == 1,
		Remaining: int(res[1]),
	}
	if res[2] > 0 {
		reset := now.Add(time.Duration(res[2]) * time.Millisecond)
		info.ResetTime = &reset
	}
	return info, nil
}

func (s *RedisWindowStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisWindowPrefix+key).Err()
}

func (s *RedisWindowStore) Len(ctx context.Context) (int, error) {
	var cursor uint64
	count := 0
	for {
		keys, next, err := s.client.Scan(ctx, cursor, redisWindowPrefix+"*", 100).Result()
		if err != nil {
			return 0, err
		}
		for _, k := range keys {
			if strings.HasPrefix(k, redisWindowPrefix) {
				count++
			}
		}
		if next == 0 {
			return count, nil
		}
		cursor = next
	}
}
