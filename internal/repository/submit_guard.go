package repository

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// SubmitGuard short-circuits duplicate in-flight submits for one attempt.
// It is a fast path only; the status compare-and-swap decides the winner.
type SubmitGuard interface {
	Acquire(ctx context.Context, attemptID string) (release func(), ok bool, err error)
}

type RedisSubmitGuard struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewRedisSubmitGuard(rdb *redis.Client, ttl time.Duration) *RedisSubmitGuard {
	return &RedisSubmitGuard{Redis: rdb, TTL: ttl}
}

func submitLockKey(attemptID string) string {
	return "assessment:submit:" + attemptID
}

// releaseScript deletes the key only while it still holds the caller's
// token, so a holder whose TTL ran out cannot drop a newer guard.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (g *RedisSubmitGuard) Acquire(ctx context.Context, attemptID string) (func(), bool, error) {
	key := submitLockKey(attemptID)
	token := uuid.NewString()
	ok, err := g.Redis.SetNX(ctx, key, token, g.TTL).Result()
	if err != nil || !ok {
		return func() {}, ok, err
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			releaseScript.Run(context.Background(), g.Redis, []string{key}, token)
		})
	}, true, nil
}

// MemorySubmitGuard is the single process guard used when redis is disabled.
type MemorySubmitGuard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewMemorySubmitGuard() *MemorySubmitGuard {
	return &MemorySubmitGuard{inflight: make(map[string]struct{})}
}

func (g *MemorySubmitGuard) Acquire(_ context.Context, attemptID string) (func(), bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inflight[attemptID]; busy {
		return func() {}, false, nil
	}
	g.inflight[attemptID] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inflight, attemptID)
			g.mu.Unlock()
		})
	}, true, nil
}
