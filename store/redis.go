// Package store provides session-store backends beyond the in-memory
// default, for deployments where trainer sessions must survive a
// process restart or be shared between instances.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	skeptic "github.com/dialoglabs/skeptic-persona-go"
)

// RedisSessionStore keeps session state as JSON blobs in Redis under
// "{prefix}:{sessionID}". The TTL is the eviction policy the in-memory
// store deliberately lacks: idle sessions expire instead of
// accumulating forever.
type RedisSessionStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	ctx    context.Context
}

// RedisStoreConfig configures the Redis store.
type RedisStoreConfig struct {
	Prefix string        // key prefix, default "skeptic:session"
	TTL    time.Duration // per-session idle TTL, 0 = no expiry
}

// NewRedisSessionStore creates a SessionStore backed by Redis.
func NewRedisSessionStore(client redis.UniversalClient, config ...RedisStoreConfig) *RedisSessionStore {
	cfg := RedisStoreConfig{Prefix: "skeptic:session"}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "skeptic:session"
	}
	return &RedisSessionStore{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
		ctx:    context.Background(),
	}
}

func (r *RedisSessionStore) key(sessionID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, sessionID)
}

// Load fetches the session state, creating a fresh one when the key is
// absent or expired.
func (r *RedisSessionStore) Load(sessionID string) (*skeptic.SessionState, error) {
	raw, err := r.client.Get(r.ctx, r.key(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return skeptic.NewSessionState(), nil
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	st := skeptic.NewSessionState()
	if err := json.Unmarshal([]byte(raw), st); err != nil {
		return nil, fmt.Errorf("decode session %q: %w", sessionID, err)
	}
	return st, nil
}

// Save writes the session state back, refreshing the idle TTL.
func (r *RedisSessionStore) Save(sessionID string, state *skeptic.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session %q: %w", sessionID, err)
	}
	if err := r.client.Set(r.ctx, r.key(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (r *RedisSessionStore) Close() error {
	return r.client.Close()
}

// Compile-time interface check.
var _ skeptic.SessionStore = (*RedisSessionStore)(nil)
