package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	applogger "StockPulse/pkg/logger"
)

// envelope wraps a payload with its write time. Entries are written without a
// redis TTL so that staleness stays a read-time decision, matching FileStore.
type envelope struct {
	WrittenAt time.Time       `json:"written_at"`
	Payload   json.RawMessage `json:"payload"`
}

// RedisStore is a redis-backed Store for deployments that share one cache
// across hosts.
type RedisStore struct {
	client *redis.Client
	prefix string
	expiry time.Duration
	now    func() time.Time
	l      *applogger.Logger
}

// NewRedisStore creates a redis-backed store and verifies connectivity.
func NewRedisStore(opts ...RedisOption) (*RedisStore, error) {
	cfg := &RedisConfig{
		Addr:   "localhost:6379",
		Prefix: "stockpulse",
		Expiry: 24 * time.Hour,
		Now:    time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{
		client: client,
		prefix: cfg.Prefix,
		expiry: cfg.Expiry,
		now:    cfg.Now,
		l:      cfg.Logger,
	}, nil
}

// Close closes the redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Get(ctx context.Context, key string, dest interface{}) error {
	b, err := s.client.Get(ctx, s.wrapKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}

	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	if s.now().Sub(env.WrittenAt) >= s.expiry {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(env.Payload, dest); err != nil {
		return fmt.Errorf("decode cache payload %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	b, err := json.Marshal(envelope{WrittenAt: s.now(), Payload: payload})
	if err != nil {
		return fmt.Errorf("encode cache envelope %s: %w", key, err)
	}
	return s.client.Set(ctx, s.wrapKey(key), b, 0).Err()
}

func (s *RedisStore) InvalidateExpired(ctx context.Context) (int, error) {
	keys, err := s.client.Keys(ctx, s.prefix+":*").Result()
	if err != nil {
		return 0, err
	}

	removed := 0
	now := s.now()
	for _, k := range keys {
		b, err := s.client.Get(ctx, k).Bytes()
		if err != nil {
			continue
		}
		var env envelope
		if err := json.Unmarshal(b, &env); err != nil {
			continue
		}
		if now.Sub(env.WrittenAt) < s.expiry {
			continue
		}
		if err := s.client.Unlink(ctx, k).Err(); err != nil {
			if s.l != nil {
				s.l.Warn("cache sweep: cannot remove entry",
					applogger.String("key", k),
					applogger.Error(err),
				)
			}
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *RedisStore) ClearAll(ctx context.Context) error {
	keys, err := s.client.Keys(ctx, s.prefix+":*").Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Unlink(ctx, keys...).Err()
}

func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	keys, err := s.client.Keys(ctx, s.prefix+":*").Result()
	if err != nil {
		return Stats{}, err
	}

	st := Stats{Entries: len(keys)}
	for _, k := range keys {
		n, err := s.client.StrLen(ctx, k).Result()
		if err != nil {
			continue
		}
		st.TotalBytes += n
	}
	return st, nil
}

func (s *RedisStore) wrapKey(key string) string {
	return s.prefix + ":" + key
}
