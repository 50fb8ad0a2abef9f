package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/capicuhq/capicu/pkg/httputil"
)

// DefaultKeyPrefix namespaces keys when instances share a database.
const DefaultKeyPrefix = "capicu:"

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	// KeyPrefix overrides DefaultKeyPrefix when set.
	KeyPrefix string
}

// RedisStore persists sessions in Redis so any instance behind a load
// balancer can resolve a reconnect token. Expiration rides on key TTLs,
// which makes Cleanup a no-op.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
// The ping is retried with backoff so the server can start while Redis is
// still coming up next to it.
func NewRedisStore(ctx context.Context, cfg Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	err := httputil.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			return &httputil.RetryableError{Err: err}
		}
		return nil
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr, err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) sessionKey(sessionID string) string {
	return s.prefix + "session:" + sessionID
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}

	// The key TTL normally handles expiry; this guards against skew
	// between the server clock and the Redis clock.
	if sess.IsExpired() {
		s.client.Del(ctx, s.sessionKey(sessionID))
		return nil, nil
	}
	return &sess, nil
}

func (s *RedisStore) Set(ctx context.Context, sess *Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, sess.ID)
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.sessionKey(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n := 0
	iter := s.client.Scan(ctx, 0, s.sessionKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scan sessions: %w", err)
	}
	return n, nil
}

// Cleanup is a no-op. Redis expires session keys itself.
func (s *RedisStore) Cleanup(ctx context.Context) error { return nil }

// Close releases the underlying connection pool. Leaderboards returned by
// this store share the pool and stop working after Close.
func (s *RedisStore) Close() error { return s.client.Close() }

// Leaderboard returns a standings board on this store's connection.
func (s *RedisStore) Leaderboard() *RedisLeaderboard {
	return &RedisLeaderboard{client: s.client, key: s.prefix + "leaderboard"}
}

var _ Store = (*RedisStore)(nil)

// =============================================================================
// Redis-backed standings
// =============================================================================

// RedisLeaderboard keeps the standings in a sorted set, one member per
// player name scored by matches won.
type RedisLeaderboard struct {
	client *redis.Client
	key    string
}

func (l *RedisLeaderboard) RecordWin(ctx context.Context, player string) error {
	if err := l.client.ZIncrBy(ctx, l.key, 1, player).Err(); err != nil {
		return fmt.Errorf("record win: %w", err)
	}
	return nil
}

func (l *RedisLeaderboard) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}

	ranked, err := l.client.ZRevRangeWithScores(ctx, l.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read standings: %w", err)
	}

	entries := make([]Entry, 0, len(ranked))
	for _, z := range ranked {
		player, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Player: player, Wins: int(z.Score)})
	}
	return entries, nil
}

var _ Leaderboard = (*RedisLeaderboard)(nil)
