package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"quizboard/core"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration. An empty Addr means no durable
// store is configured and the caller should run fallback-only.
type Config struct {
	Addr         string        `json:"addr" env:"QUIZBOARD_REDIS_ADDR"`
	Password     string        `json:"password" env:"QUIZBOARD_REDIS_PASSWORD"`
	DB           int           `json:"db" env:"QUIZBOARD_REDIS_DB"`
	PoolSize     int           `json:"pool_size"`
	MinIdleConns int           `json:"min_idle_conns"`
	DialTimeout  time.Duration `json:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	Key          string        `json:"key" env:"QUIZBOARD_REDIS_KEY"`
}

// DefaultConfig returns defaults for everything except Addr, which stays
// empty so that durable mode is only selected when explicitly configured.
func DefaultConfig() Config {
	return Config{
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		Key:          "quizboard:leaderboard",
	}
}

// Store implements engine.ScoreStore on a single Redis sorted set. Each
// member is the JSON-serialized entry, keyed by the raw score. ZREVRANGE
// orders equal scores by reverse member order, so every fetched page has its
// equal-score runs re-ranked earlier-id-first to match the local stores.
// Ties split across a page boundary keep the native order.
type Store struct {
	client *redis.Client
	key    string
}

// New creates a Redis-backed store. The connection is established lazily: an
// unreachable server surfaces as core.ErrStoreUnavailable on first use
// instead of failing construction, so the service can start degraded and
// recover without a restart.
func New(config Config) *Store {
	key := config.Key
	if key == "" {
		key = DefaultConfig().Key
	}
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})
	return &Store{client: client, key: key}
}

// NewWithClient creates a Store using an existing Redis client (useful for testing)
func NewWithClient(client *redis.Client, key string) *Store {
	if key == "" {
		key = DefaultConfig().Key
	}
	return &Store{client: client, key: key}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// unavailable maps any backend fault to the sentinel the service degrades on,
// keeping the cause in the message.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, core.ErrStoreUnavailable)
}

func (s *Store) Insert(ctx context.Context, e core.Entry) error {
	member, err := json.Marshal(e)
	if err != nil {
		return unavailable("marshal entry", err)
	}
	err = s.client.ZAdd(ctx, s.key, redis.Z{Score: float64(e.Score), Member: member}).Err()
	if err != nil {
		return unavailable("zadd", err)
	}
	return nil
}

func (s *Store) RangeDescending(ctx context.Context, start, stop int64) ([]core.Entry, error) {
	members, err := s.client.ZRevRange(ctx, s.key, start, stop).Result()
	if err != nil {
		return nil, unavailable("zrevrange", err)
	}
	entries := make([]core.Entry, 0, len(members))
	for _, m := range members {
		var e core.Entry
		if err := json.Unmarshal([]byte(m), &e); err != nil {
			// One corrupt record must not block the ranking; it keeps its
			// slot as a placeholder.
			slog.Warn("unreadable leaderboard record, substituting placeholder", "error", err)
			e = core.Placeholder()
		}
		entries = append(entries, e)
	}
	orderTies(entries)
	return entries, nil
}

// orderTies sorts each run of equal scores by id ascending. Runs are compared
// by the decoded score, so a placeholder substituted for a corrupt record
// keeps its slot unless its immediate neighbors also decode to score zero.
func orderTies(entries []core.Entry) {
	for i := 0; i < len(entries); {
		j := i + 1
		for j < len(entries) && entries[j].Score == entries[i].Score {
			j++
		}
		if j-i > 1 {
			sort.Slice(entries[i:j], func(a, b int) bool {
				return entries[i+a].ID < entries[i+b].ID
			})
		}
		i = j
	}
}

func (s *Store) Cardinality(ctx context.Context) (int64, error) {
	n, err := s.client.ZCard(ctx, s.key).Result()
	if err != nil {
		return 0, unavailable("zcard", err)
	}
	return n, nil
}

func (s *Store) EvictLowest(ctx context.Context, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	removed, err := s.client.ZRemRangeByRank(ctx, s.key, 0, n-1).Result()
	if err != nil {
		return 0, unavailable("zremrangebyrank", err)
	}
	return removed, nil
}
