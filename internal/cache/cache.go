// Package cache wraps a Redis client caching completed optimizer runs,
// keyed by a hash of their (horizon, proposal set) input. Optimizer runs
// are CPU-expensive and idempotent for identical input, so a cache hit
// skips the whole evolutionary search. Every method is nil-receiver safe:
// when REDIS_URL isn't configured, New returns a nil *Cache and the
// server runs uncached rather than failing to start.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ska-sa/obssched/internal/proposal"
)

// Cache provides Redis-backed caching of completed timetable runs.
type Cache struct {
	client *redis.Client
}

// RunTTL is how long a cached run result is kept before re-optimization is
// forced again.
const RunTTL = 1 * time.Hour

// RunEntry is a cached optimizer run: the exported schedule bindings and
// the best-fitness history, serialized exactly as the API returns them.
type RunEntry struct {
	ScheduleJSON json.RawMessage `json:"schedule"`
	History      []float64       `json:"history"`
	CachedAt     time.Time       `json:"cached_at"`
}

// New connects to redisURL. An empty URL is not an error: it signals the
// caller to run without a cache, so New returns (nil, nil).
func New(redisURL string) (*Cache, error) {
	if redisURL == "" {
		slog.Info("cache disabled: REDIS_URL not set")
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	provider := "Redis"
	if strings.Contains(redisURL, "upstash.io") {
		provider = "Upstash Redis"
	}
	slog.Info("cache connection established", "provider", provider, "host", opt.Addr)

	return &Cache{client: client}, nil
}

// Close closes the Redis connection. Safe to call on a nil Cache.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// Client returns the underlying Redis client for direct access (e.g. by
// the rate limiter), or nil when caching is disabled.
func (c *Cache) Client() *redis.Client {
	if c == nil {
		return nil
	}
	return c.client
}

// HashRun derives a stable cache key from a horizon and proposal set: any
// two requests with the same dates and the same proposals (by ID,
// duration, LST window, minimum antennas, night and sunrise/sunset flags,
// in the same order) will hit the same entry.
func HashRun(h proposal.Horizon, proposals []*proposal.Proposal) string {
	hash := sha256.New()
	fmt.Fprintf(hash, "%s|%s", h.Start.Format("2006-01-02"), h.End.Format("2006-01-02"))
	for _, p := range proposals {
		fmt.Fprintf(hash, "|%d:%d:%.4f:%.4f:%d:%t:%t",
			p.ID, int64(p.Duration.Seconds()), p.LSTStart, p.LSTStartEnd,
			p.MinimumAntennas, p.NightObs, p.AvoidSunriseSunset)
	}
	return hex.EncodeToString(hash.Sum(nil))[:32]
}

func runKey(hash string) string {
	return fmt.Sprintf("timetable:run:%s", hash)
}

// GetRun retrieves a cached run, or (nil, nil) on a miss or when caching
// is disabled.
func (c *Cache) GetRun(ctx context.Context, hash string) (*RunEntry, error) {
	if c == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, runKey(hash)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var entry RunEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshal cached run: %w", err)
	}
	return &entry, nil
}

// SetRun caches a run result. A no-op when caching is disabled.
func (c *Cache) SetRun(ctx context.Context, hash string, entry RunEntry) error {
	if c == nil {
		return nil
	}
	entry.CachedAt = time.Now()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal run entry: %w", err)
	}
	if err := c.client.Set(ctx, runKey(hash), data, RunTTL).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// InvalidateRun removes a single cached run.
func (c *Cache) InvalidateRun(ctx context.Context, hash string) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, runKey(hash)).Err()
}

// deleteByPattern deletes every key matching pattern via SCAN, avoiding
// the O(n) blocking KEYS command on a large keyspace.
func (c *Cache) deleteByPattern(ctx context.Context, pattern string) error {
	if c == nil {
		return nil
	}

	var cursor uint64
	var deleted int64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("scan keys: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return fmt.Errorf("delete keys: %w", err)
			}
			deleted += n
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("cache keys deleted", "count", deleted, "pattern", pattern)
	}
	return nil
}

// FlushAllRuns removes every cached run result. The cleanup scheduler's
// periodic sweep does not call it; that sweep prunes only the in-memory
// timetable store.
func (c *Cache) FlushAllRuns(ctx context.Context) error {
	return c.deleteByPattern(ctx, "timetable:run:*")
}
