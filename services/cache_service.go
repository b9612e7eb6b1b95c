package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"tableside_server/structs"
	"tableside_server/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	cacheMaxRetries = 3
	menuKeyPattern  = "menu:*"
	categoriesKey   = "menu:categories"
)

// CacheService provides Redis caching with connection pooling and retry logic.
// Cache failures never fail a request; callers log and fall through.
type CacheService struct {
	logger *gecho.Logger
	config *structs.Config
	client *redis.Client
}

func NewCacheService(logger *gecho.Logger, cfg *structs.Config) *CacheService {
	return &CacheService{
		logger: logger,
		config: cfg,
		client: newRedisClient(cfg.Cache),
	}
}

func newRedisClient(cfg *structs.CacheConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,

		// Connection pool settings
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		PoolTimeout:     cfg.PoolTimeout,
		ConnMaxIdleTime: cfg.IdleTimeout,

		// Timeouts
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,

		// Retry settings
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,
	})
}

// Close closes the Redis connection pool
func (cs *CacheService) Close() error {
	return cs.client.Close()
}

// withRetry executes a Redis operation with jittered exponential backoff
func (cs *CacheService) withRetry(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 0; attempt <= cacheMaxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		// Only retry on network/connection errors, not on logical errors like key not found
		if attempt == cacheMaxRetries || !isRetryableRedisError(err) {
			break
		}

		backoff := min(100*time.Millisecond<<attempt, 2*time.Second)
		// jitter ±50%
		wait := backoff/2 + time.Duration(rand.Int64N(int64(backoff/2)+1))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return fmt.Errorf("redis operation failed: %w", lastErr)
}

// isRetryableRedisError determines if an error is worth retrying
func isRetryableRedisError(err error) bool {
	if err == nil || errors.Is(err, redis.Nil) {
		return false
	}

	errStr := err.Error()
	for _, retryable := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"broken pipe",
		"no such host",
		"network is unreachable",
	} {
		if strings.Contains(errStr, retryable) {
			return true
		}
	}

	return false
}

// Set sets a key with TTL
func (cs *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return cs.withRetry(ctx, func() error {
		return cs.client.Set(ctx, key, value, ttl).Err()
	})
}

// Get retrieves a key; a missing key yields "" and no error
func (cs *CacheService) Get(ctx context.Context, key string) (string, error) {
	var result string

	err := cs.withRetry(ctx, func() error {
		val, err := cs.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			result = ""
			return nil
		}
		if err != nil {
			return err
		}
		result = val
		return nil
	})

	return result, err
}

// Delete removes a key
func (cs *CacheService) Delete(ctx context.Context, key string) error {
	return cs.withRetry(ctx, func() error {
		return cs.client.Del(ctx, key).Err()
	})
}

// DeletePattern removes all keys matching a pattern using SCAN
func (cs *CacheService) DeletePattern(ctx context.Context, pattern string) error {
	return cs.withRetry(ctx, func() error {
		var cursor uint64
		for {
			keys, nextCursor, err := cs.client.Scan(ctx, cursor, pattern, 100).Result()
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			if len(keys) > 0 {
				if err := cs.client.Del(ctx, keys...).Err(); err != nil {
					return fmt.Errorf("delete failed: %w", err)
				}
			}

			cursor = nextCursor
			if cursor == 0 {
				return nil
			}
		}
	})
}

// Ping tests the Redis connection
func (cs *CacheService) Ping(ctx context.Context) error {
	return cs.withRetry(ctx, func() error {
		return cs.client.Ping(ctx).Err()
	})
}

// GetConnectionStats returns Redis connection pool statistics
func (cs *CacheService) GetConnectionStats() map[string]any {
	stats := cs.client.PoolStats()

	return map[string]any{
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"stale_conns": stats.StaleConns,
	}
}

// ============================================================================
// Rate Limiting
// ============================================================================

func rateLimitKey(client, bucket string) string {
	return fmt.Sprintf("ratelimit:%s:%s", client, bucket)
}

// IncrementRateLimit atomically increments a fixed-window counter and
// returns the new count
func (cs *CacheService) IncrementRateLimit(ctx context.Context, client, bucket string, window time.Duration) (int, error) {
	key := rateLimitKey(client, bucket)

	var result int64
	err := cs.withRetry(ctx, func() error {
		pipe := cs.client.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		result = incr.Val()
		return nil
	})

	return int(result), err
}

// GetRateLimitStatus returns the current count and remaining window for debugging
func (cs *CacheService) GetRateLimitStatus(ctx context.Context, client, bucket string) (map[string]any, error) {
	key := rateLimitKey(client, bucket)
	result := map[string]any{"count": 0, "ttl": 0}

	err := cs.withRetry(ctx, func() error {
		val, err := cs.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}

		ttl, err := cs.client.TTL(ctx, key).Result()
		if err != nil {
			return err
		}

		count, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid rate limit value: %w", err)
		}

		result["count"] = count
		result["ttl"] = int(ttl.Seconds())
		return nil
	})

	return result, err
}

// ============================================================================
// Menu Caching
// ============================================================================

// MenuListKey builds the cache key for one filtered menu listing
func MenuListKey(opts *structs.MenuListOptions) string {
	category := "all"
	if opts.CategoryId != nil {
		category = opts.CategoryId.String()
	}
	return fmt.Sprintf("menu:items:category:%s:available:%t:search:%s",
		category, opts.AvailableOnly, strings.ToLower(strings.TrimSpace(opts.Search)))
}

func menuItemKey(id uuid.UUID) string {
	return fmt.Sprintf("menu:item:%s", id)
}

// GetMenuList retrieves a cached menu listing, nil on a miss
func (cs *CacheService) GetMenuList(ctx context.Context, key string) ([]tables.MenuItem, error) {
	items, err := getJSON[[]tables.MenuItem](ctx, cs, key)
	if err != nil || items == nil {
		return nil, err
	}
	return *items, nil
}

func (cs *CacheService) SetMenuList(ctx context.Context, key string, items []tables.MenuItem) error {
	return setJSON(ctx, cs, key, items, cs.menuTTL())
}

// GetMenuItem retrieves a cached menu item, nil on a miss
func (cs *CacheService) GetMenuItem(ctx context.Context, id uuid.UUID) (*tables.MenuItem, error) {
	return getJSON[tables.MenuItem](ctx, cs, menuItemKey(id))
}

func (cs *CacheService) SetMenuItem(ctx context.Context, item *tables.MenuItem) error {
	return setJSON(ctx, cs, menuItemKey(item.Id), item, cs.menuTTL())
}

// GetCategories retrieves the cached category list, nil on a miss
func (cs *CacheService) GetCategories(ctx context.Context) ([]tables.MenuCategory, error) {
	categories, err := getJSON[[]tables.MenuCategory](ctx, cs, categoriesKey)
	if err != nil || categories == nil {
		return nil, err
	}
	return *categories, nil
}

func (cs *CacheService) SetCategories(ctx context.Context, categories []tables.MenuCategory) error {
	return setJSON(ctx, cs, categoriesKey, categories, cs.menuTTL())
}

// InvalidateMenuCaches removes every menu key
func (cs *CacheService) InvalidateMenuCaches(ctx context.Context) error {
	return cs.DeletePattern(ctx, menuKeyPattern)
}

func (cs *CacheService) menuTTL() time.Duration {
	if cs.config.Cache.MenuTTL > 0 {
		return cs.config.Cache.MenuTTL
	}
	return 5 * time.Minute // fallback default
}

func setJSON[T any](ctx context.Context, cs *CacheService, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return cs.Set(ctx, key, data, ttl)
}

func getJSON[T any](ctx context.Context, cs *CacheService, key string) (*T, error) {
	val, err := cs.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if val == "" {
		return nil, nil // not found in cache
	}

	var result T
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return nil, err
	}

	return &result, nil
}
