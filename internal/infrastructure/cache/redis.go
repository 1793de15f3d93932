package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"tijuanashop/internal/domain/entity"
)

// Key patterns:
// - search:interp:{sha1(normalized query)} - interpreted search filters

const DefaultSearchTTL = 10 * time.Minute

// NewClient connects using a redis:// URL and checks the connection.
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// SearchCache stores interpreted search filters keyed by query text.
type SearchCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewSearchCache(client *goredis.Client, ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = DefaultSearchTTL
	}
	return &SearchCache{client: client, ttl: ttl}
}

// SearchKey collapses whitespace but keeps letter case: prefix search on
// titles is case sensitive, so "iPhone" and "iphone" interpret differently.
func SearchKey(query string) string {
	normalized := strings.Join(strings.Fields(query), " ")
	sum := sha1.Sum([]byte(normalized))
	return "search:interp:" + hex.EncodeToString(sum[:])
}

// Get returns the cached filters, or nil on a miss.
func (c *SearchCache) Get(ctx context.Context, query string) (*entity.SearchFilters, error) {
	data, err := c.client.Get(ctx, SearchKey(query)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var filters entity.SearchFilters
	if err := json.Unmarshal(data, &filters); err != nil {
		return nil, err
	}
	return &filters, nil
}

func (c *SearchCache) Set(ctx context.Context, query string, filters entity.SearchFilters) error {
	data, err := json.Marshal(filters)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, SearchKey(query), data, c.ttl).Err()
}
