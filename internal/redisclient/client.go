package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	categoryKeyPrefix = "categories:"
	treeKey           = "categories:tree"
	descendantsKey    = "categories:descendants:%s"
	cartCountKey      = "cart:count:%s"

	categoryTTL  = 10 * time.Minute
	cartCountTTL = time.Hour
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// CacheDescendants stores an expanded descendant set for a category.
func (c *Client) CacheDescendants(ctx context.Context, categoryID string, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, fmt.Sprintf(descendantsKey, categoryID), data, categoryTTL).Err()
}

// GetDescendants retrieves a cached descendant set. A nil slice with nil
// error means cache miss.
func (c *Client) GetDescendants(ctx context.Context, categoryID string) ([]string, error) {
	data, err := c.rdb.Get(ctx, fmt.Sprintf(descendantsKey, categoryID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// CacheTree stores the rendered category tree JSON.
func (c *Client) CacheTree(ctx context.Context, tree []byte) error {
	return c.rdb.Set(ctx, treeKey, tree, categoryTTL).Err()
}

// GetTree retrieves the cached category tree JSON; nil on miss.
func (c *Client) GetTree(ctx context.Context) ([]byte, error) {
	data, err := c.rdb.Get(ctx, treeKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// InvalidateCategories drops every cached category structure. Called on any
// category write so stale adjacency never outlives a mutation.
func (c *Client) InvalidateCategories(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, categoryKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// SetCartCount caches a user's cart badge count.
func (c *Client) SetCartCount(ctx context.Context, userID string, count int) error {
	return c.rdb.Set(ctx, fmt.Sprintf(cartCountKey, userID), count, cartCountTTL).Err()
}

// GetCartCount retrieves a cached cart badge count; -1 means cache miss.
func (c *Client) GetCartCount(ctx context.Context, userID string) (int, error) {
	count, err := c.rdb.Get(ctx, fmt.Sprintf(cartCountKey, userID)).Int()
	if err == redis.Nil {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}
	return count, nil
}

// InvalidateCartCount drops a user's cached badge count after a mutation.
func (c *Client) InvalidateCartCount(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, fmt.Sprintf(cartCountKey, userID)).Err()
}
