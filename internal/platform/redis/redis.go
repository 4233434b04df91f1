package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Client wraps go-redis client so callers share one pool and helpers.
type Client struct {
	*redis.Client
}

// Open creates a new Redis client and pings it to validate the connection.
func Open(ctx context.Context, addr, password string, db int) (*Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("empty redis addr")
	}
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return &Client{Client: c}, nil
}

// Wrap adopts an existing go-redis client.
func Wrap(c *redis.Client) *Client {
	return &Client{Client: c}
}

// PublishEvent appends an event to a stream and returns its id.
func (c *Client) PublishEvent(ctx context.Context, stream string, values map[string]interface{}) (string, error) {
	return c.XAdd(ctx, &redis.XAddArgs{Stream: stream, Values: values}).Result()
}
