package gateway

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"
)

// redisCounter implements httprate.LimitCounter on a shared Redis
// instance so horizontally scaled replicas draw from one budget
// instead of N separate in-memory ones.
type redisCounter struct {
	client       *redis.Client
	prefix       string
	windowLength time.Duration
}

func NewRedisCounter(client *redis.Client, prefix string) httprate.LimitCounter {
	return &redisCounter{client: client, prefix: prefix}
}

func (c *redisCounter) Config(requestLimit int, windowLength time.Duration) {
	c.windowLength = windowLength
}

func (c *redisCounter) Increment(key string, currentWindow time.Time) error {
	return c.IncrementBy(key, currentWindow, 1)
}

func (c *redisCounter) IncrementBy(key string, currentWindow time.Time, amount int) error {
	ctx := context.Background()
	k := c.windowKey(key, currentWindow)
	pipe := c.client.TxPipeline()
	pipe.IncrBy(ctx, k, int64(amount))
	// Keep the key around for the previous-window read, then let it lapse.
	pipe.Expire(ctx, k, c.windowLength*2)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *redisCounter) Get(key string, currentWindow, previousWindow time.Time) (int, int, error) {
	ctx := context.Background()
	vals, err := c.client.MGet(ctx, c.windowKey(key, currentWindow), c.windowKey(key, previousWindow)).Result()
	if err != nil {
		return 0, 0, err
	}
	return redisInt(vals[0]), redisInt(vals[1]), nil
}

func (c *redisCounter) windowKey(key string, window time.Time) string {
	return fmt.Sprintf("%s:%s:%d", c.prefix, key, window.Unix())
}

func redisInt(v any) int {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}
