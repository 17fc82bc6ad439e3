package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"club-mailer/logger"

	"github.com/redis/go-redis/v9"
)

const sentKeyPrefix = "sent:"

// NewRedis parses a redis:// URL and pings the server.
func NewRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// CachedSentLog answers WasSent from Redis when possible. Only positive
// answers are cached since entries are never rewritten, only removed.
type CachedSentLog struct {
	SentLogStore
	rdb *redis.Client
	ttl time.Duration
	log logger.Logger
}

// NewCachedSentLog decorates next with a Redis lookup cache.
func NewCachedSentLog(next SentLogStore, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedSentLog {
	return &CachedSentLog{SentLogStore: next, rdb: rdb, ttl: ttl, log: log}
}

func sentKey(email, date string, kind LogType) string {
	return fmt.Sprintf("%s%s:%s:%s", sentKeyPrefix, kind, date, strings.ToLower(strings.TrimSpace(email)))
}

func (c *CachedSentLog) AppendSentLog(ctx context.Context, entry *SentLogEntry) error {
	if err := c.SentLogStore.AppendSentLog(ctx, entry); err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, sentKey(entry.Email, entry.Date, entry.Type), "1", c.ttl).Err(); err != nil {
		c.log.Warn("failed to cache sent log entry", map[string]interface{}{"email": entry.Email, "error": err.Error()})
	}
	return nil
}

func (c *CachedSentLog) WasSent(ctx context.Context, email, date string, kind LogType) (bool, error) {
	key := sentKey(email, date, kind)
	_, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		return true, nil
	case !errors.Is(err, redis.Nil):
		c.log.Warn("sent log cache unavailable", map[string]interface{}{"error": err.Error()})
	}

	sent, err := c.SentLogStore.WasSent(ctx, email, date, kind)
	if err != nil || !sent {
		return sent, err
	}
	if err := c.rdb.Set(ctx, key, "1", c.ttl).Err(); err != nil {
		c.log.Warn("failed to cache sent log lookup", map[string]interface{}{"error": err.Error()})
	}
	return true, nil
}

func (c *CachedSentLog) DeleteSentLog(ctx context.Context, id int64) error {
	if err := c.SentLogStore.DeleteSentLog(ctx, id); err != nil {
		return err
	}
	c.flush(ctx)
	return nil
}

func (c *CachedSentLog) ClearSentLogs(ctx context.Context) error {
	if err := c.SentLogStore.ClearSentLogs(ctx); err != nil {
		return err
	}
	c.flush(ctx)
	return nil
}

// flush drops every cached sent key. The store change has already happened,
// so a Redis failure is only logged.
func (c *CachedSentLog) flush(ctx context.Context) {
	if err := c.deleteKeys(ctx); err != nil {
		c.log.Warn("failed to flush sent log cache", map[string]interface{}{"error": err.Error()})
	}
}

func (c *CachedSentLog) deleteKeys(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, sentKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan sent log cache: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to flush sent log cache: %w", err)
	}
	return nil
}
