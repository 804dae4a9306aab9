package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedRepo is a read-through Redis cache in front of a Repository.
// Entries expire together with the session they hold. Read failures fall
// back to the underlying repository; a failed invalidation is an error,
// since a stale entry would keep a deleted session usable.
type CachedRepo struct {
	Repository
	client *redis.Client
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

func NewCachedRepo(repo Repository, client *redis.Client, prefix string, logger *slog.Logger) *CachedRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedRepo{
		Repository: repo,
		client:     client,
		prefix:     prefix,
		logger:     logger,
		now:        time.Now,
	}
}

func (c *CachedRepo) key(id string) string {
	return c.prefix + "session:" + id
}

func (c *CachedRepo) Create(ctx context.Context, s *Session) error {
	if err := c.Repository.Create(ctx, s); err != nil {
		return err
	}
	c.store(ctx, s)
	return nil
}

func (c *CachedRepo) FindByID(ctx context.Context, id string) (*Session, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	switch {
	case err == nil:
		var s Session
		if jerr := json.Unmarshal(data, &s); jerr == nil {
			return &s, nil
		}
		c.logger.Warn("dropping corrupt session cache entry", "session", id)
		c.client.Del(ctx, c.key(id))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("session cache read failed", "session", id, "error", err)
	}

	s, err := c.Repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, s)
	return s, nil
}

func (c *CachedRepo) Delete(ctx context.Context, id string) error {
	if err := c.Repository.Delete(ctx, id); err != nil {
		return err
	}
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("invalidate cached session: %w", err)
	}
	return nil
}

func (c *CachedRepo) store(ctx context.Context, s *Session) {
	ttl := s.ExpiresAt.Sub(c.now())
	if ttl <= 0 {
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(s.ID), data, ttl).Err(); err != nil {
		c.logger.Warn("session cache write failed", "session", s.ID, "error", err)
	}
}
