// Package storage opens the user and session stores named by DATABASE_URL
// and, when REDIS_URL is set, fronts sessions with a Redis cache.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"authgateway/internal/database"
	"authgateway/pkg/session"
	"authgateway/pkg/user"
)

const (
	defaultMongoDB = "authgateway"
	cachePrefix    = "authgw:"
)

type Storage struct {
	Users    user.Repository
	Sessions session.Repository
	// Backend is the dialect or "mongodb", for logs.
	Backend string

	sqlDB *sql.DB
	mongo *mongo.Client
	redis *redis.Client
}

// Open connects to the stores. On error everything opened so far is closed.
func Open(ctx context.Context, databaseURL, redisURL string, logger *slog.Logger) (*Storage, error) {
	s := &Storage{}
	var err error
	if isMongo(databaseURL) {
		err = s.openMongo(ctx, databaseURL)
	} else {
		err = s.openSQL(ctx, databaseURL)
	}
	if err != nil {
		return nil, err
	}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			s.Close(ctx)
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		s.redis = redis.NewClient(opts)
		if err := s.redis.Ping(ctx).Err(); err != nil {
			s.Close(ctx)
			return nil, fmt.Errorf("cannot connect to redis: %w", err)
		}
		s.Sessions = session.NewCachedRepo(s.Sessions, s.redis, cachePrefix, logger)
		logger.Info("session cache enabled", "addr", opts.Addr)
	}
	return s, nil
}

func (s *Storage) openSQL(ctx context.Context, databaseURL string) error {
	db, dialect, err := database.Open(ctx, databaseURL)
	if err != nil {
		return err
	}
	s.sqlDB = db
	s.Backend = dialect.String()
	s.Users = user.NewSQLRepo(db, dialect)
	s.Sessions = session.NewSQLRepo(db, dialect)
	return nil
}

func (s *Storage) openMongo(ctx context.Context, databaseURL string) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(databaseURL))
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	s.mongo = client
	s.Backend = "mongodb"

	db := client.Database(mongoDatabase(databaseURL))
	users := user.NewMongoRepo(db)
	sessions := session.NewMongoRepo(db)
	for _, ensure := range []func(context.Context) error{users.EnsureIndexes, sessions.EnsureIndexes} {
		if err := ensure(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return err
		}
	}
	s.Users = users
	s.Sessions = sessions
	return nil
}

// Ping checks the primary store. The cache is optional and not checked.
func (s *Storage) Ping(ctx context.Context) error {
	switch {
	case s.sqlDB != nil:
		return s.sqlDB.PingContext(ctx)
	case s.mongo != nil:
		return s.mongo.Ping(ctx, nil)
	}
	return errors.New("storage is not open")
}

func (s *Storage) Close(ctx context.Context) error {
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.sqlDB != nil {
		errs = append(errs, s.sqlDB.Close())
	}
	if s.mongo != nil {
		errs = append(errs, s.mongo.Disconnect(ctx))
	}
	return errors.Join(errs...)
}

func isMongo(raw string) bool {
	return strings.HasPrefix(raw, "mongodb://") || strings.HasPrefix(raw, "mongodb+srv://")
}

// mongoDatabase takes the database name from the URL path.
func mongoDatabase(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return defaultMongoDB
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return defaultMongoDB
}
