package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/princinho/weatherbackend/config"
	"github.com/princinho/weatherbackend/models"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// NewRevocationStore picks the blacklist backend named by cfg.Driver. db is
// only needed by the mongo driver.
func NewRevocationStore(ctx context.Context, cfg config.RevocationConfig, db *mongo.Database, logger *slog.Logger) (RevocationStore, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		if db == nil {
			return nil, fmt.Errorf("mongo revocation driver requires a database handle")
		}
		return NewMongoRevocations(db), nil
	case config.DriverRedis:
		return NewRedisRevocations(ctx, cfg.Redis, logger)
	case config.DriverMemory, "":
		return NewMemoryRevocations(), nil
	default:
		return nil, fmt.Errorf("unsupported revocation driver: %s", cfg.Driver)
	}
}

type MongoRevocations struct {
	col *mongo.Collection
}

func NewMongoRevocations(db *mongo.Database) *MongoRevocations {
	return &MongoRevocations{col: db.Collection(BlacklistCollection)}
}

func (m *MongoRevocations) Revoke(ctx context.Context, token string, at time.Time) error {
	_, err := m.col.UpdateOne(ctx,
		bson.M{"token": token},
		bson.M{"$setOnInsert": models.RevokedToken{Token: token, RevokedAt: at}},
		options.UpdateOne().SetUpsert(true),
	)
	// two concurrent upserts of the same token may race on the unique index
	if err != nil && !IsDuplicateKey(err) {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (m *MongoRevocations) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := m.col.CountDocuments(ctx, bson.M{"token": token}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return n > 0, nil
}

func (m *MongoRevocations) Close(context.Context) error { return nil }

// RedisRevocations keeps the blacklist in a single Redis set.
type RedisRevocations struct {
	client *redis.Client
	key    string
}

func NewRedisRevocations(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*RedisRevocations, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	key := cfg.Key
	if key == "" {
		key = "weather:blacklist"
	}
	logger.Info("using redis token blacklist", "addr", cfg.Addr, "key", key)
	return &RedisRevocations{client: client, key: key}, nil
}

func (r *RedisRevocations) Revoke(ctx context.Context, token string, _ time.Time) error {
	if err := r.client.SAdd(ctx, r.key, token).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, token string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, r.key, token).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return ok, nil
}

func (r *RedisRevocations) Close(context.Context) error {
	return r.client.Close()
}
