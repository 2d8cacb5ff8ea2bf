package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
)

// RedisStorage keeps browser context state in Redis as JSON values.
type RedisStorage struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStorage constructs a Redis backed storage.
func NewRedisStorage(client *redis.Client, logger *zap.Logger) *RedisStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStorage{client: client, logger: logger}
}

// Get retrieves and unmarshals the stored value into dest.
func (r *RedisStorage) Get(ctx context.Context, key string, dest interface{}) error {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return appErrors.ErrStorageMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal stored value for %s: %w", key, err)
	}
	return nil
}

// Set marshals value and stores it. A zero ttl keeps the key forever.
func (r *RedisStorage) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal stored value for %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes the given keys.
func (r *RedisStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// DeleteByPrefix removes every key starting with prefix.
func (r *RedisStorage) DeleteByPrefix(ctx context.Context, prefix string) error {
	iter := r.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", key, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan prefix %s: %w", prefix, err)
	}
	r.logger.Debug("storage prefix cleared", zap.String("prefix", prefix))
	return nil
}

// GetField reads one field of the bucket hash into dest and, in the same
// round trip, slides the hash's expiry to ttl.
func (r *RedisStorage) GetField(ctx context.Context, bucket, field string, dest interface{}, ttl time.Duration) error {
	pipe := r.client.TxPipeline()
	get := pipe.HGet(ctx, bucket, field)
	if ttl > 0 {
		pipe.Expire(ctx, bucket, ttl)
	}
	_, execErr := pipe.Exec(ctx)

	raw, err := get.Bytes()
	if errors.Is(err, redis.Nil) {
		return appErrors.ErrStorageMiss
	}
	if err != nil {
		return fmt.Errorf("redis hget %s %s: %w", bucket, field, err)
	}
	if execErr != nil && !errors.Is(execErr, redis.Nil) {
		return fmt.Errorf("redis expire %s: %w", bucket, execErr)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal stored value for %s/%s: %w", bucket, field, err)
	}
	return nil
}

// SetField writes one field of the bucket hash and slides its expiry.
func (r *RedisStorage) SetField(ctx context.Context, bucket, field string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal stored value for %s/%s: %w", bucket, field, err)
	}
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, bucket, field, payload)
	if ttl > 0 {
		pipe.Expire(ctx, bucket, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis hset %s %s: %w", bucket, field, err)
	}
	return nil
}

// DeleteFields removes fields of the bucket hash.
func (r *RedisStorage) DeleteFields(ctx context.Context, bucket string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.client.HDel(ctx, bucket, fields...).Err(); err != nil {
		return fmt.Errorf("redis hdel %s: %w", bucket, err)
	}
	return nil
}

// Touch slides the bucket's expiry. A missing bucket is left missing.
func (r *RedisStorage) Touch(ctx context.Context, bucket string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Expire(ctx, bucket, ttl).Err(); err != nil {
		return fmt.Errorf("redis expire %s: %w", bucket, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (r *RedisStorage) Close() error {
	return r.client.Close()
}
