package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // Sentinel errors
	"time"          // Time durations

	"github.com/google/uuid"       // Lock tokens
	"github.com/redis/go-redis/v9" // Redis client
)

// ErrLockHeld is returned when another holder owns the lock
var ErrLockHeld = errors.New("lock held by another request")

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil // Cache disabled
	}
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	if rdb == nil {
		return nil // Cache disabled
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes keys from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, keys ...string) error {
	if rdb == nil || len(keys) == 0 {
		return nil // Nothing to delete
	}
	return rdb.Del(ctx, keys...).Err() // Delete keys from Redis
}

// releaseScript deletes the lock only if the caller still owns it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// AcquireLock takes a short-lived Redis lock and returns its release func.
// With a nil client it is a no-op.
func AcquireLock(ctx context.Context, rdb *redis.Client, key string, ttl time.Duration) (func(), error) {
	if rdb == nil {
		return func() {}, nil // Locking disabled
	}
	token := uuid.NewString()                           // Unique owner token
	ok, err := rdb.SetNX(ctx, key, token, ttl).Result() // Set only if absent
	if err != nil {
		return nil, err // Redis failure
	}
	if !ok {
		return nil, ErrLockHeld // Someone else holds it
	}
	release := func() {
		// Use a fresh context so release runs even if ctx was cancelled
		_ = releaseScript.Run(context.Background(), rdb, []string{key}, token).Err()
	}
	return release, nil
}

// DeletePrefix deletes every key starting with prefix
func DeletePrefix(ctx context.Context, rdb *redis.Client, prefix string) error {
	if rdb == nil {
		return nil // Cache disabled
	}
	var keys []string // Keys to delete
	iter := rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()) // Collect matching key
	}
	if err := iter.Err(); err != nil {
		return err // Scan failure
	}
	return DeleteCache(ctx, rdb, keys...) // Delete in one round trip
}
