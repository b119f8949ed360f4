package revocations

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces ledger keys inside a shared Redis database.
const DefaultKeyPrefix = "authtokens:revoked:"

// RedisRepository keeps the ledger in Redis. Keys carry no TTL: records are
// retained for as long as the database keeps them. The stored value is the
// token's expiry in unix seconds.
type RedisRepository struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisRepository(client redis.UniversalClient, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisRepository{client: client, prefix: prefix}
}

// key hashes the token so that arbitrarily long bearer values map to
// fixed-size keys.
func (r *RedisRepository) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return r.prefix + hex.EncodeToString(sum[:])
}

func (r *RedisRepository) Insert(ctx context.Context, token string, expiresAt time.Time) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.key(token), strconv.FormatInt(expiresAt.Unix(), 10), 0).Result()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return ok, nil
}

func (r *RedisRepository) Exists(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return n == 1, nil
}
