package fragments

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/fragkeeper/internal/common"
	"github.com/redis/go-redis/v9"
)

// RedisRepository stores fragment bytes under fragment:<id>:<idx> and the
// set of written indices in the sorted set fragments:<id>. Neither prefix
// overlaps the metadata hashes under file:.
type RedisRepository struct {
	client redis.UniversalClient
}

func NewRedisRepository(client redis.UniversalClient) *RedisRepository {
	return &RedisRepository{client: client}
}

func fragmentKey(objectID string, index int) string {
	return fmt.Sprintf("fragment:%s:%d", objectID, index)
}

func indexKey(objectID string) string {
	return "fragments:" + objectID
}

func (r *RedisRepository) Put(ctx context.Context, objectID string, index int, data []byte) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, fragmentKey(objectID, index), data, 0)
		pipe.ZAdd(ctx, indexKey(objectID), redis.Z{Score: float64(index), Member: strconv.Itoa(index)})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) Get(ctx context.Context, objectID string, index int) ([]byte, error) {
	data, err := r.client.Get(ctx, fragmentKey(objectID, index)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	return data, nil
}

func (r *RedisRepository) ListIndices(ctx context.Context, objectID string) ([]int, error) {
	raw, err := r.client.ZRange(ctx, indexKey(objectID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	return parseIndices(raw)
}
