package objects

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/fragkeeper/internal/common"
	"github.com/dmitrijs2005/fragkeeper/internal/server/models"
	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps each record in a hash named file:<object id>.
// created_at is stored as unix seconds.
type RedisRepository struct {
	client redis.UniversalClient
}

func NewRedisRepository(client redis.UniversalClient) *RedisRepository {
	return &RedisRepository{client: client}
}

func metadataKey(objectID string) string {
	return "file:" + objectID
}

// putScript writes every field of a new record in one step. It returns 0
// without writing when the hash already exists.
var putScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
redis.call("HSET", KEYS[1], unpack(ARGV))
return 1
`)

func (r *RedisRepository) Put(ctx context.Context, meta *models.ObjectMetadata) error {
	created, err := putScript.Run(ctx, r.client, []string{metadataKey(meta.ObjectID)},
		"owner_id", meta.OwnerID,
		"key_mode", meta.KeyMode,
		"wrapped_key", meta.WrappedKey,
		"created_at", strconv.FormatInt(meta.CreatedAt.Unix(), 10),
		"fragment_count", strconv.Itoa(meta.FragmentCount),
		"size", strconv.FormatInt(meta.Size, 10),
	).Int()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if created == 0 {
		return common.ErrObjectExists
	}
	return nil
}

func (r *RedisRepository) Get(ctx context.Context, objectID string) (*models.ObjectMetadata, error) {
	fields, err := r.client.HGetAll(ctx, metadataKey(objectID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(fields) == 0 {
		return nil, common.ErrorNotFound
	}

	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad created_at for %s: %w", objectID, err)
	}
	count, err := strconv.Atoi(fields["fragment_count"])
	if err != nil {
		return nil, fmt.Errorf("bad fragment_count for %s: %w", objectID, err)
	}
	size, err := strconv.ParseInt(fields["size"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad size for %s: %w", objectID, err)
	}

	meta := &models.ObjectMetadata{
		ObjectID:      objectID,
		OwnerID:       fields["owner_id"],
		KeyMode:       fields["key_mode"],
		CreatedAt:     time.Unix(createdAt, 0).UTC(),
		FragmentCount: count,
		Size:          size,
	}
	if wk := fields["wrapped_key"]; wk != "" {
		meta.WrappedKey = []byte(wk)
	}
	return meta, nil
}
