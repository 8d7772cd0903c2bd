package objects

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/fragkeeper/internal/common"
	"github.com/dmitrijs2005/fragkeeper/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T) Repository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRepository(client)
}

func newBadgerRepo(t *testing.T) Repository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewBadgerRepository(db)
}

func backends() map[string]func(t *testing.T) Repository {
	return map[string]func(t *testing.T) Repository{
		"memory": func(t *testing.T) Repository { return NewMemoryRepository() },
		"redis":  newRedisRepo,
		"badger": newBadgerRepo,
	}
}

func sampleMetadata(id string) []*models.ObjectMetadata {
	created := time.Unix(1_700_000_000, 0).UTC()
	return []*models.ObjectMetadata{
		{
			ObjectID:      id + "-shared",
			OwnerID:       "alice",
			KeyMode:       models.KeyModeShared,
			CreatedAt:     created,
			FragmentCount: 3,
			Size:          2_621_486,
		},
		{
			ObjectID:      id + "-wrapped",
			OwnerID:       "bob",
			KeyMode:       models.KeyModePerObject,
			WrappedKey:    []byte{0x00, 0xff, 0x10, 0x20, 0x00},
			CreatedAt:     created,
			FragmentCount: 1,
			Size:          46,
		},
	}
}

func TestRepository_PutGet(t *testing.T) {
	for name, newRepo := range backends() {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			for _, meta := range sampleMetadata("obj") {
				require.NoError(t, repo.Put(ctx, meta))

				got, err := repo.Get(ctx, meta.ObjectID)
				require.NoError(t, err)
				if diff := cmp.Diff(meta, got); diff != "" {
					t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestRepository_NotFound(t *testing.T) {
	for name, newRepo := range backends() {
		t.Run(name, func(t *testing.T) {
			_, err := newRepo(t).Get(context.Background(), "missing")
			assert.ErrorIs(t, err, common.ErrorNotFound)
		})
	}
}

func TestRepository_WriteOnce(t *testing.T) {
	for name, newRepo := range backends() {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()
			meta := sampleMetadata("obj")[0]

			require.NoError(t, repo.Put(ctx, meta))

			hijack := *meta
			hijack.OwnerID = "mallory"
			assert.ErrorIs(t, repo.Put(ctx, &hijack), common.ErrObjectExists)

			got, err := repo.Get(ctx, meta.ObjectID)
			require.NoError(t, err)
			assert.Equal(t, "alice", got.OwnerID)
		})
	}
}

func TestRepository_ConcurrentPuts(t *testing.T) {
	for name, newRepo := range backends() {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			var wg sync.WaitGroup
			errs := make(chan error, 16)
			for i := range 16 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					meta := sampleMetadata(fmt.Sprintf("obj-%d", i))[0]
					errs <- repo.Put(ctx, meta)
				}()
			}
			wg.Wait()
			close(errs)

			for err := range errs {
				require.NoError(t, err)
			}
			for i := range 16 {
				_, err := repo.Get(ctx, fmt.Sprintf("obj-%d-shared", i))
				require.NoError(t, err)
			}
		})
	}
}

func TestMemoryRepository_CopiesWrappedKey(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	meta := sampleMetadata("obj")[1]

	require.NoError(t, repo.Put(ctx, meta))
	meta.WrappedKey[0] = 0xAA

	got, err := repo.Get(ctx, meta.ObjectID)
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), got.WrappedKey[0])

	got.WrappedKey[1] = 0xAA
	again, err := repo.Get(ctx, meta.ObjectID)
	require.NoError(t, err)
	assert.Equal(t, byte(0xff), again.WrappedKey[1])
}

func TestBadgerRepository_CanceledContext(t *testing.T) {
	repo := newBadgerRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Put(ctx, sampleMetadata("obj")[0])
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRedisRepository_CorruptRecord(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	repo := NewRedisRepository(client)

	mr.HSet("file:bad", "owner_id", "alice", "created_at", "yesterday", "fragment_count", "1", "size", "46")

	_, err := repo.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad created_at")
}

func TestRedisRepository_Layout(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	repo := NewRedisRepository(client)

	meta := sampleMetadata("obj")[0]
	require.NoError(t, repo.Put(context.Background(), meta))

	assert.Equal(t, "alice", mr.HGet("file:obj-shared", "owner_id"))
	assert.Equal(t, "1700000000", mr.HGet("file:obj-shared", "created_at"))
	assert.Equal(t, "3", mr.HGet("file:obj-shared", "fragment_count"))
}

func TestRepository_NoPartialRecordVisible(t *testing.T) {
	for name, newRepo := range backends() {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()
			const n = 50

			done := make(chan struct{})
			go func() {
				defer close(done)
				for i := range n {
					_ = repo.Put(ctx, sampleMetadata(fmt.Sprintf("obj-%d", i))[1])
				}
			}()

			for i := range n {
				id := fmt.Sprintf("obj-%d-wrapped", i)
				for {
					got, err := repo.Get(ctx, id)
					if errors.Is(err, common.ErrorNotFound) {
						select {
						case <-done:
							got, err = repo.Get(ctx, id)
						default:
							continue
						}
					}
					require.NoError(t, err)
					assert.Equal(t, "bob", got.OwnerID)
					assert.Equal(t, 1, got.FragmentCount)
					assert.Len(t, got.WrappedKey, 5)
					break
				}
			}
			<-done
		})
	}
}

func TestRedisRepository_PutLeavesExistingHashUntouched(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	repo := NewRedisRepository(client)

	mr.HSet("file:obj-shared", "owner_id", "mallory")

	err := repo.Put(context.Background(), sampleMetadata("obj")[0])
	assert.ErrorIs(t, err, common.ErrObjectExists)
	assert.Equal(t, "mallory", mr.HGet("file:obj-shared", "owner_id"))
	assert.Equal(t, "", mr.HGet("file:obj-shared", "created_at"))
}
