package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/fragkeeper/internal/filex"
	"github.com/dmitrijs2005/fragkeeper/internal/logging"
	"github.com/dmitrijs2005/fragkeeper/internal/server/repositories/fragments"
	"github.com/dmitrijs2005/fragkeeper/internal/server/repositories/objects"
	"github.com/redis/go-redis/v9"
)

// Backend names accepted by Options.
const (
	BackendPostgres = "postgres"
	BackendS3       = "s3"
	BackendRedis    = "redis"
	BackendBadger   = "badger"
	BackendMemory   = "memory"
)

// Options selects and configures the backends of a Store.
type Options struct {
	MetadataBackend string
	FragmentBackend string
	DatabaseDSN     string
	RedisURL        string
	BadgerPath      string
	S3              fragments.S3Options
}

var (
	openSQL = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	openBadger = badger.Open
)

// opener lazily opens shared connections so a Redis or Badger deployment
// uses one client for both repositories.
type opener struct {
	opts  Options
	log   logging.Logger
	store *Store
	redis *redis.Client
	bdb   *badger.DB
}

// Open connects the configured backends and, for PostgreSQL, applies the
// schema migrations. Close the returned store to release connections.
func Open(ctx context.Context, opts Options, log logging.Logger) (*Store, error) {
	o := &opener{opts: opts, log: log.With("module", "repomanager"), store: &Store{}}

	meta, err := o.metadata(ctx)
	if err != nil {
		_ = o.store.Close()
		return nil, err
	}
	frags, err := o.fragments(ctx)
	if err != nil {
		_ = o.store.Close()
		return nil, err
	}

	o.store.meta = meta
	o.store.frags = frags
	o.log.Info(ctx, "object store ready", "metadata", opts.MetadataBackend, "fragments", opts.FragmentBackend)
	return o.store, nil
}

func (o *opener) metadata(ctx context.Context) (objects.Repository, error) {
	switch o.opts.MetadataBackend {
	case BackendPostgres:
		db, err := openSQL(o.opts.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		o.store.closers = append(o.store.closers, db.Close)
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("ping database: %w", err)
		}
		if err := RunMigrations(ctx, db); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		return objects.NewPostgresRepository(db), nil
	case BackendRedis:
		client, err := o.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return objects.NewRedisRepository(client), nil
	case BackendBadger:
		db, err := o.badgerDB()
		if err != nil {
			return nil, err
		}
		return objects.NewBadgerRepository(db), nil
	case BackendMemory:
		return objects.NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown metadata backend %q", o.opts.MetadataBackend)
	}
}

func (o *opener) fragments(ctx context.Context) (fragments.Repository, error) {
	switch o.opts.FragmentBackend {
	case BackendS3:
		return fragments.NewS3Repository(ctx, o.opts.S3)
	case BackendRedis:
		client, err := o.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return fragments.NewRedisRepository(client), nil
	case BackendBadger:
		db, err := o.badgerDB()
		if err != nil {
			return nil, err
		}
		return fragments.NewBadgerRepository(db), nil
	case BackendMemory:
		return fragments.NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown fragment backend %q", o.opts.FragmentBackend)
	}
}

func (o *opener) redisClient(ctx context.Context) (*redis.Client, error) {
	if o.redis != nil {
		return o.redis, nil
	}
	ropts, err := redis.ParseURL(o.opts.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	client := redis.NewClient(ropts)
	o.store.closers = append(o.store.closers, client.Close)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	o.redis = client
	return client, nil
}

func (o *opener) badgerDB() (*badger.DB, error) {
	if o.bdb != nil {
		return o.bdb, nil
	}
	path := o.opts.BadgerPath
	if path != "" {
		dir, err := filex.EnsureDir(path)
		if err != nil {
			return nil, fmt.Errorf("badger dir: %w", err)
		}
		path = dir
	}
	bopts := badger.DefaultOptions(path).WithLogger(NewBadgerLogger(o.log.With("backend", "badger")))
	if path == "" {
		bopts = bopts.WithInMemory(true)
	}
	db, err := openBadger(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	o.store.closers = append(o.store.closers, db.Close)
	o.bdb = db
	return db, nil
}
