package cli

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spritestyle/internal/api"
	"github.com/matzehuels/spritestyle/pkg/cache"
	"github.com/matzehuels/spritestyle/pkg/errors"
	"github.com/matzehuels/spritestyle/pkg/pipeline"
	"github.com/matzehuels/spritestyle/pkg/storage"
)

// Storage backends accepted by --store.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendMongo = "mongo"
)

type serveOpts struct {
	addr      string
	store     string
	dir       string
	redisAddr string
	redisPass string
	redisDB   int
	mongoURI  string
	mongoDB   string
	scope     string
	maxUpload int64
	timeout   time.Duration
	noCache   bool
}

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:      ":8080",
		store:     backendFile,
		redisAddr: "localhost:6379",
		mongoURI:  "mongodb://localhost:27017",
		mongoDB:   appName,
		maxUpload: api.DefaultMaxUpload,
		timeout:   api.DefaultRequestTimeout,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP",
		Long: `Serve the pipeline over HTTP.

Styles and palettes are kept in the chosen backend:
  file   palettes.toml and style files under --dir (default: config directory)
  redis  a Redis server at --redis-addr; results are cached there too
  mongo  a MongoDB database at --mongo-uri

Results are cached on disk for the file and mongo backends unless --no-cache
is given. The server shuts down gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.store, "store", opts.store, "storage backend: file, redis, mongo")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "file store directory (default: config directory)")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", opts.redisAddr, "Redis address")
	cmd.Flags().StringVar(&opts.redisPass, "redis-password", "", "Redis password")
	cmd.Flags().IntVar(&opts.redisDB, "redis-db", 0, "Redis database")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", opts.mongoURI, "MongoDB connection URI")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", opts.mongoDB, "MongoDB database")
	cmd.Flags().StringVar(&opts.scope, "cache-scope", "", "prefix for cache keys when sharing a cache")
	cmd.Flags().Int64Var(&opts.maxUpload, "max-upload", opts.maxUpload, "maximum request body size in bytes")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request timeout")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	store, resultCache, err := c.openBackend(ctx, opts)
	if err != nil {
		return err
	}
	defer store.Close()

	var keyer cache.Keyer
	if opts.scope != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), opts.scope)
	}
	runner := pipeline.NewRunner(resultCache, keyer, c.Logger)
	defer runner.Close()

	srv := api.New(runner, store, c.Logger)
	srv.MaxUpload = opts.maxUpload
	srv.Timeout = opts.timeout

	printInfo("Serving on %s (%s store)", opts.addr, opts.store)
	return srv.ListenAndServe(ctx, opts.addr)
}

// openBackend opens the store and the result cache for opts.store.
func (c *CLI) openBackend(ctx context.Context, opts serveOpts) (storage.Store, cache.Cache, error) {
	switch opts.store {
	case backendFile:
		dir := opts.dir
		if dir != "" {
			if err := errors.ValidatePath(dir); err != nil {
				return nil, nil, err
			}
		}
		if dir == "" {
			var err error
			if dir, err = configDir(); err != nil {
				return nil, nil, err
			}
		}
		store, err := storage.NewFileStore(dir)
		if err != nil {
			return nil, nil, err
		}
		rc, err := newCache(opts.noCache)
		if err != nil {
			return nil, nil, err
		}
		return store, rc, nil

	case backendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     opts.redisAddr,
			Password: opts.redisPass,
			DB:       opts.redisDB,
		})
		err := cache.RetryWithBackoff(ctx, func() error {
			if err := client.Ping(ctx).Err(); err != nil {
				return cache.Retryable(err)
			}
			return nil
		})
		if err != nil {
			_ = client.Close()
			return nil, nil, errors.Wrap(errors.ErrCodeStorage, err, "redis %s", opts.redisAddr)
		}
		c.Logger.Debug("connected to redis", "addr", opts.redisAddr, "db", opts.redisDB)
		var rc cache.Cache = cache.NewNullCache()
		if !opts.noCache {
			rc = cache.NewRedisCacheFromClient(client)
		}
		return storage.NewRedisStore(client, ""), nopCloser{rc}, nil

	case backendMongo:
		store, err := storage.NewMongoStore(ctx, opts.mongoURI, opts.mongoDB)
		if err != nil {
			return nil, nil, err
		}
		c.Logger.Debug("connected to mongo", "database", opts.mongoDB)
		rc, err := newCache(opts.noCache)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, rc, nil

	default:
		return nil, nil, errors.New(errors.ErrCodeInvalidInput,
			"unknown store %q (want %s, %s or %s)", opts.store, backendFile, backendRedis, backendMongo)
	}
}

// nopCloser keeps the runner from closing a Redis client the store owns.
type nopCloser struct{ cache.Cache }

func (nopCloser) Close() error { return nil }
