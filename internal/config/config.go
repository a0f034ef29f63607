// Package config resolves the host configuration shared by the CLI commands.
// Environment variables supply defaults; command-line flags override them.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	backend "github.com/redis/go-redis/v9"
	"github.com/xdsai/persephone/internal/logging"
	"github.com/xdsai/persephone/pkg/adapters/file"
	"github.com/xdsai/persephone/pkg/adapters/memory"
	"github.com/xdsai/persephone/pkg/adapters/redis"
	"github.com/xdsai/persephone/pkg/persistence/middleware"
	"github.com/xdsai/persephone/pkg/ports"
)

// Environment variables read by FromEnv.
const (
	EnvStory     = "PERSEPHONE_STORY"
	EnvLogLevel  = "PERSEPHONE_LOG_LEVEL"
	EnvRedisAddr = "PERSEPHONE_REDIS_ADDR"
	EnvSaveDir   = "PERSEPHONE_SAVE_DIR"
	EnvAddr      = "PERSEPHONE_ADDR"
	EnvSaveTTL   = "PERSEPHONE_SAVE_TTL"
	EnvSaveKey   = "PERSEPHONE_SAVE_KEY"
	EnvOldKeys   = "PERSEPHONE_SAVE_OLD_KEYS"
)

// DefaultAddr is the listen address of the HTTP shell.
const DefaultAddr = ":8080"

// ErrNoStory is returned when a command needs a story and none was configured.
var ErrNoStory = errors.New("no story configured (use --story or " + EnvStory + ")")

// Config holds the resolved host settings.
type Config struct {
	StoryPath string
	LogLevel  string
	RedisAddr string
	SaveDir   string
	Addr      string
	SaveTTL   time.Duration

	// SaveKey is a base64 AES-256 key; when set, saves are encrypted at rest.
	SaveKey     string
	// OldSaveKeys still decrypt saves written before a key rotation.
	OldSaveKeys []string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel: "info",
		Addr:     DefaultAddr,
	}
}

// FromEnv overlays the environment on Default. An unparsable TTL is ignored.
func FromEnv() Config {
	return FromLookup(os.LookupEnv)
}

// FromLookup is FromEnv with an injectable lookup.
func FromLookup(lookup func(string) (string, bool)) Config {
	cfg := Default()
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&cfg.StoryPath, EnvStory)
	set(&cfg.LogLevel, EnvLogLevel)
	set(&cfg.RedisAddr, EnvRedisAddr)
	set(&cfg.SaveDir, EnvSaveDir)
	set(&cfg.Addr, EnvAddr)
	set(&cfg.SaveKey, EnvSaveKey)

	if v, ok := lookup(EnvOldKeys); ok {
		for _, k := range strings.Split(v, ",") {
			if k = strings.TrimSpace(k); k != "" {
				cfg.OldSaveKeys = append(cfg.OldSaveKeys, k)
			}
		}
	}

	if v, ok := lookup(EnvSaveTTL); ok {
		if ttl, err := time.ParseDuration(strings.TrimSpace(v)); err == nil && ttl > 0 {
			cfg.SaveTTL = ttl
		}
	}
	return cfg
}

// RequireStory fails with ErrNoStory when no story path is set.
func (c Config) RequireStory() error {
	if c.StoryPath == "" {
		return ErrNoStory
	}
	return nil
}

// Logger builds a logger for the configured level. A nil w means stderr.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return logging.New(level), nil
	}
	return logging.NewWithWriter(w, level), nil
}

// Backend is an opened save store plus its optional lock service.
type Backend struct {
	Store  ports.SaveStore
	Locker ports.DistributedLocker
	Kind   string
	close  func() error
}

// Close releases the backend connection, if any.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend picks the save store: Redis when an address is set, then a
// save directory, then process memory. Redis also provides a Locker.
// A SaveKey wraps the store in encryption.
func (c Config) OpenBackend(ctx context.Context) (*Backend, error) {
	encrypt, err := c.encryption()
	if err != nil {
		return nil, err
	}
	b, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}
	if encrypt != nil {
		b.Store = middleware.Chain(b.Store, encrypt)
	}
	return b, nil
}

func (c Config) encryption() (middleware.Middleware, error) {
	if c.SaveKey == "" {
		return nil, nil
	}
	active, err := middleware.ParseKey(c.SaveKey)
	if err != nil {
		return nil, fmt.Errorf("invalid save key: %w", err)
	}
	cfg := middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range c.OldSaveKeys {
		old, err := middleware.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("invalid old save key %d: %w", i, err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, old)
	}
	return middleware.NewEncryptionMiddleware(cfg), nil
}

func (c Config) openStore(ctx context.Context) (*Backend, error) {
	switch {
	case c.RedisAddr != "":
		client, err := redisClient(c.RedisAddr)
		if err != nil {
			return nil, err
		}
		store := redis.NewFromClient(client, redis.WithTTL(c.SaveTTL))
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", c.RedisAddr, err)
		}
		return &Backend{
			Store:  store,
			Locker: redis.NewLocker(client, redis.DefaultPrefix),
			Kind:   "redis",
			close:  store.Close,
		}, nil
	case c.SaveDir != "":
		return &Backend{Store: file.New(c.SaveDir), Kind: "file"}, nil
	default:
		return &Backend{Store: memory.NewStore(), Kind: "memory"}, nil
	}
}

// redisClient accepts either a redis:// URL or a bare host:port.
func redisClient(addr string) (*backend.Client, error) {
	if strings.Contains(addr, "://") {
		opts, err := backend.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return backend.NewClient(opts), nil
	}
	return backend.NewClient(&backend.Options{Addr: addr}), nil
}
