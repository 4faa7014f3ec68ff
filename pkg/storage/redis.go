package storage

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
	"github.com/matzehuels/spritestyle/pkg/errors"
	"github.com/matzehuels/spritestyle/pkg/style"
)

// DefaultRedisPrefix namespaces every key written by RedisStore.
const DefaultRedisPrefix = "spritestyle:"

// RedisStore keeps palettes in one hash (name → JSON color list) and each
// style under its own key.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps a client. An empty prefix uses DefaultRedisPrefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) paletteKey() string { return s.prefix + "palettes" }
func (s *RedisStore) styleKey(id string) string { return s.prefix + "style:" + id }

// GetPalette returns a stored palette.
func (s *RedisStore) GetPalette(ctx context.Context, name string) (colorspace.Palette, error) {
	raw, err := s.client.HGet(ctx, s.paletteKey(), name).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, paletteNotFound(name)
	}
	if err != nil {
		return nil, storageError(err, "get palette %s", name)
	}
	var p colorspace.Palette
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, storageError(err, "decode palette %s", name)
	}
	return p, nil
}

// SetPalette stores a palette.
func (s *RedisStore) SetPalette(ctx context.Context, name string, p colorspace.Palette) error {
	if err := errors.ValidatePaletteName(name); err != nil {
		return err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return storageError(err, "encode palette %s", name)
	}
	if err := s.client.HSet(ctx, s.paletteKey(), name, raw).Err(); err != nil {
		return storageError(err, "set palette %s", name)
	}
	return nil
}

// ListPalettes returns the stored palette names in sorted order.
func (s *RedisStore) ListPalettes(ctx context.Context) ([]string, error) {
	names, err := s.client.HKeys(ctx, s.paletteKey()).Result()
	if err != nil {
		return nil, storageError(err, "list palettes")
	}
	slices.Sort(names)
	return names, nil
}

// GetStyle loads a stored style.
func (s *RedisStore) GetStyle(ctx context.Context, id string) (*style.Config, error) {
	if err := errors.ValidateStyleID(id); err != nil {
		return nil, err
	}
	raw, err := s.client.Get(ctx, s.styleKey(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, styleNotFound(id)
	}
	if err != nil {
		return nil, storageError(err, "get style %s", id)
	}
	cfg, err := style.ReadJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, storageError(err, "decode style %s", id)
	}
	return cfg, nil
}

// PutStyle stores a style without expiry.
func (s *RedisStore) PutStyle(ctx context.Context, id string, cfg *style.Config) error {
	if err := errors.ValidateStyleID(id); err != nil {
		return err
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return storageError(err, "encode style %s", id)
	}
	if err := s.client.Set(ctx, s.styleKey(id), raw, 0).Err(); err != nil {
		return storageError(err, "put style %s", id)
	}
	return nil
}

// Close closes the client.
func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
