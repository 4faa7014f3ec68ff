// Package storage persists named palettes and analyzed styles.
//
// Three backends implement [Store]:
//
//   - [FileStore] keeps palettes in one TOML file and styles as JSON files
//   - [RedisStore] keeps palettes in a hash and styles as string keys
//   - [MongoStore] keeps palettes and styles in two collections
//
// Missing entries are reported with the PALETTE_NOT_FOUND and STYLE_NOT_FOUND
// codes from the errors package; backend failures use STORAGE_ERROR.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
	"github.com/matzehuels/spritestyle/pkg/errors"
	"github.com/matzehuels/spritestyle/pkg/style"
)

// PaletteStore reads and writes palettes by name.
type PaletteStore interface {
	GetPalette(ctx context.Context, name string) (colorspace.Palette, error)
	SetPalette(ctx context.Context, name string, p colorspace.Palette) error
	ListPalettes(ctx context.Context) ([]string, error)
}

// StyleStore reads and writes analyzed styles by ID.
type StyleStore interface {
	GetStyle(ctx context.Context, id string) (*style.Config, error)
	PutStyle(ctx context.Context, id string, cfg *style.Config) error
}

// Store combines both stores with a way to release resources.
type Store interface {
	PaletteStore
	StyleStore
	Close() error
}

// NewID returns a fresh style ID.
func NewID() string {
	return uuid.NewString()
}

func paletteNotFound(name string) error {
	return errors.New(errors.ErrCodePaletteNotFound, "palette %q not found", name)
}

func styleNotFound(id string) error {
	return errors.New(errors.ErrCodeStyleNotFound, "style %q not found", id)
}

func storageError(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeStorage, err, format, args...)
}
