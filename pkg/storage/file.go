package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
	"github.com/matzehuels/spritestyle/pkg/errors"
	"github.com/matzehuels/spritestyle/pkg/style"
)

// PaletteFile is the default palette file name inside a FileStore directory.
const PaletteFile = "palettes.toml"

// FileStore keeps palettes in a TOML file and styles as JSON files under
// dir/styles. It is safe for concurrent use within one process.
type FileStore struct {
	mu          sync.Mutex
	paletteFile string
	styleDir    string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	return NewFileStoreWithPalettes(dir, filepath.Join(dir, PaletteFile))
}

// NewFileStoreWithPalettes creates a store with an explicit palette file.
func NewFileStoreWithPalettes(dir, paletteFile string) (*FileStore, error) {
	styleDir := filepath.Join(dir, "styles")
	if err := os.MkdirAll(styleDir, 0755); err != nil {
		return nil, storageError(err, "create %s", styleDir)
	}
	return &FileStore{paletteFile: paletteFile, styleDir: styleDir}, nil
}

// PaletteFile returns the path of the palette file.
func (s *FileStore) PaletteFile() string { return s.paletteFile }

func (s *FileStore) readPalettes() (map[string]colorspace.Palette, error) {
	out := make(map[string]colorspace.Palette)
	if _, err := toml.DecodeFile(s.paletteFile, &out); err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, storageError(err, "read %s", s.paletteFile)
	}
	return out, nil
}

// GetPalette returns a stored palette.
func (s *FileStore) GetPalette(ctx context.Context, name string) (colorspace.Palette, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.readPalettes()
	if err != nil {
		return nil, err
	}
	p, ok := all[name]
	if !ok {
		return nil, paletteNotFound(name)
	}
	return p, nil
}

// SetPalette stores a palette, replacing any previous one of that name.
func (s *FileStore) SetPalette(ctx context.Context, name string, p colorspace.Palette) error {
	if err := errors.ValidatePaletteName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.readPalettes()
	if err != nil {
		return err
	}
	all[name] = p

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(all); err != nil {
		return storageError(err, "encode palettes")
	}
	if err := os.MkdirAll(filepath.Dir(s.paletteFile), 0755); err != nil {
		return storageError(err, "create palette dir")
	}
	if err := os.WriteFile(s.paletteFile, buf.Bytes(), 0644); err != nil {
		return storageError(err, "write %s", s.paletteFile)
	}
	return nil
}

// ListPalettes returns the stored palette names in sorted order.
func (s *FileStore) ListPalettes(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.readPalettes()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(all))
	for k := range all {
		names = append(names, k)
	}
	slices.Sort(names)
	return names, nil
}

func (s *FileStore) stylePath(id string) string {
	return filepath.Join(s.styleDir, id+".json")
}

// GetStyle loads a stored style.
func (s *FileStore) GetStyle(ctx context.Context, id string) (*style.Config, error) {
	if err := errors.ValidateStyleID(id); err != nil {
		return nil, err
	}
	f, err := os.Open(s.stylePath(id))
	if os.IsNotExist(err) {
		return nil, styleNotFound(id)
	}
	if err != nil {
		return nil, storageError(err, "open style %s", id)
	}
	defer f.Close()
	cfg, err := style.ReadJSON(f)
	if err != nil {
		return nil, storageError(err, "decode style %s", id)
	}
	return cfg, nil
}

// PutStyle stores a style under id.
func (s *FileStore) PutStyle(ctx context.Context, id string, cfg *style.Config) error {
	if err := errors.ValidateStyleID(id); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := style.WriteJSON(cfg, &buf); err != nil {
		return storageError(err, "encode style %s", id)
	}
	if err := os.WriteFile(s.stylePath(id), buf.Bytes(), 0644); err != nil {
		return storageError(err, "write style %s", id)
	}
	return nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
