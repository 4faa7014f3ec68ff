package style

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Formats understood by Load and Save.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
)

// WriteJSON encodes c as indented JSON.
func WriteJSON(c *Config, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a config and fills any missing maps.
func ReadJSON(r io.Reader) (*Config, error) {
	c := New()
	if err := json.NewDecoder(r).Decode(c); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return c.normalize()
}

// WriteTOML encodes c as TOML.
func WriteTOML(c *Config, w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadTOML decodes a TOML config.
func ReadTOML(r io.Reader) (*Config, error) {
	c := New()
	if _, err := toml.NewDecoder(r).Decode(c); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return c.normalize()
}

func (c *Config) normalize() (*Config, error) {
	if c.Palette == nil {
		c.Palette = New().Palette
	}
	if c.Proportions == nil {
		c.Proportions = make(map[string]float64)
	}
	if c.Equipment == nil {
		c.Equipment = make(map[string]Equipment)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FormatFor returns the format implied by a file extension (default JSON).
func FormatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// Load reads a config from a .json or .toml file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if FormatFor(path) == FormatTOML {
		return ReadTOML(f)
	}
	return ReadJSON(f)
}

// Save writes a config to a .json or .toml file.
func Save(c *Config, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if FormatFor(path) == FormatTOML {
		return WriteTOML(c, f)
	}
	return WriteJSON(c, f)
}
