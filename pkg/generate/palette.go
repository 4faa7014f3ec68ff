package generate

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
	"github.com/matzehuels/spritestyle/pkg/errors"
	"github.com/matzehuels/spritestyle/pkg/material"
	"github.com/matzehuels/spritestyle/pkg/rng"
	"github.com/matzehuels/spritestyle/pkg/storage"
	"github.com/matzehuels/spritestyle/pkg/style"
)

// FallbackColor is picked for a material with no palette at all.
const FallbackColor colorspace.Color = 0x808080

// builtinPalettes are available before any style or store is loaded.
var builtinPalettes = map[string]colorspace.Palette{
	"skin":    {0xE3B590, 0xC68A5E, 0x8D5A3B, 0xF1D0B0},
	"metal":   {0xC8C8D0, 0x9AA0AA, 0xB0B4BC},
	"cloth":   {0x3A5A98, 0x8A2A2A, 0x3F7A3A, 0x6A4A8A},
	"leather": {0x7A4E26, 0x5C3A1E, 0x8B5A2B},
	"wood":    {0x6B4423, 0x8B5A2B},
	"glow":    {0xF0E020, 0x20F0F0},
	"accent":  {0xE0A020, 0xC02030},
}

// PaletteManager holds named palettes. It is safe for concurrent use.
type PaletteManager struct {
	mu       sync.RWMutex
	palettes map[string]colorspace.Palette
}

// NewPaletteManager returns a manager seeded with the built-in palettes.
func NewPaletteManager() *PaletteManager {
	pm := &PaletteManager{palettes: make(map[string]colorspace.Palette, len(builtinPalettes))}
	for k, p := range builtinPalettes {
		pm.palettes[k] = slices.Clone(p)
	}
	return pm
}

// Clone returns an independent copy.
func (pm *PaletteManager) Clone() *PaletteManager {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	out := &PaletteManager{palettes: make(map[string]colorspace.Palette, len(pm.palettes))}
	for k, p := range pm.palettes {
		out.palettes[k] = slices.Clone(p)
	}
	return out
}

// Get returns a copy of the named palette.
func (pm *PaletteManager) Get(name string) (colorspace.Palette, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	p, ok := pm.palettes[name]
	return slices.Clone(p), ok
}

// Set registers a palette under name.
func (pm *PaletteManager) Set(name string, p colorspace.Palette) error {
	if err := errors.ValidatePaletteName(name); err != nil {
		return err
	}
	if len(p) == 0 {
		return errors.New(errors.ErrCodeInvalidPalette, "palette %q is empty", name)
	}
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.palettes[name] = slices.Clone(p)
	return nil
}

// Names returns the registered palette names, sorted.
func (pm *PaletteManager) Names() []string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return slices.Sorted(maps.Keys(pm.palettes))
}

// FromStyle registers every non-empty material palette of cfg, replacing
// palettes of the same name.
func (pm *PaletteManager) FromStyle(cfg *style.Config) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for k, p := range cfg.Palette {
		if len(p) > 0 {
			pm.palettes[k] = slices.Clone(p)
		}
	}
}

// Candidates returns the colors Pick chooses from for m. Materials without a
// palette fall back to cloth, then to FallbackColor.
func (pm *PaletteManager) Candidates(m material.Material) colorspace.Palette {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	p := pm.palettes[m.String()]
	if len(p) == 0 {
		p = pm.palettes[material.Cloth.String()]
	}
	if len(p) == 0 {
		return colorspace.Palette{FallbackColor}
	}
	return slices.Clone(p)
}

// Pick returns a color from m's candidates.
func (pm *PaletteManager) Pick(m material.Material, r *rng.Rand) colorspace.Color {
	return rng.Pick(r, pm.Candidates(m))
}

// Vary jitters c in HSV space: hue by up to amount×30 degrees, saturation
// and value by up to ±amount relative. An amount of 0 returns c.
func Vary(c colorspace.Color, amount float64, r *rng.Rand) colorspace.Color {
	if amount <= 0 {
		return c
	}
	h, s, v := colorspace.ToHSV(c)
	h += r.Signed(amount * 30)
	s *= 1 + r.Signed(amount)
	v *= 1 + r.Signed(amount)
	return colorspace.FromHSV(h, s, v)
}

// Load copies a palette from store into the manager.
func (pm *PaletteManager) Load(ctx context.Context, store storage.PaletteStore, name string) error {
	p, err := store.GetPalette(ctx, name)
	if err != nil {
		return err
	}
	return pm.Set(name, p)
}

// Save writes the named palette to store.
func (pm *PaletteManager) Save(ctx context.Context, store storage.PaletteStore, name string) error {
	p, ok := pm.Get(name)
	if !ok {
		return errors.New(errors.ErrCodePaletteNotFound, "palette %q not found", name)
	}
	return store.SetPalette(ctx, name, p)
}
